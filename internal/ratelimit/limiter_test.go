package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirk1998/daynotes/pkg/errors"
)

func TestCheckLimit_BurstThenReject(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	key := Key("create")

	require.NoError(t, rl.CheckLimit(key))
	require.NoError(t, rl.CheckLimit(key))
	require.ErrorIs(t, rl.CheckLimit(key), errors.ErrRateLimitExceeded)

	// other operations have their own bucket
	assert.NoError(t, rl.CheckLimit(Key("delete")))
}

func TestCheckLimit_NilLimiterAllows(t *testing.T) {
	var rl *RateLimiter
	assert.NoError(t, rl.CheckLimit(Key("update")))
}

func TestCleanup_DropsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(10, 10)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow(Key("create"))
	now = now.Add(idleAfter + time.Second)
	rl.Allow(Key("delete"))

	assert.Equal(t, 1, rl.Cleanup())
	assert.Equal(t, 1, rl.Len())
}
