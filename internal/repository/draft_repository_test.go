package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amirk1998/daynotes/internal/testutil"
)

func TestDraftRepository_SaveGetClear(t *testing.T) {
	ctx := context.Background()
	drafts := NewDraftRepository(testutil.OpenDB(t), testutil.Logger())

	assert.Empty(t, drafts.Get(ctx))

	drafts.Save(ctx, "half a thought")
	assert.Equal(t, "half a thought", drafts.Get(ctx))

	drafts.Save(ctx, "half a thought, finished")
	assert.Equal(t, "half a thought, finished", drafts.Get(ctx))

	drafts.Clear(ctx)
	assert.Empty(t, drafts.Get(ctx))
}

func TestDraftRepository_AbsorbsStorageErrors(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	drafts := NewDraftRepository(db, testutil.Logger())
	drafts.Save(ctx, "kept")

	db.Close()

	assert.NotPanics(t, func() {
		drafts.Save(ctx, "lost")
		drafts.Clear(ctx)
	})
	assert.Empty(t, drafts.Get(ctx))
}
