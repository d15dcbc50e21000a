package security

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/amirk1998/daynotes/pkg/errors"
)

const (
	// Argon2id parameters (OWASP recommendations)
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 2

	KeyLength  = 32
	SaltLength = 16
)

// NewSalt returns SaltLength random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey stretches passphrase into an AES-256 key with Argon2id.
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("%w: passphrase is empty", errors.ErrInvalidKey)
	}
	if len(salt) != SaltLength {
		return nil, fmt.Errorf("%w: salt must be %d bytes", errors.ErrInvalidKey, SaltLength)
	}

	return argon2.IDKey([]byte(passphrase), salt, argon2Time, argon2Memory, argon2Threads, KeyLength), nil
}

// NewPassphraseEncryptor derives a key from passphrase and salt and wraps it
// in a FieldEncryptor.
func NewPassphraseEncryptor(passphrase string, salt []byte) (*FieldEncryptor, error) {
	key, err := DeriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	return NewFieldEncryptor(key)
}
