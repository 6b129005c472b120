// internal/checkout/secret.go
package checkout

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"

	"golang.org/x/crypto/argon2"
)

// Secret is a write-only value. Set hashes the plaintext; Verify compares
// against the stored hash. There is no way to read the plaintext back.
type Secret struct {
	hash string
	salt string
}

// Set replaces the secret with a salted Argon2id hash of plaintext.
func (s *Secret) Set(plaintext string) error {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return err
	}

	hash := argon2.IDKey([]byte(plaintext), salt, 1, 64*1024, 4, 32)
	s.hash = base64.StdEncoding.EncodeToString(hash)
	s.salt = base64.StdEncoding.EncodeToString(salt)
	return nil
}

// Verify reports whether plaintext matches the stored hash.
func (s *Secret) Verify(plaintext string) bool {
	salt, err := base64.StdEncoding.DecodeString(s.salt)
	if err != nil {
		return false
	}
	stored, err := base64.StdEncoding.DecodeString(s.hash)
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(plaintext), salt, 1, 64*1024, 4, 32)
	return subtle.ConstantTimeCompare(stored, candidate) == 1
}

// stored returns the persisted representation. Only the storage layer in
// this package touches it.
func (s *Secret) stored() (hash, salt string) { return s.hash, s.salt }

// restore rebuilds a Secret from its persisted representation.
func restoreSecret(hash, salt string) Secret {
	return Secret{hash: hash, salt: salt}
}
