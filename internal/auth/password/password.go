// Package password hashes and verifies local account passwords.
//
// The default scheme reproduces the legacy credential format: a single
// unsalted SHA-256 digest of the password bytes, base64-encoded. Identical
// passwords therefore produce identical digests and offline guessing is
// cheap. The bcrypt scheme is the hardened alternative for deployments that
// do not need to stay wire-compatible with legacy digests; existing legacy
// digests keep verifying only under the sha256 scheme.
package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Scheme names a supported hashing scheme.
type Scheme string

const (
	// SchemeSHA256 is the legacy-compatible unsalted digest scheme.
	SchemeSHA256 Scheme = "sha256"
	// SchemeBcrypt is the salted, work-factor-tunable scheme.
	SchemeBcrypt Scheme = "bcrypt"
)

// Hasher produces and checks one-way password digests.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// ForScheme returns the hasher for a configured scheme name. An empty or
// unknown scheme falls back to the legacy sha256 scheme.
func ForScheme(scheme Scheme) Hasher {
	if scheme == SchemeBcrypt {
		return BcryptHasher{Cost: bcrypt.DefaultCost}
	}
	return SHA256Hasher{}
}

// SHA256Hasher is the deterministic unsalted digest hasher.
type SHA256Hasher struct{}

// Hash returns the base64 encoding of the SHA-256 digest of plaintext.
func (SHA256Hasher) Hash(plaintext string) (string, error) {
	sum := sha256.Sum256([]byte(plaintext))
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

// Verify recomputes the digest and compares it with the stored value.
// An empty stored digest never verifies; federation-only accounts carry no
// digest and must not pass local login.
func (h SHA256Hasher) Verify(plaintext, digest string) bool {
	if digest == "" {
		return false
	}
	computed, err := h.Hash(plaintext)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

// BcryptHasher is the salted adaptive hasher.
type BcryptHasher struct {
	Cost int
}

// Hash returns a bcrypt digest of plaintext at the configured cost.
func (h BcryptHasher) Hash(plaintext string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(digest), nil
}

// Verify checks plaintext against a stored bcrypt digest.
func (BcryptHasher) Verify(plaintext, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
