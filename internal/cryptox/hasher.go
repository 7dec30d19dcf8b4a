// Package cryptox implements credential hashing for accountd.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// Hasher turns account passwords into one-way digests. The digest is
// base64(sha256(plaintext || secret)), where secret is a process-wide value
// injected from configuration.
//
// The scheme is kept compatible with the records it inherited: no per-account
// salt, no adaptive cost. A deployment free of that constraint should replace
// it with bcrypt or argon2 and rehash credentials on login.
type Hasher struct {
	secret []byte
}

func NewHasher(secret string) *Hasher {
	return &Hasher{secret: []byte(secret)}
}

// Hash returns the digest of plaintext. Deterministic, never fails.
func (h *Hasher) Hash(plaintext string) string {
	input := make([]byte, 0, len(plaintext)+len(h.secret))
	input = append(input, plaintext...)
	input = append(input, h.secret...)

	sum := sha256.Sum256(input)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Verify reports whether plaintext hashes to digest. The comparison runs in
// constant time.
func (h *Hasher) Verify(plaintext, digest string) bool {
	computed := h.Hash(plaintext)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}
