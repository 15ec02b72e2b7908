// Package random generates short identifiers from a cryptographically
// secure source. Used for one-time codes, session tokens and project codes.
package random

import (
	"crypto/rand"
	"math/big"
)

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Generate returns a string of length n drawn uniformly from the base62
// alphabet. It is safe for concurrent use. Uniqueness is not guaranteed;
// callers that persist generated values under a unique constraint must treat
// a duplicate-key failure as retryable.
func Generate(n int) string {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the platform source is broken,
			// at which point issuing credentials is not an option.
			panic(err)
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf)
}
