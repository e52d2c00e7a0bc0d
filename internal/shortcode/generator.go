// Package shortcode generates the random codes that identify short links.
package shortcode

import (
	"crypto/rand"
	"math/big"
)

// Length is the fixed code length. 62^6 ≈ 5.7e10 possible codes.
const Length = 6

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var alphabetSize = big.NewInt(int64(len(alphabet)))

// Generator produces candidate codes for allocation. The indirection exists
// so tests can force collisions with a stub.
type Generator interface {
	Generate() string
}

// RandomGenerator draws every character independently and uniformly from the
// base62 alphabet using crypto/rand. Codes must not be guessable, so a
// seeded math/rand source is not acceptable here.
type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

// Generate returns a fresh random code of length Length. It does not fail:
// if the system entropy source is broken the process cannot do anything
// useful, so a read error panics.
func (g *RandomGenerator) Generate() string {
	b := make([]byte, Length)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			panic("shortcode: crypto/rand unavailable: " + err.Error())
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b)
}

// IsValid reports whether s has the exact shape of a generated code.
// The redirect route uses it to reject garbage paths before touching storage.
func IsValid(s string) bool {
	if len(s) != Length {
		return false
	}
	for _, c := range s {
		if !isAlphabetChar(c) {
			return false
		}
	}
	return true
}

func isAlphabetChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
