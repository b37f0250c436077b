// Package otp generates signup verification codes.
package otp

import (
	"math/rand/v2"
	"strconv"
)

const (
	minCode = 100000
	maxCode = 999999

	Length = 6
)

// Generator returns a fresh code. The usecase takes one so tests can pin codes.
type Generator func() string

// Generate returns a uniformly random code in [100000, 999999].
// Codes never start with zero.
func Generate() string {
	return strconv.Itoa(minCode + rand.IntN(maxCode-minCode+1))
}
