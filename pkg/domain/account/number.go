package account

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NumberLength is the fixed width of generated account numbers.
const NumberLength = 6

var numberSpace = big.NewInt(1_000_000)

// NewNumber draws a random zero-padded six-digit account number.
// The space is small enough that collisions happen at scale; the account
// service re-rolls on a duplicate reported by the store's unique index.
func NewNumber() string {
	n, err := rand.Int(rand.Reader, numberSpace)
	if err != nil {
		// crypto/rand only fails when the platform entropy source is
		// broken, which leaves nothing sensible to continue with.
		panic(fmt.Sprintf("account: reading entropy: %v", err))
	}
	return fmt.Sprintf("%0*d", NumberLength, n)
}
