package model

import (
	"errors"
	"math/rand/v2"
	"strings"
)

const (
	orderCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	orderCodeLength   = 4
)

// orderCodeSpace is the number of distinct order codes (36^4).
const orderCodeSpace = 36 * 36 * 36 * 36

// ErrOrderCodesExhausted is returned when no free order code was found.
var ErrOrderCodesExhausted = errors.New("no unused order code available")

// OrderCodeGenerator produces short unique job identifiers for tickets.
type OrderCodeGenerator struct {
	// IntN returns a uniform random int in [0, n). Defaults to math/rand/v2.
	IntN func(n int) int
}

// NewOrderCodeGenerator returns a generator backed by math/rand/v2.
func NewOrderCodeGenerator() *OrderCodeGenerator {
	return &OrderCodeGenerator{IntN: rand.IntN}
}

// Generate returns a code not present in existing, drawing again on
// every collision.
func (g *OrderCodeGenerator) Generate(existing map[string]bool) (string, error) {
	intN := g.IntN
	if intN == nil {
		intN = rand.IntN
	}
	if len(existing) >= orderCodeSpace {
		return "", ErrOrderCodesExhausted
	}
	for attempt := 0; attempt < orderCodeSpace; attempt++ {
		var b strings.Builder
		for i := 0; i < orderCodeLength; i++ {
			b.WriteByte(orderCodeAlphabet[intN(len(orderCodeAlphabet))])
		}
		code := b.String()
		if !existing[code] {
			return code, nil
		}
	}
	return "", ErrOrderCodesExhausted
}

// ExistingOrderCodes collects the order codes of the given jobs.
func ExistingOrderCodes(jobs []CutJob) map[string]bool {
	codes := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		if j.OrderCode != "" {
			codes[j.OrderCode] = true
		}
	}
	return codes
}

// IsOrderCode reports whether s has the shape of an order code.
func IsOrderCode(s string) bool {
	if len(s) != orderCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(orderCodeAlphabet, rune(s[i])) {
			return false
		}
	}
	return true
}
