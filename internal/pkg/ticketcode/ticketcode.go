// Package ticketcode generates the short, human-typeable codes printed
// on issued tickets. Codes are drawn from a ~1.1e12 namespace; the
// unique index on registrations.ticket_code is the backstop, and the
// registration engine retries with a fresh code on a collision.
package ticketcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Prefix matches the ticket id format of the original product
// ("TKT-001234" style).
const Prefix = "TKT-"

// alphabet omits 0/O and 1/I so codes survive being read aloud or
// typed from a printout.
const alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const codeLength = 8

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Next returns a fresh ticket code. It never reuses randomness between
// calls and is safe for concurrent use.
func (g *Generator) Next() (string, error) {
	var sb strings.Builder
	sb.Grow(len(Prefix) + codeLength)
	sb.WriteString(Prefix)

	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("ticketcode: read random -> %w", err)
		}
		sb.WriteByte(alphabet[n.Int64()])
	}

	return sb.String(), nil
}

// Valid reports whether s looks like a code this generator produced.
func Valid(s string) bool {
	if !strings.HasPrefix(s, Prefix) || len(s) != len(Prefix)+codeLength {
		return false
	}
	for _, c := range s[len(Prefix):] {
		if !strings.ContainsRune(alphabet, c) {
			return false
		}
	}
	return true
}
