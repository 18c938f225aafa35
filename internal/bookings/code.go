package bookings

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet avoids 0/O and 1/I so codes survive being read over the phone.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 10

// NewConfirmationCode returns a human-shareable confirmation code drawn from
// crypto/rand. 32^10 values make collisions across the ledger's lifetime a
// non-concern; the unique index on the column backstops them anyway.
func NewConfirmationCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("bookings: confirmation code entropy: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
