package app

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Alphabet without 0/O/1/I so numbers survive being read over the phone.
const numberAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// newRegistrationNumber generates a human-readable registration number
// like EVM-2026-K7Q2M4XD. Uniqueness is enforced by the registrations
// table; callers retry once on a conflict.
func newRegistrationNumber(now time.Time) string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// Fall back to a time-derived suffix; the unique index still
		// rejects collisions.
		return fmt.Sprintf("EVM-%d-%d", now.Year(), now.UnixNano()%100000000)
	}
	for i := range b {
		b[i] = numberAlphabet[int(b[i])%len(numberAlphabet)]
	}
	return fmt.Sprintf("EVM-%d-%s", now.Year(), string(b))
}
