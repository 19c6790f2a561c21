package id

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// New returns a run id that sorts by start time, e.g. 20261018T091500Z-3f9a1c2b.
func New() string {
	return newAt(time.Now())
}

func newAt(now time.Time) string {
	stamp := now.UTC().Format("20060102T150405Z")

	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return stamp + "-00000000"
	}
	return stamp + "-" + hex.EncodeToString(b[:])
}
