// Package ordercode generates human-facing order codes of the form
// VLM-ORD<6 digits of unix time><3 random digits>. Codes are not guaranteed
// unique by construction; callers rely on the unique index on orders.order_code
// and retry on collision.
package ordercode

import (
	"fmt"
	"math/rand"
	"time"
)

const prefix = "VLM-ORD"

// New returns a fresh order code based on the current time.
func New() string {
	return At(time.Now())
}

// At returns an order code for the given instant. The timestamp component is
// the last six digits of the unix epoch seconds, so codes roll over roughly
// every eleven and a half days.
func At(t time.Time) string {
	ts := t.Unix() % 1_000_000
	return fmt.Sprintf("%s%06d%03d", prefix, ts, rand.Intn(1000))
}
