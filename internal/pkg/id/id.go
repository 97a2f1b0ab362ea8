package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a fresh ULID string, used as the user-record partition key.
// ULIDs embed their creation time, so ids issued later always sort later —
// handy when eyeballing registrations in the console.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
