// Package ids generates prefixed, time-sortable entity identifiers.
package ids

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Entity prefixes.
const (
	Organization = "wo"
	Admin        = "wa"
	Employee     = "we"
	Team         = "wm"
	Project      = "wp"
	Task         = "wt"
	Shift        = "ws"
	Screenshot   = "wc"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// New returns prefix followed by a lowercase ULID.
func New(prefix string) string {
	return NewFromTime(prefix, time.Now())
}

// NewFromTime generates an identifier whose ULID carries the given timestamp.
func NewFromTime(prefix string, t time.Time) string {
	entropyLock.Lock()
	defer entropyLock.Unlock()

	id := ulid.MustNew(ulid.Timestamp(t), entropy)
	return prefix + strings.ToLower(id.String())
}

// HasPrefix reports whether id was generated for the given entity prefix.
func HasPrefix(id, prefix string) bool {
	if !strings.HasPrefix(id, prefix) {
		return false
	}
	_, err := ulid.ParseStrict(strings.ToUpper(strings.TrimPrefix(id, prefix)))
	return err == nil
}
