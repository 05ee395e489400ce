package ids

import (
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a lexicographically sortable identifier suitable for storage keys.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// TempPrefix marks identifiers of records that have not been durably stored.
// A record carrying it exists only in local view state and must never be the
// target of a status-transition call.
const TempPrefix = "temp-"

// NewTemp returns a client-generated placeholder identifier for an optimistic record.
func NewTemp() string {
	return TempPrefix + uuid.NewString()
}

// IsTemp reports whether id is a placeholder that never reached the server.
func IsTemp(id string) bool {
	return strings.HasPrefix(id, TempPrefix)
}
