package shortener

import (
	"time"

	"github.com/google/uuid"
)

// Code represents a short URL code.
type Code string

// OwnerID identifies the account a mapping belongs to. It is opaque to this package.
type OwnerID string

// Mapping is a long URL registered under a short code in one owner's namespace.
type Mapping struct {
	ID        uuid.UUID
	Owner     OwnerID
	LongURL   string
	Code      Code
	CreatedAt time.Time
}

func newMapping(owner OwnerID, longURL string, code Code) *Mapping {
	return &Mapping{
		ID:        uuid.Must(uuid.NewV7()),
		Owner:     owner,
		LongURL:   longURL,
		Code:      code,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}
