package shortener

import "context"

// Repository defines the persistence operations for mappings.
// Every operation is scoped to a single owner.
type Repository interface {
	// Insert stores a new mapping. It must atomically reject a second mapping
	// with the same (owner, code) pair by returning ErrCodeAlreadyTaken.
	Insert(ctx context.Context, m *Mapping) error

	// Get returns the owner's mapping for code, or ErrNotFound.
	Get(ctx context.Context, owner OwnerID, code Code) (*Mapping, error)

	// List returns the owner's mappings in creation order.
	List(ctx context.Context, owner OwnerID) ([]*Mapping, error)

	// Delete removes the owner's mapping for code, or returns ErrNotFound.
	Delete(ctx context.Context, owner OwnerID, code Code) error
}
