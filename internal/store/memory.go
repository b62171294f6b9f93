package store

import (
	"context"
	"slices"
	"sync"

	"github.com/serroba/url-shortener/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
type MemoryStore struct {
	mu     sync.RWMutex
	owners map[shortener.OwnerID]*ownerMappings
}

type ownerMappings struct {
	byCode map[shortener.Code]shortener.Mapping
	order  []shortener.Code
}

// NewMemoryStore creates a new in-memory mapping store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		owners: make(map[shortener.OwnerID]*ownerMappings),
	}
}

func (m *MemoryStore) Insert(_ context.Context, mapping *shortener.Mapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	owned, ok := m.owners[mapping.Owner]
	if !ok {
		owned = &ownerMappings{byCode: make(map[shortener.Code]shortener.Mapping)}
		m.owners[mapping.Owner] = owned
	}

	if _, taken := owned.byCode[mapping.Code]; taken {
		return shortener.ErrCodeAlreadyTaken
	}

	owned.byCode[mapping.Code] = *mapping
	owned.order = append(owned.order, mapping.Code)

	return nil
}

func (m *MemoryStore) Get(_ context.Context, owner shortener.OwnerID, code shortener.Code) (*shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owned, ok := m.owners[owner]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	mapping, ok := owned.byCode[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &mapping, nil
}

func (m *MemoryStore) List(_ context.Context, owner shortener.OwnerID) ([]*shortener.Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owned, ok := m.owners[owner]
	if !ok {
		return []*shortener.Mapping{}, nil
	}

	mappings := make([]*shortener.Mapping, 0, len(owned.order))

	for _, code := range owned.order {
		mapping := owned.byCode[code]
		mappings = append(mappings, &mapping)
	}

	return mappings, nil
}

func (m *MemoryStore) Delete(_ context.Context, owner shortener.OwnerID, code shortener.Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	owned, ok := m.owners[owner]
	if !ok {
		return shortener.ErrNotFound
	}

	if _, ok = owned.byCode[code]; !ok {
		return shortener.ErrNotFound
	}

	delete(owned.byCode, code)
	owned.order = slices.DeleteFunc(owned.order, func(c shortener.Code) bool { return c == code })

	if len(owned.order) == 0 {
		delete(m.owners, owner)
	}

	return nil
}

// Ping always succeeds for the in-memory store.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)
