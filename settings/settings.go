package settings

import (
	"context"
	"sync"

	"github.com/raushankrgupta/product-page-generator/models"
)

// Provider loads and stores the store credentials. Save overwrites both values.
type Provider interface {
	Load(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, s models.Settings) error
}

// MemoryStore keeps settings for the lifetime of the process
type MemoryStore struct {
	mu       sync.RWMutex
	settings models.Settings
}

func NewMemoryStore(initial models.Settings) *MemoryStore {
	return &MemoryStore{settings: initial}
}

func (m *MemoryStore) Load(context.Context) (models.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings, nil
}

func (m *MemoryStore) Save(_ context.Context, s models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	return nil
}
