package repomanager

import (
	"context"

	"github.com/prajeshElEvEn/microauth/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps the directory in process memory.
type MemoryRepositoryManager struct {
	store *users.MemoryStore
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{store: users.NewMemoryStore()}
}

func (m *MemoryRepositoryManager) Users() users.Repository {
	return users.NewMemoryRepository(m.store)
}

// WithTx serializes fn against every other writer.
func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error {
	return m.store.WithLock(ctx, fn)
}

func (m *MemoryRepositoryManager) RunMigrations(ctx context.Context) error { return nil }

func (m *MemoryRepositoryManager) Ping(ctx context.Context) error { return ctx.Err() }

func (m *MemoryRepositoryManager) Close(ctx context.Context) error { return nil }
