package users

import (
	"context"
	"sync"
	"time"

	"github.com/prajeshElEvEn/microauth/internal/common"
	"github.com/prajeshElEvEn/microauth/internal/server/models"
)

// MemoryStore holds users in process memory. Records are copied on the way
// in and out, so callers never share state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

// MemoryRepository is a Repository view over a MemoryStore. When locked is
// true the caller already holds the store's write lock.
type MemoryRepository struct {
	store  *MemoryStore
	locked bool
}

func NewMemoryRepository(store *MemoryStore) *MemoryRepository {
	return &MemoryRepository{store: store}
}

// WithLock runs fn with a repository that operates under the store's write
// lock, so the whole of fn is serialized against other writers.
func (s *MemoryStore) WithLock(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, &MemoryRepository{store: s, locked: true})
}

func (r *MemoryRepository) rlock() func() {
	if r.locked {
		return func() {}
	}
	r.store.mu.RLock()
	return r.store.mu.RUnlock
}

func (r *MemoryRepository) lock() func() {
	if r.locked {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	defer r.rlock()()

	id, ok := r.store.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.store.byID[id].Clone(), nil
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	defer r.rlock()()

	u, ok := r.store.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u.Clone(), nil
}

func (r *MemoryRepository) GetUserByValidResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	defer r.rlock()()

	for _, u := range r.store.byID {
		if u.HasValidReset(token, now) {
			return u.Clone(), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.lock()()

	if _, ok := r.store.byEmail[user.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if _, ok := r.store.byID[user.ID]; ok {
		return nil, common.ErrorAlreadyExists
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	r.store.byID[user.ID] = user.Clone()
	r.store.byEmail[user.Email] = user.ID
	return user, nil
}

func (r *MemoryRepository) Save(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.lock()()

	old, ok := r.store.byID[user.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if old.Email != user.Email {
		if _, taken := r.store.byEmail[user.Email]; taken {
			return common.ErrorAlreadyExists
		}
		delete(r.store.byEmail, old.Email)
		r.store.byEmail[user.Email] = user.ID
	}

	user.UpdatedAt = time.Now().UTC()
	r.store.byID[user.ID] = user.Clone()
	return nil
}

// Len reports the number of stored users.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
