// Package repomanager opens the user directory named by a DSN and hands out
// repositories bound to it.
package repomanager

import (
	"context"
	"fmt"
	"strings"

	"github.com/prajeshElEvEn/microauth/internal/server/repositories/users"
)

// RepositoryManager owns the directory connection.
type RepositoryManager interface {
	Users() users.Repository
	// WithTx runs fn against a repository whose reads and writes are
	// isolated from concurrent WithTx calls as far as the backend allows.
	WithTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// New picks the backend from the DSN scheme: postgres:// or postgresql://,
// mongodb:// or mongodb+srv://, and memory://.
func New(ctx context.Context, dsn string) (RepositoryManager, error) {
	scheme, _, ok := strings.Cut(dsn, "://")
	if !ok {
		return nil, fmt.Errorf("invalid database dsn: missing scheme")
	}

	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return OpenPostgres(ctx, dsn)
	case "mongodb", "mongodb+srv":
		return OpenMongo(ctx, dsn)
	case "memory":
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", scheme)
	}
}
