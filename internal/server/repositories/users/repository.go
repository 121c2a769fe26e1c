// Package users implements the user directory over Postgres, MongoDB and
// an in-process map.
package users

import (
	"context"
	"time"

	"github.com/prajeshElEvEn/microauth/internal/server/models"
)

// Repository is the user directory.
//
// Lookups return common.ErrorNotFound when nothing matches. Create returns
// common.ErrorAlreadyExists when the email is taken. Save writes all mutable
// fields of one user in a single statement.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUserByValidResetToken matches only while the stored expiry is
	// strictly after now.
	GetUserByValidResetToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}
