package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prajeshElEvEn/microauth/internal/common"
	"github.com/prajeshElEvEn/microauth/internal/dbx"
	"github.com/prajeshElEvEn/microauth/internal/server/models"
)

const pgUniqueViolation = "23505"

const userColumns = `id, first_name, last_name, email, role, password, avatar,
		        reset_password_token, reset_password_expires, created_at, updated_at`

type PostgresRepository struct {
	db        dbx.DBTX
	forUpdate bool
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Locking returns a repository whose lookups lock the matched row until the
// surrounding transaction ends. Only meaningful when db is a *sql.Tx.
func (r *PostgresRepository) Locking() *PostgresRepository {
	return &PostgresRepository{db: r.db, forUpdate: true}
}

func (r *PostgresRepository) lockClause() string {
	if r.forUpdate {
		return " FOR UPDATE"
	}
	return ""
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		avatar, token sql.NullString
		expires       sql.NullTime
	)
	u := &models.User{}
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role, &u.Password,
		&avatar, &token, &expires, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if avatar.Valid {
		u.Avatar = &avatar.String
	}
	if token.Valid && expires.Valid {
		u.SetResetToken(token.String, expires.Time)
	}
	return u, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, args ...any) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		 FROM users
		 WHERE ` + where + r.lockClause()

	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `email = $1`, email)
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *PostgresRepository) GetUserByValidResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	return r.getOne(ctx, `reset_password_token = $1 AND reset_password_expires > $2`, token, now)
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	query :=
		`INSERT INTO users (id, first_name, last_name, email, role, password, avatar,
		                    reset_password_token, reset_password_expires, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.Role, user.Password,
		nullString(user.Avatar), nullString(user.ResetPasswordToken), nullTime(user.ResetPasswordExpires),
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) Save(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()

	query :=
		`UPDATE users
		 SET first_name = $2, last_name = $3, email = $4, role = $5, password = $6, avatar = $7,
		     reset_password_token = $8, reset_password_expires = $9, updated_at = $10
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.Role, user.Password,
		nullString(user.Avatar), nullString(user.ResetPasswordToken), nullTime(user.ResetPasswordExpires),
		user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
