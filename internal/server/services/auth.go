// Package services holds the server's business logic. AuthService runs the
// registration, login and password reset workflows against the user
// directory; ProfileService serves the authenticated user's own record.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prajeshElEvEn/microauth/internal/common"
	"github.com/prajeshElEvEn/microauth/internal/logging"
	"github.com/prajeshElEvEn/microauth/internal/server/auth"
	"github.com/prajeshElEvEn/microauth/internal/server/metrics"
	"github.com/prajeshElEvEn/microauth/internal/server/models"
	"github.com/prajeshElEvEn/microauth/internal/server/notify"
	"github.com/prajeshElEvEn/microauth/internal/server/repositories/repomanager"
	"github.com/prajeshElEvEn/microauth/internal/server/repositories/users"
	"github.com/samber/oops"
)

// Operation names used for metrics and error codes.
const (
	OpRegister     = "register"
	OpLogin        = "login"
	OpRequestReset = "request_reset"
	OpConfirmReset = "confirm_reset"
)

const dummyPassword = "microauth-dummy-password"

// OperationRecorder receives workflow outcomes. *metrics.Metrics implements it.
type OperationRecorder interface {
	RecordOperation(operation, result string)
	RecordResetEmail(sent bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordOperation(string, string) {}
func (nopRecorder) RecordResetEmail(bool)          {}

// Session is returned by Register and Login.
type Session struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AuthService implements the auth workflows.
type AuthService struct {
	repomanager repomanager.RepositoryManager
	hasher      auth.Hasher
	issuer      *auth.Issuer
	sender      notify.Sender
	resetTTL    time.Duration
	log         logging.Logger
	recorder    OperationRecorder
	now         func() time.Time
	newID       func() string

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(m repomanager.RepositoryManager, hasher auth.Hasher, issuer *auth.Issuer,
	sender notify.Sender, resetTTL time.Duration, log logging.Logger) *AuthService {
	return &AuthService{
		repomanager: m,
		hasher:      hasher,
		issuer:      issuer,
		sender:      sender,
		resetTTL:    resetTTL,
		log:         log,
		recorder:    nopRecorder{},
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
}

// WithClock replaces the time source used for reset expiry.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// WithRecorder reports workflow outcomes to r.
func (s *AuthService) WithRecorder(r OperationRecorder) *AuthService {
	s.recorder = r
	return s
}

var _ OperationRecorder = (*metrics.Metrics)(nil)

// record reports the outcome of op. Caller-facing failures count as
// "failure"; everything else as "error".
func (s *AuthService) record(op string, err error) {
	var appErr *common.AppError
	switch {
	case err == nil:
		s.recorder.RecordOperation(op, metrics.ResultSuccess)
	case errors.As(err, &appErr):
		s.recorder.RecordOperation(op, metrics.ResultFailure)
	default:
		s.recorder.RecordOperation(op, metrics.ResultError)
	}
}

func internal(err error) error {
	return fmt.Errorf("%w: %w", common.ErrorInternal, err)
}

func (s *AuthService) hash(plain string) (string, error) {
	h, err := s.hasher.Hash(plain)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", common.ErrPasswordTooLong
		}
		return "", internal(err)
	}
	return h, nil
}

// Register creates an account and returns a session for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (session *Session, err error) {
	defer func() { s.record(OpRegister, err) }()

	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return nil, oops.Code("AUTH_REGISTER_INVALID").Wrap(common.ErrMissingFields)
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").With("email", in.Email).Wrap(err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:        s.newID(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Role:      models.RoleUser,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").With("email", in.Email).Wrap(err)
	}

	err = s.repomanager.WithTx(ctx, func(ctx context.Context, repo users.Repository) error {
		_, err := repo.GetUserByEmail(ctx, in.Email)
		switch {
		case err == nil:
			return common.ErrUserExists
		case !errors.Is(err, common.ErrorNotFound):
			return internal(err)
		}

		if _, err := repo.Create(ctx, user); err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.ErrUserExists
			}
			return internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").With("email", in.Email).Wrap(err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return &Session{ID: user.ID, Token: token}, nil
}

// Login checks credentials and returns a session. Unknown email and wrong
// password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (session *Session, err error) {
	defer func() { s.record(OpLogin, err) }()

	if email == "" || password == "" {
		return nil, oops.Code("AUTH_LOGIN_INVALID").Wrap(common.ErrMissingFields)
	}

	user, err := s.repomanager.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnVerify(password)
			return nil, oops.Code("AUTH_LOGIN_FAILED").Wrap(common.ErrInvalidCredentials)
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").With("email", email).Wrap(internal(err))
	}

	ok, err := s.hasher.Verify(password, user.Password)
	if err != nil {
		s.log.Warn(ctx, "stored password hash is unreadable", "user_id", user.ID, "error", err)
		ok = false
	}
	if !ok {
		return nil, oops.Code("AUTH_LOGIN_FAILED").With("user_id", user.ID).Wrap(common.ErrInvalidCredentials)
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").With("user_id", user.ID).Wrap(err)
	}

	return &Session{ID: user.ID, Token: token}, nil
}

// burnVerify spends about as long as a real verification so unknown emails
// are not distinguishable by latency.
func (s *AuthService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(dummyPassword)
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

// RequestReset arms a reset token for email and mails it. When the mail
// cannot be sent the previous reset state is put back.
func (s *AuthService) RequestReset(ctx context.Context, email string) (err error) {
	defer func() { s.record(OpRequestReset, err) }()

	if email == "" {
		return oops.Code("AUTH_RESET_INVALID").Wrap(common.ErrMissingFields)
	}

	repo := s.repomanager.Users()
	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return oops.Code("AUTH_RESET_UNKNOWN_USER").Wrap(common.ErrUserNotFound)
		}
		return oops.Code("AUTH_RESET_FAILED").With("email", email).Wrap(internal(err))
	}

	token, err := auth.GenerateResetToken()
	if err != nil {
		return oops.Code("AUTH_RESET_FAILED").With("user_id", user.ID).Wrap(internal(err))
	}

	prior := user.ResetState()
	user.SetResetToken(token, s.now().Add(s.resetTTL))
	if err := repo.Save(ctx, user); err != nil {
		return oops.Code("AUTH_RESET_FAILED").With("user_id", user.ID).Wrap(internal(err))
	}

	sendErr := s.sender.SendReset(ctx, user.Email, token)
	s.recorder.RecordResetEmail(sendErr == nil)
	if sendErr == nil {
		s.log.Info(ctx, "password reset email sent", "user_id", user.ID)
		return nil
	}

	user.RestoreReset(prior)
	if err := repo.Save(context.WithoutCancel(ctx), user); err != nil {
		s.log.Error(ctx, "restoring reset state failed", "user_id", user.ID, "error", err)
	}

	return oops.Code("AUTH_RESET_EMAIL_FAILED").
		With("user_id", user.ID).
		Wrap(fmt.Errorf("%w: %w", common.ErrEmailNotSent, sendErr))
}

// ConfirmReset sets a new password for the holder of a live reset token and
// disarms the token.
func (s *AuthService) ConfirmReset(ctx context.Context, token, newPassword string) (err error) {
	defer func() { s.record(OpConfirmReset, err) }()

	if token == "" || newPassword == "" {
		return oops.Code("AUTH_CONFIRM_INVALID").Wrap(common.ErrMissingFields)
	}

	hashed, err := s.hash(newPassword)
	if err != nil {
		return oops.Code("AUTH_CONFIRM_FAILED").Wrap(err)
	}

	var userID string
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, repo users.Repository) error {
		user, err := repo.GetUserByValidResetToken(ctx, token, s.now())
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidResetToken
			}
			return internal(err)
		}

		user.Password = hashed
		user.ClearResetToken()
		if err := repo.Save(ctx, user); err != nil {
			return internal(err)
		}
		userID = user.ID
		return nil
	})
	if err != nil {
		return oops.Code("AUTH_CONFIRM_FAILED").Wrap(err)
	}

	s.log.Info(ctx, "password reset", "user_id", userID)
	return nil
}
