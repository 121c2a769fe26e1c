package services

import (
	"context"
	"errors"

	"github.com/prajeshElEvEn/microauth/internal/common"
	"github.com/prajeshElEvEn/microauth/internal/server/models"
	"github.com/prajeshElEvEn/microauth/internal/server/repositories/repomanager"
	"github.com/prajeshElEvEn/microauth/internal/server/repositories/users"
	"github.com/samber/oops"
)

// AvatarStorage presigns avatar object URLs. *storage.AvatarStore implements it.
type AvatarStorage interface {
	PresignPut(ctx context.Context, userID string) (key, url string, err error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// AvatarUpload tells the client where to PUT its avatar.
type AvatarUpload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ProfileService serves a user's own record.
type ProfileService struct {
	repomanager repomanager.RepositoryManager
	avatars     AvatarStorage
}

func NewProfileService(m repomanager.RepositoryManager, avatars AvatarStorage) *ProfileService {
	return &ProfileService{repomanager: m, avatars: avatars}
}

func lookupError(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrUserNotFound
	}
	return internal(err)
}

// Profile returns the public view of userID.
func (s *ProfileService) Profile(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.repomanager.Users().GetUserByID(ctx, userID)
	if err != nil {
		return nil, oops.Code("PROFILE_LOOKUP_FAILED").With("user_id", userID).Wrap(lookupError(err))
	}
	p := user.Public()
	return &p, nil
}

// AvatarUploadURL presigns an upload and records the new key as the user's
// avatar.
func (s *ProfileService) AvatarUploadURL(ctx context.Context, userID string) (*AvatarUpload, error) {
	key, url, err := s.avatars.PresignPut(ctx, userID)
	if err != nil {
		return nil, oops.Code("AVATAR_PRESIGN_FAILED").With("user_id", userID).Wrap(internal(err))
	}

	err = s.repomanager.WithTx(ctx, func(ctx context.Context, repo users.Repository) error {
		user, err := repo.GetUserByID(ctx, userID)
		if err != nil {
			return lookupError(err)
		}
		user.Avatar = &key
		if err := repo.Save(ctx, user); err != nil {
			return internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, oops.Code("AVATAR_SAVE_FAILED").With("user_id", userID).Wrap(err)
	}

	return &AvatarUpload{Key: key, URL: url}, nil
}

// AvatarURL presigns a download of the user's current avatar.
func (s *ProfileService) AvatarURL(ctx context.Context, userID string) (string, error) {
	user, err := s.repomanager.Users().GetUserByID(ctx, userID)
	if err != nil {
		return "", oops.Code("PROFILE_LOOKUP_FAILED").With("user_id", userID).Wrap(lookupError(err))
	}
	if user.Avatar == nil {
		return "", oops.Code("AVATAR_NOT_SET").With("user_id", userID).Wrap(common.ErrAvatarNotSet)
	}

	url, err := s.avatars.PresignGet(ctx, *user.Avatar)
	if err != nil {
		return "", oops.Code("AVATAR_PRESIGN_FAILED").With("user_id", userID).Wrap(internal(err))
	}
	return url, nil
}
