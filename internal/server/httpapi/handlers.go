package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prajeshElEvEn/microauth/internal/common"
	"github.com/prajeshElEvEn/microauth/internal/server/models"
	"github.com/prajeshElEvEn/microauth/internal/server/services"
)

// AuthWorkflows is implemented by *services.AuthService.
type AuthWorkflows interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	RequestReset(ctx context.Context, email string) error
	ConfirmReset(ctx context.Context, token, newPassword string) error
}

// Profiles is implemented by *services.ProfileService.
type Profiles interface {
	Profile(ctx context.Context, userID string) (*models.PublicUser, error)
	AvatarUploadURL(ctx context.Context, userID string) (*services.AvatarUpload, error)
	AvatarURL(ctx context.Context, userID string) (string, error)
}

// Pinger reports whether the user directory is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type avatarResponse struct {
	URL string `json:"url"`
}

type handlers struct {
	auth     AuthWorkflows
	profiles Profiles
	pinger   Pinger
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) error {
	if err := h.pinger.Ping(r.Context()); err != nil {
		respondWithJSON(w, http.StatusInternalServerError, healthResponse{Status: "offline", Message: "Server is not running."})
		return nil
	}
	respondWithJSON(w, http.StatusOK, healthResponse{Status: "online", Message: "Server is up and running."})
	return nil
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) error {
	var req registerRequest
	err := decodeBody(w, r, &req, map[string]*string{
		"firstName": &req.FirstName,
		"lastName":  &req.LastName,
		"email":     &req.Email,
		"password":  &req.Password,
	})
	if err != nil {
		return err
	}

	session, err := h.auth.Register(r.Context(), services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}

	respondWithJSON(w, http.StatusCreated, session)
	return nil
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	err := decodeBody(w, r, &req, map[string]*string{"email": &req.Email, "password": &req.Password})
	if err != nil {
		return err
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	respondWithJSON(w, http.StatusOK, session)
	return nil
}

func (h *handlers) requestReset(w http.ResponseWriter, r *http.Request) error {
	var req resetRequest
	if err := decodeBody(w, r, &req, map[string]*string{"email": &req.Email}); err != nil {
		return err
	}

	if err := h.auth.RequestReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return withStatus(http.StatusUnauthorized, err)
		}
		return err
	}

	respondWithJSON(w, http.StatusOK, messageResponse{Message: "email sent"})
	return nil
}

func (h *handlers) confirmReset(w http.ResponseWriter, r *http.Request) error {
	var req confirmResetRequest
	if err := decodeBody(w, r, &req, map[string]*string{"newPassword": &req.NewPassword}); err != nil {
		return err
	}

	if err := h.auth.ConfirmReset(r.Context(), chi.URLParam(r, paramToken), req.NewPassword); err != nil {
		return err
	}

	respondWithJSON(w, http.StatusOK, messageResponse{Message: "Password reset successful"})
	return nil
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) error {
	p, err := h.profiles.Profile(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		return err
	}
	respondWithJSON(w, http.StatusOK, p)
	return nil
}

func (h *handlers) avatarUpload(w http.ResponseWriter, r *http.Request) error {
	up, err := h.profiles.AvatarUploadURL(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		return err
	}
	respondWithJSON(w, http.StatusOK, up)
	return nil
}

func (h *handlers) avatar(w http.ResponseWriter, r *http.Request) error {
	url, err := h.profiles.AvatarURL(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		return err
	}
	respondWithJSON(w, http.StatusOK, avatarResponse{URL: url})
	return nil
}
