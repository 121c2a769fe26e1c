// Package httpapi exposes the auth workflows over HTTP/JSON under /api/v1.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/prajeshElEvEn/microauth/internal/common"
	"github.com/prajeshElEvEn/microauth/internal/logging"
)

const (
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"

	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeForm = "application/x-www-form-urlencoded"

	msgInternal = "internal error"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Message string  `json:"message"`
	Stack   *string `json:"stack"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set(headerContentType, contentTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"internal error","stack":null}`))
		return
	}

	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// statusError pins the response status for err, overriding the kind mapping.
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }

func withStatus(status int, err error) error {
	if err == nil {
		return nil
	}
	return &statusError{status: status, err: err}
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.status
	}

	switch {
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorConflict),
		errors.Is(err, common.ErrorInvalidToken):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the caller-facing text for err. Errors without an
// AppError in their chain never leak their text.
func publicMessage(err error) string {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return msgInternal
}

// appHandler is an http handler that reports failures by returning them.
type appHandler func(w http.ResponseWriter, r *http.Request) error

// errorWriter renders failures of appHandlers as the JSON error envelope.
type errorWriter struct {
	log       logging.Logger
	withStack bool
}

func (ew *errorWriter) handle(h appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			ew.write(w, r, err)
		}
	}
}

func (ew *errorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	attrs := append([]any{"method", r.Method, "path", r.URL.Path, "status", status}, logging.Err(err)...)
	if status >= http.StatusInternalServerError {
		ew.log.Error(r.Context(), "request failed", attrs...)
	} else {
		ew.log.Debug(r.Context(), "request rejected", attrs...)
	}

	resp := errorResponse{Message: publicMessage(err)}
	if ew.withStack {
		stack := fmt.Sprintf("%+v", err)
		resp.Stack = &stack
	}
	respondWithJSON(w, status, resp)
}

var (
	errRouteNotFound    = common.NewAppError(common.ErrorNotFound, "route not found")
	errMethodNotAllowed = common.NewAppError(common.ErrorValidation, "method not allowed")
)
