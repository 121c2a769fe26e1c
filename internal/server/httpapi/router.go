package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prajeshElEvEn/microauth/internal/logging"
)

const (
	apiBasePath    = "/api/v1"
	healthPath     = "/health"
	authBasePath   = "/auth"
	usersBasePath  = "/users"
	metricsPath    = "/metrics"
	paramToken     = "token"
	defaultTimeout = 60 * time.Second
)

// Deps are the collaborators the router dispatches to.
type Deps struct {
	Auth     AuthWorkflows
	Profiles Profiles
	Pinger   Pinger
	Tokens   TokenVerifier
	Log      logging.Logger

	// Recorder and MetricsHandler are optional.
	Recorder       RequestRecorder
	MetricsHandler http.Handler

	// Development adds error stacks to failed responses.
	Development bool
	Timeout     time.Duration
}

// NewRouter builds the HTTP handler for the service.
func NewRouter(d Deps) http.Handler {
	if d.Timeout <= 0 {
		d.Timeout = defaultTimeout
	}
	ew := &errorWriter{log: d.Log, withStack: d.Development}
	h := &handlers{auth: d.Auth, profiles: d.Profiles, pinger: d.Pinger}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(d.Log))
	if d.Recorder != nil {
		r.Use(instrument(d.Recorder))
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(d.Timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{headerAuthorization, headerContentType},
		MaxAge:         300,
	}))

	r.NotFound(ew.handle(func(w http.ResponseWriter, r *http.Request) error {
		return withStatus(http.StatusNotFound, errRouteNotFound)
	}))
	r.MethodNotAllowed(ew.handle(func(w http.ResponseWriter, r *http.Request) error {
		return withStatus(http.StatusMethodNotAllowed, errMethodNotAllowed)
	}))

	r.Route(apiBasePath, func(r chi.Router) {
		r.Get(healthPath, ew.handle(h.health))

		r.Route(authBasePath, func(r chi.Router) {
			r.Post("/register", ew.handle(h.register))
			r.Post("/login", ew.handle(h.login))
			r.Post("/reset", ew.handle(h.requestReset))
			r.Post("/reset/{"+paramToken+"}", ew.handle(h.confirmReset))
		})

		r.Route(usersBasePath, func(r chi.Router) {
			r.Use(requireUser(d.Tokens, ew))
			r.Get("/me", ew.handle(h.me))
			r.Post("/me/avatar", ew.handle(h.avatarUpload))
			r.Get("/me/avatar", ew.handle(h.avatar))
		})
	})

	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, metricsPath, d.MetricsHandler)
	}

	return r
}
