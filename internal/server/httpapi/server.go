package httpapi

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/prajeshElEvEn/microauth/internal/logging"
)

const shutdownTimeout = 15 * time.Second

// Server serves the router until its context is cancelled.
type Server struct {
	address string
	handler http.Handler
	logger  logging.Logger
	errLog  *log.Logger
	started chan net.Addr
}

func NewServer(address string, handler http.Handler, l logging.Logger) *Server {
	return &Server{
		address: address,
		handler: handler,
		logger:  l.With("module", "http_server"),
		started: make(chan net.Addr, 1),
	}
}

// WithErrorLog routes net/http's own connection errors to l.
func (s *Server) WithErrorLog(l *log.Logger) *Server {
	s.errLog = l
	return s
}

// ErrorLog returns the logger given to WithErrorLog, if any.
func (s *Server) ErrorLog() *log.Logger {
	return s.errLog
}

// Started yields the bound address once the listener is open.
func (s *Server) Started() <-chan net.Addr {
	return s.started
}

func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.errLog,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "graceful shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
	s.started <- listen.Addr()

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
