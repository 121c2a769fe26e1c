// Package server wires the configuration, user directory, workflows and
// transports together and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prajeshElEvEn/microauth/internal/logging"
	"github.com/prajeshElEvEn/microauth/internal/server/auth"
	"github.com/prajeshElEvEn/microauth/internal/server/config"
	"github.com/prajeshElEvEn/microauth/internal/server/httpapi"
	"github.com/prajeshElEvEn/microauth/internal/server/metrics"
	"github.com/prajeshElEvEn/microauth/internal/server/notify"
	"github.com/prajeshElEvEn/microauth/internal/server/repositories/repomanager"
	"github.com/prajeshElEvEn/microauth/internal/server/services"
	"github.com/prajeshElEvEn/microauth/internal/server/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	gs "github.com/prajeshElEvEn/microauth/internal/server/grpc"
)

const (
	closeTimeout = 10 * time.Second
	fromName     = "microauth"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	httpServer  *httpapi.Server
	healthSrv   *gs.HealthServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	logger.Warn(ctx, "Environment", "env", c.Environment)

	m, err := repomanager.New(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, m, prometheus.NewRegistry())
	if err != nil {
		_ = m.Close(context.Background())
		return nil, err
	}
	return app, nil
}

// newApp builds everything above the directory connection.
func newApp(ctx context.Context, c *config.Config, logger logging.Logger, m repomanager.RepositoryManager, reg *prometheus.Registry) (*App, error) {
	if err := m.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	hasher, err := auth.NewHasher(c.PasswordAlgorithm, c.BcryptCost)
	if err != nil {
		return nil, err
	}

	if c.SecretKey == "" {
		logger.Warn(ctx, "secret key is not set, token issuance will fail")
	}
	issuer := auth.NewIssuer(c.SecretKey, c.TokenValidityDuration)

	sender, err := notify.New(notify.Settings{
		Service:        c.EmailService,
		Host:           c.EmailHost,
		Port:           c.EmailPort,
		Secure:         c.EmailSecure,
		FromAddress:    c.EmailID,
		FromName:       fromName,
		Username:       c.EmailUser,
		Password:       c.EmailPass,
		SendGridAPIKey: c.SendGridAPIKey,
		Timeout:        c.EmailTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("email sender: %w", err)
	}

	avatars := storage.NewAvatarStore(storage.S3Settings{
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	})

	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mtr := metrics.New(reg)

	authService := services.NewAuthService(m, hasher, issuer, sender, c.ResetTokenValidityDuration, logger).
		WithRecorder(mtr)
	profileService := services.NewProfileService(m, avatars)

	router := httpapi.NewRouter(httpapi.Deps{
		Auth:           authService,
		Profiles:       profileService,
		Pinger:         m,
		Tokens:         issuer,
		Log:            logger,
		Recorder:       mtr,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Development:    c.IsDevelopment(),
	})

	httpServer := httpapi.NewServer(c.HTTPAddr, router, logger)
	if sl, ok := logger.(*logging.SlogLogger); ok {
		httpServer.WithErrorLog(slog.NewLogLogger(sl.Slog().Handler(), slog.LevelError))
	}

	return &App{
		config:      c,
		logger:      logger,
		repomanager: m,
		httpServer:  httpServer,
		healthSrv:   gs.NewHealthServer(c.GRPCHealthAddr, logger, m),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled, a signal arrives or a server fails,
// then closes the directory.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server failed", "error", err)
			cancelFunc()
		}
	}()

	if app.config.GRPCHealthAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.healthSrv.Run(ctx); err != nil {
				app.logger.Error(ctx, "grpc health server failed", "error", err)
				cancelFunc()
			}
		}()
	}

	wg.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := app.repomanager.Close(closeCtx); err != nil {
		app.logger.Error(ctx, "closing directory", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
