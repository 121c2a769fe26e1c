// Package config handles configuration for the server: defaults, .env files
// and environment variables, an optional JSON overlay and command-line flags,
// applied in that order.
package config

import (
	"fmt"
	"time"
)

// Deployment environments.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

// Password hashing algorithms.
const (
	PasswordBcrypt = "bcrypt"
	PasswordArgon2 = "argon2id"
)

// Email providers.
const (
	EmailSMTP     = "smtp"
	EmailSendGrid = "sendgrid"
	EmailLog      = "log"
)

// Config holds runtime settings for the auth server.
//
// Fields:
//   - HTTPAddr / GRPCHealthAddr: bind addresses for the JSON API and the gRPC health probe.
//   - Environment: production, development or test. Error stacks are exposed only in development.
//   - DatabaseDSN: directory location; the scheme selects postgres, mongodb or memory.
//   - SecretKey: HMAC secret for signing bearer tokens (HS256).
//   - TokenValidityDuration: bearer token lifetime.
//   - ResetTokenValidityDuration: how long a password reset token stays usable.
//   - PasswordAlgorithm / BcryptCost: credential hashing.
//   - Email*: notification sender settings.
//   - S3*: object storage for avatars.
type Config struct {
	HTTPAddr       string
	GRPCHealthAddr string
	Environment    string
	LogLevel       string

	DatabaseDSN string

	SecretKey                  string
	TokenValidityDuration      time.Duration
	ResetTokenValidityDuration time.Duration

	PasswordAlgorithm string
	BcryptCost        int

	EmailService   string
	EmailHost      string
	EmailPort      int
	EmailSecure    bool
	EmailID        string
	EmailUser      string
	EmailPass      string
	SendGridAPIKey string
	EmailTimeout   time.Duration

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
}

// LoadDefaults populates Config with local defaults. The environment is
// production unless selected otherwise, so error stacks stay hidden.
// NOTE: SecretKey is left empty on purpose; token issuing fails until it is set.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = "127.0.0.1:5000"
	c.GRPCHealthAddr = ":50051"
	c.Environment = EnvProduction
	c.LogLevel = "info"
	c.DatabaseDSN = "mongodb://localhost:27017/microauth"
	c.SecretKey = ""
	c.TokenValidityDuration = 24 * time.Hour
	c.ResetTokenValidityDuration = time.Hour
	c.PasswordAlgorithm = PasswordBcrypt
	c.BcryptCost = 10
	c.EmailService = EmailSMTP
	c.EmailHost = "localhost"
	c.EmailPort = 587
	c.EmailSecure = false
	c.EmailTimeout = 15 * time.Second
	c.S3Bucket = "avatars"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// IsDevelopment reports whether internal details may be shown to callers.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvProduction, EnvDevelopment, EnvTest:
	default:
		return fmt.Errorf("invalid environment: %q", c.Environment)
	}

	switch c.PasswordAlgorithm {
	case PasswordBcrypt, PasswordArgon2:
	default:
		return fmt.Errorf("unsupported password algorithm: %q", c.PasswordAlgorithm)
	}

	switch c.EmailService {
	case EmailSMTP, EmailSendGrid, EmailLog:
	default:
		// well-known providers ("gmail", "outlook", ...) go through SMTP
		// with the configured host.
		if c.EmailHost == "" {
			return fmt.Errorf("email service %q needs an email host", c.EmailService)
		}
	}

	if c.TokenValidityDuration <= 0 {
		return fmt.Errorf("token validity must be positive, got %s", c.TokenValidityDuration)
	}
	if c.ResetTokenValidityDuration <= 0 {
		return fmt.Errorf("reset token validity must be positive, got %s", c.ResetTokenValidityDuration)
	}

	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying .env files
// and environment variables, an optional JSON file and finally command-line
// flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := loadDotEnv(environmentName()); err != nil {
		return nil, err
	}
	parseEnv(cfg)
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, nil); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
