package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// environmentName reads the deployment environment selector.
func environmentName() string {
	if v := envString("APP_ENV", ""); v != "" {
		return v
	}
	return envString("NODE_ENV", "")
}

// loadDotEnv reads .env and then the environment-specific file. Missing files
// are skipped; variables already set in the process environment win.
func loadDotEnv(env string) error {
	files := []string{".env"}
	switch env {
	case EnvProduction:
		files = append(files, ".env.production")
	case EnvDevelopment, EnvTest:
		files = append(files, ".env.test")
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// parseEnv overlays environment variables onto config. Unset or unparsable
// values leave the current field untouched.
func parseEnv(c *Config) {
	if env := environmentName(); env != "" {
		c.Environment = env
	}

	host, port := envString("HOSTNAME", ""), envString("PORT", "")
	if host != "" || port != "" {
		h, p, err := net.SplitHostPort(c.HTTPAddr)
		if err != nil {
			h, p = "", ""
		}
		if host != "" {
			h = host
		}
		if port != "" {
			p = port
		}
		c.HTTPAddr = net.JoinHostPort(h, p)
	}
	c.HTTPAddr = envString("HTTP_ADDR", c.HTTPAddr)
	c.GRPCHealthAddr = envString("GRPC_HEALTH_ADDR", c.GRPCHealthAddr)
	c.LogLevel = envString("LOG_LEVEL", c.LogLevel)

	c.DatabaseDSN = envString("MONGO_URI", c.DatabaseDSN)
	c.DatabaseDSN = envString("DATABASE_DSN", c.DatabaseDSN)

	c.SecretKey = envString("SECRET", c.SecretKey)
	if v := envString("EXPIRY", ""); v != "" {
		if d, err := parseExpiry(v); err == nil {
			c.TokenValidityDuration = d
		}
	}
	c.ResetTokenValidityDuration = envDuration("RESET_TOKEN_EXPIRY", c.ResetTokenValidityDuration)

	c.PasswordAlgorithm = envString("PASSWORD_ALGORITHM", c.PasswordAlgorithm)
	c.BcryptCost = envInt("BCRYPT_COST", c.BcryptCost)

	c.EmailService = envString("EMAIL_SERVICE", c.EmailService)
	c.EmailHost = envString("EMAIL_HOST", c.EmailHost)
	c.EmailPort = envInt("EMAIL_PORT", c.EmailPort)
	c.EmailSecure = envBool("EMAIL_SECURE", c.EmailSecure)
	c.EmailID = envString("EMAIL_ID", c.EmailID)
	c.EmailUser = envString("EMAIL_USER", c.EmailUser)
	c.EmailPass = envString("EMAIL_PASS", c.EmailPass)
	c.SendGridAPIKey = envString("SENDGRID_API_KEY", c.SendGridAPIKey)
	c.EmailTimeout = envDuration("EMAIL_TIMEOUT", c.EmailTimeout)

	c.S3RootUser = envString("S3_ROOT_USER", c.S3RootUser)
	c.S3RootPassword = envString("S3_ROOT_PASSWORD", c.S3RootPassword)
	c.S3Bucket = envString("S3_BUCKET", c.S3Bucket)
	c.S3Region = envString("S3_REGION", c.S3Region)
	c.S3BaseEndpoint = envString("S3_BASE_ENDPOINT", c.S3BaseEndpoint)
}

// parseExpiry accepts Go durations ("12h"), day counts ("30d") and bare
// numbers of seconds ("3600"), the forms jsonwebtoken's expiresIn takes.
func parseExpiry(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("invalid expiry %q", v)
		}
		return time.Duration(n) * time.Second, nil
	}
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid expiry %q", v)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid expiry %q", v)
	}
	return d, nil
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
