package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/prajeshElEvEn/microauth/internal/flagx"
	"github.com/prajeshElEvEn/microauth/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file.
// Duration fields accept "1h30m" strings or integer nanoseconds.
// Zero values leave the corresponding Config field unchanged.
type JsonConfig struct {
	HTTPAddr                   string         `json:"http_addr"`
	GRPCHealthAddr             string         `json:"grpc_health_addr"`
	Environment                string         `json:"environment"`
	LogLevel                   string         `json:"log_level"`
	DatabaseDSN                string         `json:"database_dsn"`
	SecretKey                  string         `json:"secret_key"`
	TokenValidityDuration      timex.Duration `json:"token_validity_duration"`
	ResetTokenValidityDuration timex.Duration `json:"reset_token_validity_duration"`
	PasswordAlgorithm          string         `json:"password_algorithm"`
	BcryptCost                 int            `json:"bcrypt_cost"`
	EmailService               string         `json:"email_service"`
	EmailHost                  string         `json:"email_host"`
	EmailPort                  int            `json:"email_port"`
	EmailSecure                *bool          `json:"email_secure"`
	EmailID                    string         `json:"email_id"`
	EmailUser                  string         `json:"email_user"`
	EmailPass                  string         `json:"email_pass"`
	SendGridAPIKey             string         `json:"sendgrid_api_key"`
	EmailTimeout               timex.Duration `json:"email_timeout"`
	S3RootUser                 string         `json:"s3_root_user"`
	S3RootPassword             string         `json:"s3_root_password"`
	S3Bucket                   string         `json:"s3_bucket"`
	S3Region                   string         `json:"s3_region"`
	S3BaseEndpoint             string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the file named by -c/-config (or CONFIG).
// Nothing happens when no file is named.
func parseJson(config *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setString(&config.Environment, c.Environment)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.TokenValidityDuration, c.TokenValidityDuration)
	setDuration(&config.ResetTokenValidityDuration, c.ResetTokenValidityDuration)
	setString(&config.PasswordAlgorithm, c.PasswordAlgorithm)
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
	setString(&config.EmailService, c.EmailService)
	setString(&config.EmailHost, c.EmailHost)
	if c.EmailPort > 0 {
		config.EmailPort = c.EmailPort
	}
	if c.EmailSecure != nil {
		config.EmailSecure = *c.EmailSecure
	}
	setString(&config.EmailID, c.EmailID)
	setString(&config.EmailUser, c.EmailUser)
	setString(&config.EmailPass, c.EmailPass)
	setString(&config.SendGridAPIKey, c.SendGridAPIKey)
	setDuration(&config.EmailTimeout, c.EmailTimeout)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration > 0 {
		*dst = v.Duration
	}
}
