package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{name: "all flags", args: []string{
			"-a", "127.0.0.1:9090", "-g", ":6000", "-e", "production", "-l", "debug",
			"-d", "memory://", "-s", "secret", "-t", "60", "-r", "15", "-m", "log",
			"-u", "user", "-p", "password", "-b", "bucket", "-n", "us-west-1", "-x", "http://endpoint",
		},
			expected: &Config{
				HTTPAddr:                   "127.0.0.1:9090",
				GRPCHealthAddr:             ":6000",
				Environment:                "production",
				LogLevel:                   "debug",
				DatabaseDSN:                "memory://",
				SecretKey:                  "secret",
				TokenValidityDuration:      time.Hour,
				ResetTokenValidityDuration: 15 * time.Minute,
				EmailService:               "log",
				S3RootUser:                 "user",
				S3RootPassword:             "password",
				S3Bucket:                   "bucket",
				S3Region:                   "us-west-1",
				S3BaseEndpoint:             "http://endpoint",
			}},
		{name: "unknown flags filtered out", args: []string{"-z", "zzz", "-s", "only"},
			expected: &Config{SecretKey: "only"}},
		{name: "bad minutes", args: []string{"-t", "soon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			err := parseFlags(config, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseFlags_DurationsUntouchedWhenAbsent(t *testing.T) {
	config := &Config{TokenValidityDuration: 90 * time.Second}
	require.NoError(t, parseFlags(config, []string{"-s", "x"}))
	assert.Equal(t, 90*time.Second, config.TokenValidityDuration)
}
