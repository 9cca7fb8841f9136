package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:8081", "-g", ":9090", "-d", "db", "-s", "secret", "-m", "HS256",
				"-t", "1", "-r", "3", "-private-key-file", "priv.pem", "-public-key-file", "pub.pem",
				"-hash", "argon2id", "-redis", "localhost:6379", "-log-format", "text", "-log-level", "debug",
				"-seed=false",
			},
			expected: &Config{
				EndpointAddrHTTP:             "127.0.0.1:8081",
				EndpointAddrGRPC:             ":9090",
				DatabaseDSN:                  "db",
				SecretKey:                    "secret",
				SigningMethod:                "HS256",
				AccessTokenValidityDuration:  1 * time.Minute,
				RefreshTokenValidityDuration: 3 * time.Minute,
				RSAPrivateKeyFile:            "priv.pem",
				RSAPublicKeyFile:             "pub.pem",
				PasswordHashAlgorithm:        "argon2id",
				RedisAddr:                    "localhost:6379",
				LogFormat:                    "text",
				LogLevel:                     "debug",
				SeedData:                     false,
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"cmd", "-c", "cfg.json", "-x", "1", "-a", ":1"},
			expected: &Config{EndpointAddrHTTP: ":1", AccessTokenValidityDuration: 90 * time.Second},
		},
		{
			name:        "bad minutes",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{AccessTokenValidityDuration: 90 * time.Second}
			if tt.expected != nil && tt.expected.AccessTokenValidityDuration != 90*time.Second {
				config = &Config{}
			}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
