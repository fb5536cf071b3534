package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"endpoint_addr_http": "127.0.0.1:9000",
		"database_dsn":       "postgres://db",
		"secret_key":         "my_secret_key",
		"session_token_ttl":  "2h",
		"verification_ttl":   "48h",
		"password_reset_ttl": int64(30 * time.Minute),
		"mail_driver":        "ses",
		"google_client_id":   "client",
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, []string{"-config", path}))

		assert.Equal(t, "127.0.0.1:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 2*time.Hour, cfg.SessionTokenTTL)
		assert.Equal(t, 48*time.Hour, cfg.VerificationTTL)
		assert.Equal(t, 30*time.Minute, cfg.PasswordResetTTL)
		assert.Equal(t, MailDriverSES, cfg.MailDriver)
		assert.Equal(t, "client", cfg.GoogleClientID)
	})

	t.Run("absent keys keep current values", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, []string{"-c", path}))

		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
		assert.Equal(t, 1025, cfg.SMTPPort)
		assert.Equal(t, 5*time.Minute, cfg.OAuthStateTTL)
	})

	t.Run("no config flag, no changes", func(t *testing.T) {
		cfg := &Config{SecretKey: "key"}
		require.NoError(t, parseJson(cfg, nil))
		assert.Equal(t, "key", cfg.SecretKey)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := &Config{}
		assert.Error(t, parseJson(cfg, []string{"-c", filepath.Join(t.TempDir(), "nope.json")}))
	})

	t.Run("invalid json", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		cfg := &Config{}
		assert.Error(t, parseJson(cfg, []string{"-c", bad}))
	})
}
