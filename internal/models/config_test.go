package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, StorageTypeSQLite, cfg.Storage.Type)
	assert.Equal(t, "./crawl.db", cfg.Storage.Path)

	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, 5, cfg.Security.RateLimit.MaxRequests)
	assert.Equal(t, 60*time.Second, cfg.Security.RateLimit.Window)

	assert.Equal(t, DefaultAccessToken, cfg.Security.DefaultToken)
	assert.False(t, cfg.Security.UniqueTokens)
	require.Len(t, cfg.Security.SeedBindings, 1)
	assert.Equal(t, DefaultAccessToken, cfg.Security.SeedBindings[0].Token)

	assert.NotEmpty(t, cfg.Fetcher.UserAgents)

	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_ServerPort(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_TLSRequiresFiles(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Server.TLSEnabled = true
	assert.Error(t, cfg.Validate())

	cfg.Server.TLSCertFile = "cert.pem"
	cfg.Server.TLSKeyFile = "key.pem"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_StorageType(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Storage.Type = "cassandra"
	assert.Error(t, cfg.Validate())

	cfg.Storage.Type = StorageTypeMemory
	assert.NoError(t, cfg.Validate())

	cfg.Storage.Type = StorageTypePostgres
	assert.Error(t, cfg.Validate(), "postgres requires a DSN")

	cfg.Storage.Database.DSN = "postgres://localhost/scraper"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_RateLimit(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Security.RateLimit.MaxRequests = 0
	assert.Error(t, cfg.Validate())

	cfg.Security.RateLimit.MaxRequests = 5
	cfg.Security.RateLimit.Window = 0
	assert.Error(t, cfg.Validate())

	// Disabled rate limiting skips those checks
	cfg.Security.RateLimit.Enabled = false
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_DefaultToken(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Security.DefaultToken = ""
	assert.Error(t, cfg.Validate())

	// Unique token mode does not need a default
	cfg.Security.UniqueTokens = true
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_SeedBindings(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Security.SeedBindings = append(cfg.Security.SeedBindings, CredentialBinding{Fingerprint: "fp"})
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_Fetcher(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Fetcher.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg.Fetcher.Timeout = 30 * time.Second
	cfg.Fetcher.UserAgents = nil
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_Logging(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg.Logging.Format = "text"
	cfg.Logging.Output = "file"
	assert.Error(t, cfg.Validate(), "file output requires a path")

	cfg.Logging.FilePath = "/tmp/scraper.log"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_Metrics(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Metrics.Port = 0
	assert.Error(t, cfg.Validate())

	cfg.Metrics.Enabled = false
	assert.NoError(t, cfg.Validate(), "disabled metrics skip validation")
}
