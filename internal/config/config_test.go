package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadForTest(t *testing.T) *Config {
	t.Helper()
	Reset()
	t.Cleanup(Reset)
	require.NoError(t, Load())
	return MustGet()
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")

	cfg := loadForTest(t)

	assert.Equal(t, "anydownloader", cfg.ServiceName)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Server.HandlerTimeout)
	assert.Equal(t, 500, cfg.Server.MaxDetailLen)
	assert.Equal(t, "downloads", cfg.Download.Dir)

	assert.False(t, cfg.Storage.Enabled)
	assert.Equal(t, "https://s3.us-west-002.backblazeb2.com", cfg.Storage.Endpoint)
	assert.Equal(t, "us-west-002", cfg.Storage.Region)
	assert.True(t, cfg.Storage.PublicRead)
	assert.Equal(t, 7*24*time.Hour, cfg.Storage.PresignTTL)
}

func TestLoadStorageEnabled(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("B2_ENABLED", "true")
	t.Setenv("B2_KEY_ID", "key-id")
	t.Setenv("B2_APPLICATION_KEY", "app-key")
	t.Setenv("B2_BUCKET_NAME", "media")
	t.Setenv("B2_PUBLIC_READ", "false")
	t.Setenv("B2_PRESIGNED_TTL", "3600")

	cfg := loadForTest(t)

	assert.True(t, cfg.Storage.Enabled)
	assert.Equal(t, "media", cfg.Storage.Bucket)
	assert.False(t, cfg.Storage.PublicRead)
	assert.Equal(t, time.Hour, cfg.Storage.PresignTTL)
}

func TestValidateNamesEveryMissingStorageVar(t *testing.T) {
	cfg := &Config{
		ServiceName: "anydownloader",
		Server:      ServerConfig{HandlerTimeout: time.Minute},
		Download:    DownloadConfig{Dir: "downloads"},
		Storage:     StorageConfig{Enabled: true},
	}

	err := cfg.Validate()
	require.Error(t, err)

	assert.Contains(t, err.Error(), "B2_KEY_ID is required")
	assert.Contains(t, err.Error(), "B2_APPLICATION_KEY is required")
	assert.Contains(t, err.Error(), "B2_BUCKET_NAME is required")
}

func TestValidatePassesWhenStorageDisabled(t *testing.T) {
	cfg := &Config{
		ServiceName: "anydownloader",
		Server:      ServerConfig{HandlerTimeout: time.Minute},
		Download:    DownloadConfig{Dir: "downloads"},
		Storage:     StorageConfig{Enabled: false},
	}

	assert.NoError(t, cfg.Validate())
}

func TestGetBoolSpellings(t *testing.T) {
	truthy := []string{"1", "true", "TRUE", "yes", "on", "Yes"}
	falsy := []string{"0", "false", "no", "off", "OFF"}

	for _, v := range truthy {
		t.Setenv("TEST_BOOL_VAR", v)
		assert.True(t, getBool("TEST_BOOL_VAR", false), v)
	}
	for _, v := range falsy {
		t.Setenv("TEST_BOOL_VAR", v)
		assert.False(t, getBool("TEST_BOOL_VAR", true), v)
	}

	t.Setenv("TEST_BOOL_VAR", "maybe")
	assert.True(t, getBool("TEST_BOOL_VAR", true), "unrecognized value falls back to default")
}

func TestPublicBase(t *testing.T) {
	withOverride := StorageConfig{
		PublicBaseURL: "https://cdn.example.com/file/media/",
		Endpoint:      "https://s3.us-west-002.backblazeb2.com",
		Bucket:        "media",
	}
	assert.Equal(t, "https://cdn.example.com/file/media", withOverride.PublicBase())

	withoutOverride := StorageConfig{
		Endpoint: "https://s3.us-west-002.backblazeb2.com",
		Bucket:   "media",
	}
	assert.Equal(t, "https://s3.us-west-002.backblazeb2.com/media", withoutOverride.PublicBase())
}

func TestEnvironmentDetection(t *testing.T) {
	assert.True(t, (&Config{Environment: "local"}).IsLocal())
	assert.True(t, (&Config{Environment: "dev"}).IsLocal())
	assert.True(t, (&Config{Environment: "production"}).IsProduction())
	assert.True(t, (&Config{Environment: "PROD"}).IsProduction())
	assert.True(t, (&Config{Environment: "test"}).IsTest())
	assert.False(t, (&Config{Environment: "production"}).IsLocal())
}
