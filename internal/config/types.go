package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Core settings
	Environment string
	ServiceName string
	LogLevel    string

	// Component configurations
	Server   ServerConfig
	Download DownloadConfig
	Storage  StorageConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr           string
	HandlerTimeout time.Duration
	MaxDetailLen   int
}

// DownloadConfig holds yt-dlp adapter configuration
type DownloadConfig struct {
	// Dir is where downloaded files land and where the /downloads mount
	// serves from.
	Dir string
	// CookiesFromBrowser is a "browser[:profile]" selector, e.g. "chrome" or
	// "firefox:default". Takes precedence over CookiesFile when both are set.
	CookiesFromBrowser string
	// CookiesFile is an absolute path to a Netscape-format cookies.txt.
	CookiesFile string
}

// StorageConfig holds S3-compatible object storage configuration. The field
// names mirror the B2_* environment contract of the original deployment.
type StorageConfig struct {
	Enabled        bool
	KeyID          string
	ApplicationKey string
	Bucket         string
	Endpoint       string
	Region         string
	PublicRead     bool
	PublicBaseURL  string
	PresignTTL     time.Duration
}

// Validate validates the entire configuration. When the storage feature is
// enabled, every missing credential is named exactly so the operator knows
// which variable to set.
func (c *Config) Validate() error {
	var errors []string

	if c.ServiceName == "" {
		errors = append(errors, "SERVICE_NAME is required")
	}
	if c.Download.Dir == "" {
		errors = append(errors, "DOWNLOAD_DIR is required")
	}
	if c.Server.HandlerTimeout <= 0 {
		errors = append(errors, "HANDLER_TIMEOUT must be positive")
	}

	if c.Storage.Enabled {
		if c.Storage.KeyID == "" {
			errors = append(errors, "B2_KEY_ID is required when B2_ENABLED=true")
		}
		if c.Storage.ApplicationKey == "" {
			errors = append(errors, "B2_APPLICATION_KEY is required when B2_ENABLED=true")
		}
		if c.Storage.Bucket == "" {
			errors = append(errors, "B2_BUCKET_NAME is required when B2_ENABLED=true")
		}
		if c.Storage.PresignTTL <= 0 {
			errors = append(errors, "B2_PRESIGNED_TTL must be positive")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// PublicBase returns the base URL public object URLs are rooted at: either the
// configured override (CDN / website domain) or the endpoint plus bucket name.
func (c *StorageConfig) PublicBase() string {
	if c.PublicBaseURL != "" {
		return strings.TrimRight(c.PublicBaseURL, "/")
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(c.Endpoint, "/"), c.Bucket)
}
