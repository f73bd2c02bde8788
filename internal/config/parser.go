package config

import "time"

// Default endpoint matches the original Backblaze deployment; any
// S3-compatible endpoint works.
const defaultEndpoint = "https://s3.us-west-002.backblazeb2.com"

// parse reads configuration from environment variables
func parse() (*Config, error) {
	cfg := &Config{
		// Core
		Environment: getEnv("ENVIRONMENT", "local"),
		ServiceName: getEnv("SERVICE_NAME", "anydownloader"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// HTTP server
		Server: ServerConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			HandlerTimeout: getDuration("HANDLER_TIMEOUT", "10m"),
			MaxDetailLen:   getInt("MAX_ERROR_DETAIL_LEN", 500),
		},

		// yt-dlp adapter
		Download: DownloadConfig{
			Dir:                getEnv("DOWNLOAD_DIR", "downloads"),
			CookiesFromBrowser: getEnv("COOKIES_FROM_BROWSER", ""),
			CookiesFile:        getEnv("COOKIES_FILE", ""),
		},

		// Object storage (B2 / any S3-compatible store)
		Storage: StorageConfig{
			Enabled:        getBool("B2_ENABLED", false),
			KeyID:          getEnv("B2_KEY_ID", ""),
			ApplicationKey: getEnv("B2_APPLICATION_KEY", ""),
			Bucket:         getEnv("B2_BUCKET_NAME", ""),
			Endpoint:       getEnv("B2_S3_ENDPOINT", defaultEndpoint),
			Region:         getEnv("AWS_REGION", "us-west-002"),
			PublicRead:     getBool("B2_PUBLIC_READ", true),
			PublicBaseURL:  getEnv("B2_PUBLIC_BASE_URL", ""),
			PresignTTL:     time.Duration(getInt("B2_PRESIGNED_TTL", 604800)) * time.Second,
		},
	}

	return cfg, nil
}
