package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Request
		ImageHost
		Storage
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	// Request governs every outbound call made by the source adapters.
	Request struct {
		Timeout    time.Duration
		MaxRetries int
		RetryDelay time.Duration
	}
	ImageHost struct {
		Enabled        bool
		BaseURL        string
		Email          string
		Password       string
		MaxUploadBytes int64
		UploadRetries  int           // attempts, not re-tries
		UploadBackoff  time.Duration // first wait, doubled after each failure
	}
	Storage struct {
		TokenFile  string
		ScratchDir string
	}
)

// CoverMirroringEnabled reports whether cover uploads should be attempted at all.
func (c ImageHost) CoverMirroringEnabled() bool {
	return c.Enabled && c.BaseURL != "" && c.Email != "" && c.Password != ""
}

// LoadDotEnv reads variables from the given files (".env" when none are
// named) without overriding anything already set in the environment.
// A missing file is not an error.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Printf("[config] could not load %s: %v", f, err)
		}
	}
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("request_timeout", "10s")
	v.SetDefault("max_retries", 3)
	v.SetDefault("retry_delay", "1s")

	v.SetDefault("imghost_enabled", false)
	v.SetDefault("imghost_base_url", "")
	v.SetDefault("imghost_email", "")
	v.SetDefault("imghost_password", "")
	v.SetDefault("imghost_max_upload_bytes", DefaultMaxUploadBytes)
	v.SetDefault("imghost_upload_retries", 3)
	v.SetDefault("imghost_upload_backoff", "2s")

	v.SetDefault("token_file", DefaultTokenFile)
	v.SetDefault("scratch_dir", os.TempDir())

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Request: Request{
			Timeout:    v.GetDuration("REQUEST_TIMEOUT"),
			MaxRetries: v.GetInt("MAX_RETRIES"),
			RetryDelay: v.GetDuration("RETRY_DELAY"),
		},
		ImageHost: ImageHost{
			Enabled:        v.GetBool("IMGHOST_ENABLED"),
			BaseURL:        v.GetString("IMGHOST_BASE_URL"),
			Email:          v.GetString("IMGHOST_EMAIL"),
			Password:       v.GetString("IMGHOST_PASSWORD"),
			MaxUploadBytes: v.GetInt64("IMGHOST_MAX_UPLOAD_BYTES"),
			UploadRetries:  v.GetInt("IMGHOST_UPLOAD_RETRIES"),
			UploadBackoff:  v.GetDuration("IMGHOST_UPLOAD_BACKOFF"),
		},
		Storage: Storage{
			TokenFile:  v.GetString("TOKEN_FILE"),
			ScratchDir: v.GetString("SCRATCH_DIR"),
		},
	}
}
