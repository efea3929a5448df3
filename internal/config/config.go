package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Streaming site
	Origin    string // e.g. https://www.netflix.com
	WatchPath string // path segment for container pages (default: watch)

	// Pipeline
	FeedTimeoutSeconds  int // bound on waiting for both raw feeds (default: 30)
	FetchTimeoutSeconds int // per-request timeout for subtitle downloads (default: 30)

	// Server
	ServerPort string

	// Paths
	DownloadDir  string // where subtitle files are saved
	DatabaseFile string // $CONFIG_DIR/subarr.db

	// Ledger
	HistoryRetentionDays int // days to keep step/download records (default: 30)

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	viper.SetDefault("ORIGIN", "https://www.netflix.com")
	viper.SetDefault("WATCH_PATH", "watch")
	viper.SetDefault("FEED_TIMEOUT_SECONDS", 30)
	viper.SetDefault("FETCH_TIMEOUT_SECONDS", 30)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("HISTORY_RETENTION_DAYS", 30)
	viper.SetDefault("LOG_LEVEL", "info")

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "subarr")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	downloadDir := viper.GetString("DOWNLOAD_DIR")
	if downloadDir == "" {
		downloadDir = filepath.Join(configDir, "downloads")
	}

	config := &Config{
		Origin:    viper.GetString("ORIGIN"),
		WatchPath: viper.GetString("WATCH_PATH"),

		FeedTimeoutSeconds:  viper.GetInt("FEED_TIMEOUT_SECONDS"),
		FetchTimeoutSeconds: viper.GetInt("FETCH_TIMEOUT_SECONDS"),

		ServerPort: viper.GetString("SERVER_PORT"),

		DownloadDir:  downloadDir,
		DatabaseFile: filepath.Join(configDir, "subarr.db"),

		HistoryRetentionDays: viper.GetInt("HISTORY_RETENTION_DAYS"),

		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	// Validate the origin early: every redirect URL is built from it
	parsed, err := url.Parse(config.Origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("ORIGIN must be an absolute URL, got %q", config.Origin)
	}

	if config.FeedTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("FEED_TIMEOUT_SECONDS must be positive")
	}

	return config, nil
}
