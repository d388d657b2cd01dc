// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	// Client settings
	APIBaseURL string `mapstructure:"API_BASE_URL"`
	StorageDir string `mapstructure:"STORAGE_DIR"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	// Dev server settings
	Port      string `mapstructure:"PORT"`
	JWTSecret string `mapstructure:"JWT_SECRET"`
	DBPath    string `mapstructure:"DB_PATH"`
	PageSize  int    `mapstructure:"PAGE_SIZE"`
	Env       string `mapstructure:"APP_ENV"`
}

// TokenFileName is the fixed key under StorageDir where the bearer token is
// persisted between runs.
const TokenFileName = "auth_token"

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file is optional; environment variables and defaults
	// are enough to run.
	_ = viper.ReadInConfig()

	viper.SetDefault("API_BASE_URL", "http://localhost:8376")
	viper.SetDefault("STORAGE_DIR", defaultStorageDir())
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PORT", "8376")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("DB_PATH", "memefeed.db")
	viper.SetDefault("PAGE_SIZE", 10)
	viper.SetDefault("APP_ENV", "development")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// defaultStorageDir places client state under the user config directory,
// falling back to a dotfile directory in $HOME.
func defaultStorageDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "memefeed")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".memefeed"
	}
	return filepath.Join(home, ".memefeed")
}

// TokenPath returns the full path of the persisted token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.StorageDir, TokenFileName)
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	if c.StorageDir == "" {
		return errors.New("STORAGE_DIR is required")
	}
	if c.PageSize <= 0 {
		return errors.New("PAGE_SIZE must be positive")
	}

	isProduction := c.Env == "production" || c.Env == "prod"
	if isProduction {
		if c.JWTSecret == "your-secret-key-change-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
	}

	return nil
}
