// Package config loads formulary settings from flags, environment, .env and config files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Setting keys, shared by config files, FORMULARY_* env vars and bound flags
const (
	KeyDefinitionsDir    = "definitions_dir"
	KeyTapDir            = "tap_dir"
	KeyCacheDir          = "cache_dir"
	KeyGitHubAPIURL      = "github_api_url"
	KeyGitHubToken       = "github_token"
	KeySigningKey        = "signing_key"
	KeySigningPassphrase = "signing_passphrase"
	KeyHTTPTimeout       = "http_timeout"
	KeyRetryAttempts     = "retry_attempts"
	KeyLogLevel          = "log_level"
)

const (
	EnvPrefix         = "FORMULARY"
	DefaultConfigName = ".formulary"
	DefaultEnvFile    = ".env"
)

// Config holds the resolved settings
type Config struct {
	DefinitionsDir    string
	TapDir            string
	CacheDir          string
	GitHubAPIURL      string
	GitHubToken       string
	SigningKey        string
	SigningPassphrase string
	HTTPTimeout       time.Duration
	RetryAttempts     uint
	LogLevel          string
	ConfigFile        string // file the settings were read from, empty if none
}

// SetDefaults registers every key with its default so env lookups work for all of them
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDefinitionsDir, "formulas")
	v.SetDefault(KeyTapDir, "")
	v.SetDefault(KeyCacheDir, filepath.Join(xdg.CacheHome, "formulary", "archives"))
	v.SetDefault(KeyGitHubAPIURL, "https://api.github.com")
	v.SetDefault(KeyGitHubToken, "")
	v.SetDefault(KeySigningKey, "")
	v.SetDefault(KeySigningPassphrase, "")
	v.SetDefault(KeyHTTPTimeout, 5*time.Minute)
	v.SetDefault(KeyRetryAttempts, 3)
	v.SetDefault(KeyLogLevel, "info")
}

// LoadEnv loads a .env file into the process environment. An explicit path
// must exist; the default .env in the working directory is optional.
// Variables already exported win over the file.
func LoadEnv(envPath string) error {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("error loading file from %s: %w", envPath, err)
		}
		return nil
	}

	if _, err := os.Stat(DefaultEnvFile); err != nil {
		return nil
	}
	if err := godotenv.Load(DefaultEnvFile); err != nil {
		return fmt.Errorf("error loading file from %s: %w", DefaultEnvFile, err)
	}
	return nil
}

// Load reads configFile (or .formulary.yaml from the working directory or
// $XDG_CONFIG_HOME/formulary) and FORMULARY_* env vars into v and resolves them
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, "formulary"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		DefinitionsDir:    v.GetString(KeyDefinitionsDir),
		TapDir:            v.GetString(KeyTapDir),
		CacheDir:          v.GetString(KeyCacheDir),
		GitHubAPIURL:      v.GetString(KeyGitHubAPIURL),
		GitHubToken:       v.GetString(KeyGitHubToken),
		SigningKey:        v.GetString(KeySigningKey),
		SigningPassphrase: v.GetString(KeySigningPassphrase),
		HTTPTimeout:       v.GetDuration(KeyHTTPTimeout),
		RetryAttempts:     v.GetUint(KeyRetryAttempts),
		LogLevel:          v.GetString(KeyLogLevel),
		ConfigFile:        v.ConfigFileUsed(),
	}

	// Fall back to the tokens CI systems and the gh CLI export
	if cfg.GitHubToken == "" {
		cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}
	if cfg.GitHubToken == "" {
		cfg.GitHubToken = os.Getenv("GH_TOKEN")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable zero value
func (c *Config) Validate() error {
	if c.DefinitionsDir == "" {
		return fmt.Errorf("%s must not be empty", KeyDefinitionsDir)
	}
	if c.GitHubAPIURL == "" {
		return fmt.Errorf("%s must not be empty", KeyGitHubAPIURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyHTTPTimeout, c.HTTPTimeout)
	}
	if c.RetryAttempts == 0 {
		return fmt.Errorf("%s must be at least 1", KeyRetryAttempts)
	}
	return nil
}
