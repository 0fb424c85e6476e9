// Package config handles loading user configuration for envforge.
//
// Configuration lives in $XDG_CONFIG_HOME/envforge/config.yaml and every
// key can be overridden through ENVFORGE_* environment variables, e.g.
// ENVFORGE_SERVER overrides `server`.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config is the loaded user configuration.
type Config struct {
	// Server is the provider configuration service base URL.
	Server string `mapstructure:"server"`
	// DefaultProvider is used when a command gets no provider argument.
	DefaultProvider string `mapstructure:"default_provider"`
	// OpenAPIDoc, when set, enables endpoint discovery from the
	// service's OpenAPI document (path or absolute URL).
	OpenAPIDoc string `mapstructure:"openapi_doc"`
	// CacheTTL controls dry-run cache freshness.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// Output is the default output format (table, json, yaml).
	Output string `mapstructure:"output"`

	Auth AuthConfig `mapstructure:"auth"`
}

// AuthConfig configures service authentication.
type AuthConfig struct {
	// TokenURL, ClientID, ClientSecret enable the client-credentials
	// flow. A token stored via `envforge login` takes precedence.
	TokenURL     string   `mapstructure:"token_url"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	Scopes       []string `mapstructure:"scopes"`
}

// Loader loads configuration from file and environment.
type Loader struct {
	appName    string
	configPath string
}

// NewLoader creates a loader for the application. An explicit
// configPath overrides the XDG location.
func NewLoader(appName, configPath string) *Loader {
	return &Loader{
		appName:    appName,
		configPath: configPath,
	}
}

// Load reads the configuration. A missing config file is not an error;
// defaults and environment variables still apply.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("output", "table")

	v.SetEnvPrefix(strings.ToUpper(strings.ReplaceAll(l.appName, "-", "_")))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := l.configPath
	if path == "" {
		path = filepath.Join(xdg.ConfigHome, l.appName, "config.yaml")
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		// The default config file is optional; an explicit one is not.
		if l.configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
