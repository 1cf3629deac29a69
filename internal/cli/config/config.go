package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the fgac project configuration.
type Config struct {
	ProjectName string       `mapstructure:"project_name"`
	Store       StoreConfig  `mapstructure:"store"`
	Server      ServerConfig `mapstructure:"server"`
}

// StoreConfig configures the compiled-model store.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // "postgres", "sqlite", or "memory"
	URL    string `mapstructure:"url"`
}

// ServerConfig represents compile-API server configuration.
type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	Host      string `mapstructure:"host"`
	APIPrefix string `mapstructure:"api_prefix"`
	Auth      string `mapstructure:"auth"` // "jwt", "local", or "none"
}

// Load loads the configuration from fgac.yml or fgac.yaml.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("store.driver", "memory")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.api_prefix", "")
	v.SetDefault("server.auth", "none")

	v.SetConfigName("fgac")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvPrefix("FGAC")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// GetStoreURL returns the store URL from config or environment.
func GetStoreURL() string {
	if url := os.Getenv("FGAC_STORE_URL"); url != "" {
		return url
	}

	cfg, err := Load()
	if err != nil {
		return ""
	}

	return cfg.Store.URL
}

// InProject checks if the current directory is an fgac project.
func InProject() bool {
	if _, err := os.Stat("fgac.yml"); err == nil {
		return true
	}
	if _, err := os.Stat("fgac.yaml"); err == nil {
		return true
	}
	return false
}

// GetProjectRoot tries to find the project root by looking for fgac.yml.
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "fgac.yml")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "fgac.yaml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in an fgac project (no fgac.yml found)")
		}
		dir = parent
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Server.APIPrefix != "" {
		if !strings.HasPrefix(cfg.Server.APIPrefix, "/") {
			return fmt.Errorf("server.api_prefix must start with '/', got: %s", cfg.Server.APIPrefix)
		}
		if strings.HasSuffix(cfg.Server.APIPrefix, "/") {
			return fmt.Errorf("server.api_prefix must not end with '/', got: %s", cfg.Server.APIPrefix)
		}
	}

	switch cfg.Store.Driver {
	case "postgres", "sqlite", "memory":
	default:
		return fmt.Errorf("store.driver must be one of postgres, sqlite, memory, got: %s", cfg.Store.Driver)
	}

	switch cfg.Server.Auth {
	case "jwt", "local", "none":
	default:
		return fmt.Errorf("server.auth must be one of jwt, local, none, got: %s", cfg.Server.Auth)
	}

	return nil
}
