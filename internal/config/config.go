package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/ctxlaunch/ctxlaunch/internal/settings"
)

type ProvisionConfig struct {
	WorkDir string `mapstructure:"work_dir"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type Config struct {
	// Servers holds the per-server settings payloads, keyed by catalog name.
	Servers map[string]settings.Payload `mapstructure:"servers"`

	Provision ProvisionConfig `mapstructure:"provision"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
}

// Load reads ctxlaunch.yaml from the current directory or ~/.ctxlaunch.
// A missing config file is not an error: defaults apply, and servers without
// a settings payload fail later at resolution time.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("ctxlaunch")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.ctxlaunch")

	home := os.Getenv("HOME")
	v.SetDefault("provision.work_dir", filepath.Join(home, ".ctxlaunch", "bin"))
	v.SetDefault("server.port", 8137)
	v.SetDefault("storage.db_path", filepath.Join(home, ".ctxlaunch", "history.db"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// DefaultPath returns the location `ctxlaunch init` writes to.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".ctxlaunch", "ctxlaunch.yaml")
}
