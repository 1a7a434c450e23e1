/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/locatew/pkg/logging"
	"github.com/ssargent/locatew/pkg/query"
	"github.com/ssargent/locatew/pkg/stats"
	"github.com/ssargent/locatew/pkg/storage"
)

// Config represents the locatew configuration shared by updatedb and locate
type Config struct {
	Database   string         `yaml:"database"`
	Statistics string         `yaml:"statistics"`
	History    string         `yaml:"history"` // Empty disables run history
	Walk       Walk           `yaml:"walk"`
	Query      Query          `yaml:"query"`
	Server     Server         `yaml:"server"`
	Metrics    Metrics        `yaml:"metrics"`
	Logging    logging.Config `yaml:"logging"`
}

// Walk configures how updatedb enumerates the file system
type Walk struct {
	Roots       []string `yaml:"roots,omitempty"` // Empty means every fixed drive
	Excludes    []string `yaml:"excludes,omitempty"`
	ExcludeFile string   `yaml:"exclude_file"`
	Workers     int      `yaml:"workers"`
}

// Query configures the search pipeline
type Query struct {
	QueueCapacity int `yaml:"queue_capacity"`
}

// Server configures locate serve
type Server struct {
	Bind           string   `yaml:"bind"`
	Port           int      `yaml:"port"`
	APIKey         string   `yaml:"api_key"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// Metrics configures the node exporter textfile written by updatedb
type Metrics struct {
	Textfile string `yaml:"textfile"`
}

// DefaultDatabasePath returns the database location used when none is configured
func DefaultDatabasePath() string {
	return filepath.Join(os.TempDir(), "locate.db")
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Database:   DefaultDatabasePath(),
		Statistics: stats.DefaultPath(),
		History:    storage.DefaultPath(),
		Query: Query{
			QueueCapacity: query.DefaultQueueCapacity,
		},
		Server: Server{
			Bind: "127.0.0.1",
			Port: 8080,
		},
		Logging: logging.DefaultConfig(),
	}
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.Newf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, errors.Wrap(err, "invalid config path")
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	// 0600: the file may hold the server API key
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", errors.Wrap(err, "failed to generate secure key")
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig writes a default configuration to configPath, optionally
// with a generated server API key.
func BootstrapConfig(configPath string, withAPIKey bool) (*Config, error) {
	config := DefaultConfig()

	if withAPIKey {
		key, err := GenerateSecureKey(32) // 256 bits
		if err != nil {
			return nil, err
		}
		config.Server.APIKey = key
	}

	if err := SaveConfig(config, configPath); err != nil {
		return nil, errors.Wrap(err, "failed to save bootstrap config")
	}

	return config, nil
}

// Resolve loads configPath when it exists, the default config file when it
// exists, and the defaults otherwise.
func Resolve(configPath string) (*Config, error) {
	if configPath != "" {
		return LoadConfig(configPath)
	}
	if def := GetDefaultConfigPath(); ConfigExists(def) {
		return LoadConfig(def)
	}
	return DefaultConfig(), nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./locatew.yaml"
	}
	return filepath.Join(dir, "locatew", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
