// Config loading for the binder CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyAdapter = "adapter"
	cfgKeyDataDir = "data_dir"

	defaultAdapter = "sqlite"
)

// defaultConfigYAML is written to config.yaml on first run. Every key is
// optional; commented entries document the accepted settings.
const defaultConfigYAML = `# Binder configuration.

# Storage adapter: sqlite, memory, or redis.
adapter: sqlite

# Data directory for the sqlite adapter (overridable by --data-dir).
# data_dir:

# Key namespace, shared by every adapter.
# namespace: chartstore

# Redis connection (redis adapter only).
# redis_addr: localhost:6379
# redis_password: ""
# redis_db: 0

# Engine read-cache TTL.
# cache_ttl: 5m

# Load the starter dataset when opening an empty store.
# seed_on_open: false

# Background sync against a remote practice server.
# sync:
#   enabled: false
#   endpoint: https://sync.example.com/api
#   api_key: ""
#   interval: 30s
#   conflict_policy: newest-wins
#   collections: [doctors, patients, policies, appointments, claims]
`

// loadConfig reads config.yaml from the resolved config directory using
// Viper. It creates the directory and a default config.yaml on first run.
// A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyAdapter, defaultAdapter)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does
// not exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
