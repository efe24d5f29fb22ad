// Package paths resolves where configuration and data live. Flags beat
// environment variables beat platform defaults; the data directory keeps
// a CWD-relative default so a checkout can carry its own store.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// CWD-relative directory names.
const (
	DefaultConfigDirName = ".chartstore"
	DefaultDataDirName   = ".chartstore-db"
)

// Environment variable overrides.
const (
	EnvConfigDir = "CHARTSTORE_CONFIG_DIR"
	EnvDataDir   = "CHARTSTORE_DATA_DIR"
)

const appDirName = "chartstore"

// DefaultConfigDir returns the platform default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/chartstore (fallback ~/.config/chartstore)
// macOS:   ~/Library/Application Support/chartstore
// Windows: %APPDATA%/chartstore
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appDirName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName), nil
}

// ResolveConfigDir picks the configuration directory: flag, then
// CHARTSTORE_CONFIG_DIR, then the platform default.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir picks the data directory: flag, then the config file
// value, then CHARTSTORE_DATA_DIR, then $(CWD)/.chartstore-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}
