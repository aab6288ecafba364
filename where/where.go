// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/offplay/offplay/constant"
	"github.com/offplay/offplay/filesystem"
	"github.com/samber/lo"
)

// Environment overrides for the configuration and data directories.
const (
	EnvConfigPath = "OFFPLAY_CONFIG_PATH"
	EnvDataPath   = "OFFPLAY_DATA_PATH"
)

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the directory holding the TOML configuration and preferences.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Offplay))
}

// Data resolves the directory holding the video library.
// XDG_DATA_HOME is honored, falling back to ~/.local/share.
func Data() string {
	if custom, ok := os.LookupEnv(EnvDataPath); ok {
		return ensureDir(custom)
	}

	if xdg, ok := os.LookupEnv("XDG_DATA_HOME"); ok && xdg != "" {
		return ensureDir(filepath.Join(xdg, constant.Offplay))
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ensureDir(filepath.Join(Config(), "data"))
	}
	return ensureDir(filepath.Join(home, ".local", "share", constant.Offplay))
}

// Database resolves the pebble directory of the video library.
func Database() string {
	return filepath.Join(Data(), "videos.db")
}

// Logs resolves the absolute path to the directory used for application diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Prefs resolves the user preference file (volume, rate, loop, theme).
func Prefs() string {
	return filepath.Join(Config(), "prefs.json")
}

// Temp resolves the directory where playback handles are materialized.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Offplay))
}
