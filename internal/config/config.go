package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "tmatch"

// GetDataDir resolves the base directory for translation memory storage. It
// checks TMATCH_DIR first, then XDG paths, and finally falls back to the
// user's home directory.
func GetDataDir() string {
	if explicit := os.Getenv("TMATCH_DIR"); explicit != "" {
		return explicit
	}

	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := homeDir()
		if home == "" {
			return filepath.Join(os.TempDir(), appName)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, appName)
}

// GetDBPath returns the absolute path to the SQLite database file.
func GetDBPath() string {
	return filepath.Join(GetDataDir(), "tm.db")
}

// GetConfigPath returns the default location of the TOML settings file.
func GetConfigPath() string {
	xdg.Reload()

	configHome := xdg.ConfigHome
	if configHome == "" {
		home := homeDir()
		if home == "" {
			return filepath.Join(os.TempDir(), appName, "config.toml")
		}
		configHome = filepath.Join(home, ".config")
	}

	return filepath.Join(configHome, appName, "config.toml")
}

func homeDir() string {
	if xdg.Home != "" {
		return xdg.Home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
