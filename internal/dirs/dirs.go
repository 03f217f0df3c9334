// Package dirs resolves the per-application configuration and cache
// directories.
package dirs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the application directories.
const AppName = "ra-multiplex"

// Config returns the configuration directory, e.g.
// $XDG_CONFIG_HOME/ra-multiplex or ~/Library/Application Support/ra-multiplex.
func Config() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("project config directory not found: %w", err)
	}
	return project(base, "config"), nil
}

// Cache returns the cache directory, e.g. $XDG_CACHE_HOME/ra-multiplex or
// ~/Library/Caches/ra-multiplex.
func Cache() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("project cache directory not found: %w", err)
	}
	return project(base, "cache"), nil
}

// project appends the application directory.  On Windows the config and
// cache share the AppData root, so a kind subdirectory keeps them apart.
func project(base, kind string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(base, AppName, kind)
	}
	return filepath.Join(base, AppName)
}
