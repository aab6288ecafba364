// Package filesystem hides every application file access behind a swappable afero backend.
//
// Video payloads never go through here (they live in pebble); config, prefs, logs and
// materialized playback handles do.
package filesystem

import (
	"sync"

	"github.com/spf13/afero"
)

var (
	mu      sync.RWMutex
	backend = afero.Afero{Fs: afero.NewOsFs()}
)

// API returns the active afero.Afero instance for filesystem interaction.
func API() afero.Afero {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetFs replaces the backend with fs.
func SetFs(fs afero.Fs) {
	mu.Lock()
	defer mu.Unlock()
	backend = afero.Afero{Fs: fs}
}

// SetOsFs restores the filesystem backend to the native operating system implementation.
func SetOsFs() {
	SetFs(afero.NewOsFs())
}

// SetMemMapFs installs a volatile in-memory backend. Tests call it from init.
func SetMemMapFs() {
	SetFs(afero.NewMemMapFs())
}

// IsMem reports whether the active backend keeps files in memory only.
func IsMem() bool {
	_, ok := API().Fs.(*afero.MemMapFs)
	return ok
}
