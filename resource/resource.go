// Package resource materializes stored payloads as files the media backend
// can open, and revokes them when playback moves on.
package resource

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/offplay/offplay/filesystem"
	"github.com/offplay/offplay/log"
	"github.com/offplay/offplay/util"
	"github.com/offplay/offplay/where"
	"github.com/spf13/afero"
)

// Handle is an exclusively owned, revocable reference to one payload on disk.
type Handle struct {
	name string
	path string

	mu       sync.Mutex
	released bool
}

// Open writes blob to a fresh file under the temp directory. The extension
// of name is kept so the backend can pick a demuxer.
func Open(name string, blob []byte) (*Handle, error) {
	return OpenIn(where.Temp(), name, blob)
}

// OpenIn is Open with an explicit directory.
func OpenIn(dir, name string, blob []byte) (*Handle, error) {
	path := filepath.Join(dir, uuid.NewString()+filepath.Ext(name))
	if err := afero.WriteFile(filesystem.API(), path, blob, 0o600); err != nil {
		return nil, fmt.Errorf("materialize %q: %w", name, err)
	}

	log.Debugf("opened handle %s for %q", path, name)
	return &Handle{name: name, path: path}, nil
}

// Name returns the record the handle was opened for.
func (h *Handle) Name() string { return h.name }

// Path returns the file backing the handle.
func (h *Handle) Path() string { return h.path }

// Release removes the backing file. Releasing twice is a no-op.
func (h *Handle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return nil
	}
	h.released = true

	if err := filesystem.API().Remove(h.path); err != nil {
		log.Warnf("release handle %s: %v", h.path, err)
		return err
	}
	return nil
}

func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// Sweep deletes handle files left behind by a previous run that did not
// shut down cleanly.
func Sweep() error {
	return SweepIn(where.Temp())
}

func SweepIn(dir string) error {
	fs := filesystem.API()
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := uuid.Parse(util.FileStem(e.Name())); err != nil {
			continue
		}
		if err := fs.Remove(filepath.Join(dir, e.Name())); err != nil {
			log.Warnf("sweep %s: %v", e.Name(), err)
		}
	}
	return nil
}
