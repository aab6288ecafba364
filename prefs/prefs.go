// Package prefs persists the small set of user preferences the player reads
// at startup and writes on change.
package prefs

import (
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/metafates/gache"
	"github.com/offplay/offplay/filesystem"
	"github.com/offplay/offplay/key"
	"github.com/offplay/offplay/log"
	"github.com/offplay/offplay/where"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Preference keys, stored as strings.
const (
	Volume = "vol"
	Rate   = "rate"
	Loop   = "loop"
	Theme  = "theme"
)

// Prefs is a string-keyed settings map written through to disk.
type Prefs struct {
	mu     sync.Mutex
	cacher *gache.Cache[map[string]string]
	values map[string]string
}

// gacheFs routes gache file access through the active filesystem backend.
type gacheFs struct{}

func (gacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return filesystem.API().OpenFile(name, flag, perm)
}

func (gacheFs) MkdirAll(path string, perm os.FileMode) error {
	return filesystem.API().MkdirAll(path, perm)
}

// Load opens the preference file at the default location.
func Load() (*Prefs, error) {
	return LoadFrom(where.Prefs())
}

// LoadFrom opens the preference file at path. A missing file yields an empty
// set of preferences.
func LoadFrom(path string) (*Prefs, error) {
	cacher := gache.New[map[string]string](
		&gache.Options{
			Path:       path,
			FileSystem: gacheFs{},
		},
	)

	values, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || values == nil {
		values = make(map[string]string)
	}

	return &Prefs{cacher: cacher, values: values}, nil
}

// Get returns the raw stored value.
func (p *Prefs) Get(name string) mo.Option[string] {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v, ok := p.values[name]; ok {
		return mo.Some(v)
	}
	return mo.None[string]()
}

// Set stores a raw value and writes the whole set back.
func (p *Prefs) Set(name, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.values[name] = value
	if err := p.cacher.Set(p.values); err != nil {
		log.Warnf("persist preference %s: %v", name, err)
		return err
	}
	return nil
}

func (p *Prefs) float(name string, fallback float64) float64 {
	raw, ok := p.Get(name).Get()
	if !ok {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

// Volume returns the stored volume in [0, 1], or the configured default.
func (p *Prefs) Volume() float64 {
	return p.float(Volume, viper.GetFloat64(key.PlayerVolume))
}

// Rate returns the last chosen playback rate, or the configured default.
func (p *Prefs) Rate() float64 {
	return p.float(Rate, viper.GetFloat64(key.PlayerRate))
}

func (p *Prefs) Loop() bool {
	raw, ok := p.Get(Loop).Get()
	if !ok {
		return viper.GetBool(key.PlayerLoop)
	}
	return raw == "1" || raw == "true"
}

func (p *Prefs) Theme() string {
	return p.Get(Theme).OrElse("dark")
}

func (p *Prefs) SetVolume(v float64) error {
	return p.Set(Volume, strconv.FormatFloat(v, 'f', -1, 64))
}

func (p *Prefs) SetRate(r float64) error {
	return p.Set(Rate, strconv.FormatFloat(r, 'f', -1, 64))
}

func (p *Prefs) SetLoop(on bool) error {
	return p.Set(Loop, strconv.FormatBool(on))
}

func (p *Prefs) SetTheme(theme string) error {
	return p.Set(Theme, theme)
}
