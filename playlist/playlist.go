// Package playlist projects the record store into an ordered list of names,
// newest first.
package playlist

import (
	"cmp"
	"strings"
	"sync"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/offplay/offplay/store"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"golang.org/x/exp/slices"
)

// Lister is the part of the store the projection reads from.
type Lister interface {
	List() ([]*store.Record, error)
}

// Projection is a cache of names that is rebuilt wholesale on every Refresh.
// It does not know what is playing.
type Projection struct {
	lister Lister

	mu    sync.RWMutex
	names []string
}

func New(lister Lister) *Projection {
	return &Projection{lister: lister}
}

// Refresh rebuilds the projection, sorting by Created descending. Ties keep
// the order the store returned them in. On error the previous view is kept.
func (p *Projection) Refresh() error {
	records, err := p.lister.List()
	if err != nil {
		return err
	}

	slices.SortStableFunc(records, func(a, b *store.Record) int {
		return cmp.Compare(b.Created, a.Created)
	})

	names := lo.Map(records, func(r *store.Record, _ int) string {
		return r.Name
	})

	p.mu.Lock()
	p.names = names
	p.mu.Unlock()
	return nil
}

// Names returns a copy of the current projection.
func (p *Projection) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.names...)
}

func (p *Projection) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.names)
}

// At returns the name at index i, if any.
func (p *Projection) At(i int) mo.Option[string] {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if i < 0 || i >= len(p.names) {
		return mo.None[string]()
	}
	return mo.Some(p.names[i])
}

// IndexOf returns the position of name, or -1.
func (p *Projection) IndexOf(name string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return lo.IndexOf(p.names, name)
}

func (p *Projection) Contains(name string) bool {
	return p.IndexOf(name) >= 0
}

// Filter returns the names that fuzzy-match query, keeping projection order.
// An empty query matches everything.
func (p *Projection) Filter(query string) []string {
	query = strings.TrimSpace(query)
	names := p.Names()
	if query == "" {
		return names
	}
	return fuzzy.FindFold(query, names)
}

// Closest returns the name with the smallest edit distance to name.
func (p *Projection) Closest(name string) mo.Option[string] {
	names := p.Names()
	if len(names) == 0 {
		return mo.None[string]()
	}

	target := strings.ToLower(name)
	return mo.Some(lo.MinBy(names, func(a, b string) bool {
		return levenshtein.Distance(target, strings.ToLower(a)) < levenshtein.Distance(target, strings.ToLower(b))
	}))
}
