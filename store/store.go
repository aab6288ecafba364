// Package store implements the durable record store for videos on top of pebble.
//
// Each record is split across two keys: the metadata JSON under "video:<name>"
// and the raw payload under "blob:<name>". Put writes both in one batch,
// UpdateMetadata rewrites only the first, so a position update never touches
// the payload bytes.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/jonboulle/clockwork"
	"github.com/offplay/offplay/log"
	"github.com/samber/mo"
)

var (
	ErrClosed  = errors.New("store is closed")
	ErrVersion = errors.New("database was created by a newer version")
)

const (
	videoPrefix = "video:"
	blobPrefix  = "blob:"
	videoUpper  = "video;"
	blobUpper   = "blob;"
)

func videoKey(name string) []byte { return []byte(videoPrefix + name) }
func blobKey(name string) []byte { return []byte(blobPrefix + name) }

// Options tune how the store is opened. The zero value opens the current
// schema on the OS filesystem with the real clock.
type Options struct {
	FS      vfs.FS
	Clock   clockwork.Clock
	Version int
}

// Store is safe for concurrent use. Writers are serialized, so every
// read-merge-write runs as if it were a transaction.
type Store struct {
	mu          sync.RWMutex
	db          *pebble.DB
	clock       clockwork.Clock
	lastCreated int64
	version     int
	closed      bool
}

// Open opens (creating if needed) the database in dir and migrates it to the
// requested schema version.
func Open(dir string, opts *Options) (*Store, error) {
	if opts == nil {
		opts = &Options{}
	}

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	version := opts.Version
	if version == 0 {
		version = SchemaVersion
	}

	db, err := pebble.Open(dir, &pebble.Options{
		FS:     opts.FS,
		Logger: pebbleLogger{},
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, clock: clock}
	if err := s.migrate(version); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := s.loadClock(); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Infof("store opened at %q, schema v%d", dir, s.version)
	return s, nil
}

// loadClock seeds the logical clock from the newest stored record.
func (s *Store) loadClock() error {
	records, err := s.List()
	if err != nil {
		return err
	}

	for _, r := range records {
		if r.Created > s.lastCreated {
			s.lastCreated = r.Created
		}
	}
	return nil
}

// tick returns a creation stamp strictly greater than any issued before.
func (s *Store) tick() int64 {
	now := s.clock.Now().UnixMilli()
	if now <= s.lastCreated {
		now = s.lastCreated + 1
	}
	s.lastCreated = now
	return now
}

// Version returns the schema version the database is at.
func (s *Store) Version() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Put upserts rec by name, replacing any previous record and payload.
// It stamps Created (unless already set), Size and LastUpdated on rec.
func (s *Store) Put(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if rec.Created == 0 {
		rec.Created = s.tick()
	} else if rec.Created > s.lastCreated {
		s.lastCreated = rec.Created
	}
	rec.Size = int64(len(rec.Blob))
	rec.PlaybackState = normalizeState(rec.PlaybackState)
	if rec.LastPosition < 0 {
		rec.LastPosition = 0
	}
	rec.LastUpdated = s.clock.Now().UnixMilli()

	meta, err := encodeMeta(rec)
	if err != nil {
		return fmt.Errorf("encode %q: %w", rec.Name, err)
	}

	b := s.db.NewBatch()
	defer b.Close()

	if err := b.Set(videoKey(rec.Name), meta, nil); err != nil {
		return err
	}
	if err := b.Set(blobKey(rec.Name), rec.Blob, nil); err != nil {
		return err
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("put %q: %w", rec.Name, err)
	}
	return nil
}

// Get looks up one record with its payload.
func (s *Store) Get(name string) (mo.Option[*Record], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return mo.None[*Record](), ErrClosed
	}

	rec, err := s.readMeta(s.db, name)
	if err != nil || rec.IsAbsent() {
		return rec, err
	}

	r := rec.MustGet()
	if r.Blob, err = readBlob(s.db, name); err != nil {
		return mo.None[*Record](), err
	}
	return rec, nil
}

// GetAll returns every record with its payload, read from one consistent
// snapshot. The order is the store's key order.
func (s *Store) GetAll() ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	snap := s.db.NewSnapshot()
	defer snap.Close()

	records, err := scan(snap)
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		if r.Blob, err = readBlob(snap, r.Name); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// List returns every record without payloads, in the same order as GetAll.
func (s *Store) List() ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	return scan(s.db)
}

// Delete removes one record. Deleting an absent name is not an error.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	b := s.db.NewBatch()
	defer b.Close()

	if err := b.Delete(videoKey(name), nil); err != nil {
		return err
	}
	if err := b.Delete(blobKey(name), nil); err != nil {
		return err
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	return nil
}

// Clear removes all records in one atomic batch.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	b := s.db.NewBatch()
	defer b.Close()

	if err := b.DeleteRange([]byte(videoPrefix), []byte(videoUpper), nil); err != nil {
		return err
	}
	if err := b.DeleteRange([]byte(blobPrefix), []byte(blobUpper), nil); err != nil {
		return err
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

// UpdateMetadata merges meta into the stored record and stamps LastUpdated.
// Created and the payload are left as they are. A missing record is a no-op.
func (s *Store) UpdateMetadata(name string, meta Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	current, err := s.readMeta(s.db, name)
	if err != nil {
		return err
	}

	rec, ok := current.Get()
	if !ok {
		log.Debugf("metadata update for missing record %q ignored", name)
		return nil
	}

	rec.LastPosition = max(meta.LastPosition, 0)
	rec.PlaybackState = normalizeState(meta.PlaybackState)
	rec.LastUpdated = s.clock.Now().UnixMilli()

	data, err := encodeMeta(rec)
	if err != nil {
		return fmt.Errorf("encode %q: %w", name, err)
	}
	if err := s.db.Set(videoKey(name), data, pebble.Sync); err != nil {
		return fmt.Errorf("update %q: %w", name, err)
	}
	return nil
}

// Close releases the database. Operations after Close return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) readMeta(r pebble.Reader, name string) (mo.Option[*Record], error) {
	data, closer, err := r.Get(videoKey(name))
	if errors.Is(err, pebble.ErrNotFound) {
		return mo.None[*Record](), nil
	}
	if err != nil {
		return mo.None[*Record](), fmt.Errorf("get %q: %w", name, err)
	}
	defer closer.Close()

	rec, err := decodeMeta(data)
	if err != nil {
		return mo.None[*Record](), fmt.Errorf("decode %q: %w", name, err)
	}
	return mo.Some(rec), nil
}

func readBlob(r pebble.Reader, name string) ([]byte, error) {
	data, closer, err := r.Get(blobKey(name))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get blob %q: %w", name, err)
	}
	defer closer.Close()

	return append([]byte(nil), data...), nil
}

func scan(r pebble.Reader) ([]*Record, error) {
	iter, err := r.NewIter(&pebble.IterOptions{
		LowerBound: []byte(videoPrefix),
		UpperBound: []byte(videoUpper),
	})
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	defer iter.Close()

	var records []*Record
	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := decodeMeta(iter.Value())
		if err != nil {
			log.Warnf("skipping undecodable record %q: %v", iter.Key(), err)
			continue
		}
		records = append(records, rec)
	}
	return records, iter.Error()
}
