package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/pebble"
	"github.com/offplay/offplay/log"
)

// SchemaVersion is the newest schema this build knows how to open.
const SchemaVersion = 2

const (
	schemaKey       = "meta:schema"
	namespacePrefix = "meta:ns:"
)

// migration brings the database from version-1 to version. Both the
// namespace registration and apply must be safe to run again.
type migration struct {
	version   int
	namespace string
	apply     func(db *pebble.DB, b *pebble.Batch) error
}

var migrations = []migration{
	{version: 1, namespace: "videos"},
	{version: 2, namespace: "blobs", apply: splitInlineBlobs},
}

func (s *Store) migrate(target int) error {
	if target < 1 || target > SchemaVersion {
		return fmt.Errorf("unknown schema version %d", target)
	}

	stored, err := readVersion(s.db)
	if err != nil {
		return err
	}
	if stored > target {
		return fmt.Errorf("%w: stored v%d, requested v%d", ErrVersion, stored, target)
	}

	for _, m := range migrations {
		if m.version > target {
			break
		}

		b := s.db.NewBatch()
		if err := ensureNamespace(s.db, b, m.namespace); err != nil {
			b.Close()
			return err
		}

		if m.version > stored {
			if m.apply != nil {
				if err := m.apply(s.db, b); err != nil {
					b.Close()
					return fmt.Errorf("migration %d: %w", m.version, err)
				}
			}
			if err := b.Set([]byte(schemaKey), []byte(strconv.Itoa(m.version)), nil); err != nil {
				b.Close()
				return err
			}
			log.Infof("migrated schema to v%d", m.version)
		}

		err := b.Commit(pebble.Sync)
		b.Close()
		if err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
	}

	s.version = max(stored, target)
	return nil
}

func readVersion(r pebble.Reader) (int, error) {
	data, closer, err := r.Get([]byte(schemaKey))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	defer closer.Close()

	v, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, fmt.Errorf("corrupt schema version %q: %w", data, err)
	}
	return v, nil
}

func ensureNamespace(r pebble.Reader, b *pebble.Batch, name string) error {
	k := []byte(namespacePrefix + name)
	_, closer, err := r.Get(k)
	if err == nil {
		return closer.Close()
	}
	if !errors.Is(err, pebble.ErrNotFound) {
		return err
	}
	return b.Set(k, []byte{1}, nil)
}

// splitInlineBlobs moves payloads stored inside v1 metadata into blob keys.
func splitInlineBlobs(db *pebble.DB, b *pebble.Batch) error {
	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(videoPrefix),
		UpperBound: []byte(videoUpper),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	moved := 0
	for iter.First(); iter.Valid(); iter.Next() {
		var legacy legacyRecord
		if err := json.Unmarshal(iter.Value(), &legacy); err != nil {
			return fmt.Errorf("decode %q: %w", iter.Key(), err)
		}
		if len(legacy.Blob) == 0 {
			continue
		}

		rec := legacy.Record
		if rec.Name == "" {
			rec.Name = strings.TrimPrefix(string(iter.Key()), videoPrefix)
		}
		rec.Size = int64(len(legacy.Blob))
		rec.PlaybackState = normalizeState(rec.PlaybackState)

		meta, err := encodeMeta(&rec)
		if err != nil {
			return err
		}
		if err := b.Set(blobKey(rec.Name), legacy.Blob, nil); err != nil {
			return err
		}
		if err := b.Set(videoKey(rec.Name), meta, nil); err != nil {
			return err
		}
		moved++
	}

	if moved > 0 {
		log.Infof("moved %d inline payloads to blob keys", moved)
	}
	return iter.Error()
}
