// Package cache provides the durable snapshot cache used when the remote
// store is unreachable. It is strictly best-effort: writes that fail are
// logged and swallowed, and malformed entries read as cache misses. The cache
// is never the source of truth while the remote store is reachable.
package cache

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/taskpilot/taskpilot/internal/model"
)

// Snapshot is a key -> JSON collection store backed by BadgerDB.
type Snapshot struct {
	db     *badger.DB
	logger *log.Logger
}

// Open opens (or creates) the snapshot cache at the given directory.
func Open(path string, logger *log.Logger) (*Snapshot, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot cache: %w", err)
	}
	return &Snapshot{db: db, logger: logger}, nil
}

// OpenInMemory opens a non-persistent cache. Used in tests.
func OpenInMemory(logger *log.Logger) (*Snapshot, error) {
	if logger == nil {
		logger = log.Default()
	}
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory cache: %w", err)
	}
	return &Snapshot{db: db, logger: logger}, nil
}

// Set stores a collection under the given key. Failures are logged, never
// returned: the cache is not load-bearing for correctness.
func (s *Snapshot) Set(key string, records []model.Record) {
	if records == nil {
		records = []model.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		s.logger.Printf("cache: failed to encode %s: %v", key, err)
		return
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		s.logger.Printf("cache: failed to store %s: %v", key, err)
	}
}

// Get returns the cached collection for the key. Missing keys and malformed
// stored values both report absent.
func (s *Snapshot) Get(key string) ([]model.Record, bool) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false
	}

	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Printf("cache: discarding malformed entry for %s: %v", key, err)
		return nil, false
	}
	return records, true
}

// SetRaw stores an arbitrary value under the key without JSON validation.
// Exists for the corruption path in tests and for future non-collection keys.
func (s *Snapshot) SetRaw(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Close releases the underlying database.
func (s *Snapshot) Close() error {
	return s.db.Close()
}
