// Package transient is the keyed-blob cache backing the network context
// document. Entries have no expiry: staleness is handled by event-driven
// invalidation, never by clocks.
package transient

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"netpress/internal/domain"
)

const (
	entriesBucketName = "transients"
	updatedAtKey      = "__updated_at"
	reservedPrefix    = "__"
)

// Store is a bbolt-backed transient cache. Writes are serialized by bbolt's
// single-writer transaction, so concurrent rebuilds resolve last-writer-wins
// without torn values.
type Store struct {
	mu     sync.RWMutex
	db     *bolt.DB
	path   string
	closed bool
}

// Open opens (or creates) the transient store.
func Open(path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, domain.E(domain.CodeInvalidArgument, "transient.Open", "transient path is required", nil)
	}
	if dir := filepath.Dir(trimmed); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, domain.E(domain.CodeUnavailable, "transient.Open", "ensure transient dir", err)
		}
	}
	db, err := bolt.Open(trimmed, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, domain.E(domain.CodeUnavailable, "transient.Open", "open transient db", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(entriesBucketName))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, domain.E(domain.CodeUnavailable, "transient.Open", "create transient bucket", err)
	}
	return &Store{db: db, path: trimmed}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Get returns the stored blob for key. The bool result is false on a miss.
func (s *Store) Get(key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	var value []byte
	err := s.view(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(entriesBucketName))
		if bucket == nil {
			return nil
		}
		if raw := bucket.Get([]byte(key)); raw != nil {
			value = append([]byte(nil), raw...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, value != nil, nil
}

// Set stores a blob under key, replacing any previous value.
func (s *Store) Set(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if value == nil {
		return domain.E(domain.CodeInvalidArgument, "transient.Set", "value is nil for "+key, nil)
	}
	return s.update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(entriesBucketName))
		if err := bucket.Put([]byte(key), value); err != nil {
			return err
		}
		return writeUpdatedAt(bucket)
	})
}

// Delete removes a key. Deleting a missing key is a no-op.
func (s *Store) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(entriesBucketName))
		if err := bucket.Delete([]byte(key)); err != nil {
			return err
		}
		return writeUpdatedAt(bucket)
	})
}

// Keys lists stored keys in bbolt's byte order.
func (s *Store) Keys() ([]string, error) {
	var keys []string
	err := s.view(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(entriesBucketName))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(key, value []byte) error {
			if value == nil || isReservedKey(key) {
				return nil
			}
			keys = append(keys, string(key))
			return nil
		})
	})
	return keys, err
}

// UpdatedAt returns the RFC3339 time of the last write, or "" before any.
func (s *Store) UpdatedAt() (string, error) {
	var at string
	err := s.view(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(entriesBucketName))
		if bucket == nil {
			return nil
		}
		at = string(bucket.Get([]byte(updatedAtKey)))
		return nil
	})
	return at, err
}

func (s *Store) view(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	return s.db.View(fn)
}

func (s *Store) update(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.ErrStoreClosed
	}
	return s.db.Update(fn)
}

func validateKey(key string) error {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" || strings.HasPrefix(trimmed, reservedPrefix) {
		return domain.E(domain.CodeInvalidArgument, "transient", "invalid transient key "+key, nil)
	}
	return nil
}

func writeUpdatedAt(bucket *bolt.Bucket) error {
	value := time.Now().UTC().Format(time.RFC3339Nano)
	return bucket.Put([]byte(updatedAtKey), []byte(value))
}

func isReservedKey(key []byte) bool {
	return strings.HasPrefix(string(key), reservedPrefix)
}
