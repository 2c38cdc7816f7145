package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var artifactBucket = []byte("artifacts")

// BoltCache stores entries in a single bbolt database file.
type BoltCache struct {
	db *bolt.DB
}

// NewBoltCache opens (or creates) the database at path. Opening blocks for at
// most one second if another process holds the file lock.
func NewBoltCache(path string) (*BoltCache, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(artifactBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &BoltCache{db: db}, nil
}

// Path returns the database file path.
func (c *BoltCache) Path() string { return c.db.Path() }

// Get retrieves a value. Expired entries are removed and reported as misses.
func (c *BoltCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var raw []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(artifactBucket).Get([]byte(key)); v != nil {
			// v is only valid inside the transaction
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if raw == nil {
		return nil, false, nil
	}

	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.expired() {
		_ = c.Delete(ctx, key)
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set stores a value.
func (c *BoltCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	raw, err := json.Marshal(newEntry(data, ttl))
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(artifactBucket).Put([]byte(key), raw)
	})
}

// Delete removes a value.
func (c *BoltCache) Delete(ctx context.Context, key string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(artifactBucket).Delete([]byte(key))
	})
}

// Clear removes every entry.
func (c *BoltCache) Clear() error {
	return c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(artifactBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(artifactBucket)
		return err
	})
}

// Close closes the database.
func (c *BoltCache) Close() error {
	return c.db.Close()
}

var _ Cache = (*BoltCache)(nil)
