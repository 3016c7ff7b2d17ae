package cache

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	errs "github.com/matzehuels/indoorroute/pkg/errors"
)

// BadgerCache stores entries in an embedded badger database. Expiry uses
// badger's native per-entry TTL.
type BadgerCache struct {
	db *badger.DB
}

// NewBadgerCache opens (or creates) a badger database in dir. An empty dir
// opens an in-memory database, which is what tests use.
func NewBadgerCache(dir string) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "open badger cache")
	}
	return &BadgerCache{db: db}, nil
}

// Get retrieves a value. Expired keys are reported by badger as missing.
func (c *BadgerCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.Wrap(errs.ErrCodeStorage, err, "badger get")
	}
	return out, true, nil
}

// Set stores a value with an optional TTL.
func (c *BadgerCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "badger set")
	}
	return nil
}

// Delete removes a key.
func (c *BadgerCache) Delete(ctx context.Context, key string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "badger delete")
	}
	return nil
}

// Clear drops every key.
func (c *BadgerCache) Clear(ctx context.Context) error {
	if err := c.db.DropAll(); err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "badger drop")
	}
	return nil
}

// Close closes the database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}

var (
	_ Cache   = (*BadgerCache)(nil)
	_ Clearer = (*BadgerCache)(nil)
)
