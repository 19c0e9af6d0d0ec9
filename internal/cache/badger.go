package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerConfig configures a BadgerBlockCache.
type BadgerConfig struct {
	// Dir holds the cache files. Empty means in-memory.
	Dir string
	// TTL expires entries after the given duration. Zero keeps them until
	// invalidated.
	TTL time.Duration
	// Logger receives write failures. Defaults to discarding.
	Logger *slog.Logger
}

// BadgerBlockCache is a persistent BlockCache backed by badger. Cached source
// blocks survive restarts, which saves refetching remote assets.
type BadgerBlockCache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewBadgerBlockCache opens (or creates) the cache in cfg.Dir.
func NewBadgerBlockCache(cfg BadgerConfig) (*BadgerBlockCache, error) {
	opts := badger.DefaultOptions(cfg.Dir).WithLogger(nil)
	if cfg.Dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BadgerBlockCache{db: db, ttl: cfg.TTL, logger: logger}, nil
}

// encodeKey lays out kind | path | 0x00 | block (big endian) so all blocks
// of one path share a prefix.
func encodeKey(k Key) []byte {
	buf := make([]byte, 0, 1+len(k.Path)+1+8)
	buf = append(buf, byte(k.Kind))
	buf = append(buf, k.Path...)
	buf = append(buf, 0)
	return binary.BigEndian.AppendUint64(buf, k.Block)
}

func decodeKey(b []byte) (Key, bool) {
	if len(b) < 1+1+8 {
		return Key{}, false
	}
	return Key{
		Kind:  Kind(b[0]),
		Path:  string(b[1 : len(b)-9]),
		Block: binary.BigEndian.Uint64(b[len(b)-8:]),
	}, true
}

// Get returns a cached block.
func (c *BadgerBlockCache) Get(_ context.Context, key Key) ([]byte, bool) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(encodeKey(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Warn("block cache read failed", "key", key.String(), "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return value, true
}

// Set caches a block. Failures are logged; a cache write never fails a load.
func (c *BadgerBlockCache) Set(_ context.Context, key Key, b []byte) {
	err := c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(encodeKey(key), b)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		c.logger.Warn("block cache write failed", "key", key.String(), "error", err)
	}
}

// Invalidate removes entries matching the predicate.
func (c *BadgerBlockCache) Invalidate(predicate func(key Key) bool) {
	var doomed [][]byte
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // keys only
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			raw := it.Item().KeyCopy(nil)
			if k, ok := decodeKey(raw); ok && predicate(k) {
				doomed = append(doomed, raw)
			}
		}
		return nil
	})
	if err != nil {
		c.logger.Warn("block cache scan failed", "error", err)
		return
	}

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()
	for _, raw := range doomed {
		if err := wb.Delete(raw); err != nil {
			c.logger.Warn("block cache delete failed", "error", err)
			return
		}
	}
	if err := wb.Flush(); err != nil {
		c.logger.Warn("block cache delete failed", "error", err)
	}
}

// Close closes the database.
func (c *BadgerBlockCache) Close() error {
	return c.db.Close()
}

// Stats returns hit and miss counts.
func (c *BadgerBlockCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
