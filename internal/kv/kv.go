// Package kv provides the key-value blob stores the app stores persist into.
package kv

import (
	"context"
	"fmt"
	"io"
)

// Storage is a whole-value key-value blob store.
type Storage interface {
	// Get returns the value for key, or nil, nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes all given keys. Absent keys are not an error.
	Remove(ctx context.Context, keys ...string) error
}

// Options selects and configures a storage driver.
type Options struct {
	Driver        string // sqlite, redis or memory
	Path          string // sqlite DSN
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open returns the Storage for the configured driver along with a closer.
func Open(opts Options) (Storage, io.Closer, error) {
	switch opts.Driver {
	case "", "sqlite":
		db, err := OpenSQLite(opts.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case "redis":
		r, err := OpenRedis(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	case "memory":
		m := NewMemory()
		return m, m, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q: supported drivers are sqlite, redis, memory", opts.Driver)
	}
}
