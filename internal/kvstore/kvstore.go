// Package kvstore contains key-value stores partitioned by store name.
package kvstore

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNoSuchKey indicates that there's no value for the given key.
var ErrNoSuchKey = errors.New("no such key")

// ErrInvalidName indicates that a store or key name is not acceptable.
var ErrInvalidName = errors.New("invalid store or key name")

// Store is a key-value store where each key belongs to a store chosen
// by the application. Setting an existing key replaces its value.
type Store interface {
	// Get returns the value of key inside store. In case of error, the
	// error type is such that errors.Is(err, ErrNoSuchKey).
	Get(store, key string) (string, error)

	// Set sets the value of key inside store.
	Set(store, key, value string) error

	// Remove removes key from store. Removing a missing key is not an error.
	Remove(store, key string) error

	// Has returns whether key exists inside store.
	Has(store, key string) (bool, error)

	// Clear removes all the keys inside store.
	Clear(store string) error

	// Keys returns the sorted keys inside store.
	Keys(store string) ([]string, error)

	// Close releases the resources used by the store.
	Close() error
}

// Backends supported by Open.
const (
	BackendFS     = "fs"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Open opens the store using the given backend. The basedir is the
// directory where the fs and sqlite backends keep their data.
func Open(backend, basedir string) (Store, error) {
	switch backend {
	case BackendSQLite, "":
		return NewSQLite(filepath.Join(basedir, "storage.db"))
	case BackendFS:
		return NewFS(filepath.Join(basedir, "kvstore"))
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("kvstore: unknown backend: %s", backend)
	}
}

// validateName checks a store or key name.
func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// validateNames checks the store and the key.
func validateNames(store, key string) error {
	if err := validateName(store); err != nil {
		return err
	}
	return validateName(key)
}
