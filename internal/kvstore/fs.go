package kvstore

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"

	"github.com/rogpeppe/go-internal/lockedfile"
)

// FS is a file-system based Store. Each store is a directory and
// each key is a file inside such a directory.
type FS struct {
	basedir string
}

var _ Store = &FS{}

// NewFS creates a new FS store.
func NewFS(basedir string) (kvs *FS, err error) {
	return newFileSystem(basedir, os.MkdirAll)
}

// osMkdirAll is the type of os.MkdirAll.
type osMkdirAll func(path string, perm fs.FileMode) error

// newFileSystem is like NewFS with a customizable
// osMkdirAll function for creating the kvstore dir.
func newFileSystem(basedir string, mkdir osMkdirAll) (*FS, error) {
	if err := mkdir(basedir, 0700); err != nil {
		return nil, err
	}
	return &FS{basedir: basedir}, nil
}

// escapeName maps a store or key name to a file name. We escape the
// names so that they cannot contain path separators and we prefix them
// so that they cannot be "." or "..".
func escapeName(name string) string {
	return "_" + url.PathEscape(name)
}

// unescapeName is the inverse of escapeName.
func unescapeName(filename string) (string, error) {
	if len(filename) < 2 || filename[0] != '_' {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, filename)
	}
	return url.PathUnescape(filename[1:])
}

// storedir returns the directory of a given store.
func (kvs *FS) storedir(store string) string {
	return filepath.Join(kvs.basedir, escapeName(store))
}

// filename returns the filename for a given key.
func (kvs *FS) filename(store, key string) string {
	return filepath.Join(kvs.storedir(store), escapeName(key))
}

// Get implements Store.
func (kvs *FS) Get(store, key string) (string, error) {
	data, err := lockedfile.Read(kvs.filename(store, key))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoSuchKey, err.Error())
	}
	return string(data), nil
}

// Set implements Store.
func (kvs *FS) Set(store, key, value string) error {
	if err := validateNames(store, key); err != nil {
		return err
	}
	if err := os.MkdirAll(kvs.storedir(store), 0700); err != nil {
		return err
	}
	return lockedfile.Write(kvs.filename(store, key), bytes.NewReader([]byte(value)), 0600)
}

// Remove implements Store.
func (kvs *FS) Remove(store, key string) error {
	err := os.Remove(kvs.filename(store, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Has implements Store.
func (kvs *FS) Has(store, key string) (bool, error) {
	_, err := os.Stat(kvs.filename(store, key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Clear implements Store.
func (kvs *FS) Clear(store string) error {
	return os.RemoveAll(kvs.storedir(store))
}

// Keys implements Store.
func (kvs *FS) Keys(store string) ([]string, error) {
	entries, err := os.ReadDir(kvs.storedir(store))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	keys := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		key, err := unescapeName(entry.Name())
		if err != nil {
			continue // not created by us
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements Store.
func (kvs *FS) Close() error {
	return nil
}
