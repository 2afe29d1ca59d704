package kvstore

import (
	"database/sql"
	"embed"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/apex/log"
	_ "github.com/mattn/go-sqlite3"
	pkgerrors "github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/upper/db/v4"
	"github.com/upper/db/v4/adapter/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// storageItem is a row of the storage table.
type storageItem struct {
	Store     string `db:"store"`
	Key       string `db:"key"`
	Value     string `db:"value"`
	UpdatedAt int64  `db:"updated_at"`
}

// SQLite is a Store backed by a SQLite database.
type SQLite struct {
	mu   sync.Mutex
	sess db.Session
}

var _ Store = &SQLite{}

// NewSQLite opens the database at path, creating it when needed, and
// runs the schema migrations.
func NewSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, pkgerrors.Wrap(err, "creating database dir")
	}
	log.Debugf("kvstore: connecting to database sqlite3://%s", path)
	sess, err := sqlite.Open(sqlite.ConnectionURL{
		Database: path,
		Options:  map[string]string{"_journal_mode": "WAL"},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "opening database")
	}
	if err := RunMigrations(sess.Driver().(*sql.DB)); err != nil {
		sess.Close()
		return nil, pkgerrors.Wrap(err, "running migrations")
	}
	return &SQLite{sess: sess}, nil
}

// RunMigrations runs the database migrations.
func RunMigrations(conn *sql.DB) error {
	migrations := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationsFS,
		Root:       "migrations",
	}
	n, err := migrate.Exec(conn, "sqlite3", migrations, migrate.Up)
	if err != nil {
		return err
	}
	log.Debugf("kvstore: performed %d migrations", n)
	return nil
}

func (kvs *SQLite) find(store, key string) db.Result {
	return kvs.sess.Collection("storage").Find(db.Cond{"store": store, "key": key})
}

// Get implements Store.
func (kvs *SQLite) Get(store, key string) (string, error) {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()
	var item storageItem
	err := kvs.find(store, key).One(&item)
	if errors.Is(err, db.ErrNoMoreRows) {
		return "", ErrNoSuchKey
	}
	if err != nil {
		return "", pkgerrors.Wrap(err, "querying key")
	}
	return item.Value, nil
}

// Set implements Store.
func (kvs *SQLite) Set(store, key, value string) error {
	if err := validateNames(store, key); err != nil {
		return err
	}
	kvs.mu.Lock()
	defer kvs.mu.Unlock()
	_, err := kvs.sess.SQL().Exec(`
		INSERT INTO storage (store, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(store, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		store, key, value, time.Now().Unix())
	if err != nil {
		return pkgerrors.Wrap(err, "upserting key")
	}
	return nil
}

// Remove implements Store.
func (kvs *SQLite) Remove(store, key string) error {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()
	if err := kvs.find(store, key).Delete(); err != nil {
		return pkgerrors.Wrap(err, "deleting key")
	}
	return nil
}

// Has implements Store.
func (kvs *SQLite) Has(store, key string) (bool, error) {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()
	exists, err := kvs.find(store, key).Exists()
	if err != nil {
		return false, pkgerrors.Wrap(err, "checking key")
	}
	return exists, nil
}

// Clear implements Store.
func (kvs *SQLite) Clear(store string) error {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()
	if err := kvs.sess.Collection("storage").Find(db.Cond{"store": store}).Delete(); err != nil {
		return pkgerrors.Wrap(err, "clearing store")
	}
	return nil
}

// Keys implements Store.
func (kvs *SQLite) Keys(store string) ([]string, error) {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()
	var items []storageItem
	err := kvs.sess.Collection("storage").Find(db.Cond{"store": store}).OrderBy("key").All(&items)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "listing keys")
	}
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.Key)
	}
	return keys, nil
}

// Close implements Store.
func (kvs *SQLite) Close() error {
	return kvs.sess.Close()
}
