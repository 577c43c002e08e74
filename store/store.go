// Package store keeps the client's local state in a sqlite key/value table.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/russross/meddler"
	log "github.com/sirupsen/logrus"

	"github.com/dsahelper/dsahelper/types"
)

// Fixed storage keys.
const (
	KeyJudgeSession = "leetcode_cookie"
	KeyUsername     = "leetcode_username"
	KeyRefreshToken = "identity_refresh_token"
	KeyIDToken      = "identity_id_token"
	keyStoreVersion = "store_version"
)

const table = "local_storage"

const schema = `CREATE TABLE IF NOT EXISTS local_storage (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL
)`

// KV is the key/value surface the credential and auth stores are built on.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

type item struct {
	ID        int64     `meddler:"id,pk"`
	Key       string    `meddler:"name"`
	Value     string    `meddler:"value"`
	UpdatedAt time.Time `meddler:"updated_at,localtime"`
}

// Store is a sqlite-backed KV.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if necessary) the store at path and checks that it was
// written by a compatible version.
func Open(path string) (*Store, error) {
	meddler.Default = meddler.SQLite

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("cannot create store directory: %w", err)
	}

	options :=
		"?" + "_busy_timeout=10000" +
			"&" + "_foreign_keys=ON" +
			"&" + "_journal_mode=WAL" +
			"&" + "_synchronous=NORMAL"
	db, err := sql.Open("sqlite3", path+options)
	if err != nil {
		return nil, fmt.Errorf("error opening store %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating store schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.checkVersion(); err != nil {
		db.Close()
		return nil, err
	}
	log.WithField("path", path).Debug("local store opened")
	return s, nil
}

func (s *Store) checkVersion() error {
	written, found, err := s.Get(keyStoreVersion)
	if err != nil {
		return err
	}
	if !found {
		return s.Set(keyStoreVersion, types.CurrentVersion.Version)
	}
	return types.CheckStoreVersion(written)
}

func (s *Store) load(key string) (*item, error) {
	elt := new(item)
	err := meddler.QueryRow(s.db, elt, `SELECT * FROM local_storage WHERE name = ?`, key)
	if err != nil {
		return nil, err
	}
	return elt, nil
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elt, err := s.load(key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("db error reading %s: %w", key, err)
	}
	return elt.Value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	elt, err := s.load(key)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		elt = &item{Key: key, Value: value, UpdatedAt: time.Now()}
		err = meddler.Insert(s.db, table, elt)
	case err == nil:
		elt.Value = value
		elt.UpdatedAt = time.Now()
		err = meddler.Update(s.db, table, elt)
	}
	if err != nil {
		return fmt.Errorf("db error writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM local_storage WHERE name = ?`, key); err != nil {
		return fmt.Errorf("db error deleting %s: %w", key, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
