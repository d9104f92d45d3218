package favorites

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Key is the single named preference entry holding the favorite set.
const Key = "formulary_favorites"

// Storage is a durable slot for the serialized favorite set.
type Storage interface {
	// Read returns nil, nil when nothing has been stored yet.
	Read() ([]byte, error)
	Write(data []byte) error
	Close() error
}

// FileStorage keeps the set in a JSON file, replaced atomically on write.
type FileStorage struct {
	path string
}

// NewFileStorage creates the parent directory of path if needed.
func NewFileStorage(path string) (*FileStorage, error) {
	if path == "" {
		path = "favorites.json"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create favorites dir: %w", err)
	}
	return &FileStorage{path: path}, nil
}

func (fs *FileStorage) Read() ([]byte, error) {
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read favorites: %w", err)
	}
	return data, nil
}

// Write replaces the file through a temp file and rename, so readers never
// see a partial set.
func (fs *FileStorage) Write(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(fs.path), ".favorites-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp favorites file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write favorites: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close favorites: %w", err)
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace favorites: %w", err)
	}
	return nil
}

func (fs *FileStorage) Close() error { return nil }

// Path returns the file location.
func (fs *FileStorage) Path() string { return fs.path }

// SQLiteStorage keeps the set in a key/value preferences table.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage opens (or creates) the database at path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	if path == "" {
		path = "favorites.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer is all a single-user preference store needs
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create preferences table: %w", err)
	}
	return &SQLiteStorage{db: db, path: path}, nil
}

func (s *SQLiteStorage) Read() ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, Key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select favorites: %w", err)
	}
	return data, nil
}

func (s *SQLiteStorage) Write(data []byte) error {
	if _, err := s.db.Exec(`INSERT INTO preferences(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`, Key, data); err != nil {
		return fmt.Errorf("upsert favorites: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for tests.
func (s *SQLiteStorage) DB() *sql.DB { return s.db }

// Open returns the storage for a configured backend name ("file" or "sqlite").
func Open(backend, path string) (Storage, error) {
	switch backend {
	case "", "file":
		return NewFileStorage(path)
	case "sqlite":
		return NewSQLiteStorage(path)
	}
	return nil, fmt.Errorf("unknown favorites backend %q", backend)
}
