// Package store persists the register's materials, jobs and pricing
// configuration and enforces the stock and job lifecycle rules on top
// of them.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Keys of the three persisted collections.
const (
	KeyMaterials = "materials"
	KeyJobs      = "jobs"
	KeyPricing   = "pricing"
)

// Storage is a keyed blob store holding JSON documents.
type Storage interface {
	// Get returns the value for key and whether it exists.
	Get(key string) ([]byte, bool, error)
	// Put replaces the value for key.
	Put(key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the storage backend with the given name rooted at dir.
func Open(backend, dir string) (Storage, error) {
	switch strings.ToLower(backend) {
	case "", BackendJSON:
		return NewFileStorage(dir)
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dir, "cutdesk.db"))
	case BackendMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// FileStorage keeps each key as <dir>/<key>.json.
type FileStorage struct {
	dir string
}

// NewFileStorage creates the directory if needed and returns a FileStorage.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

// Dir returns the data directory.
func (fs *FileStorage) Dir() string {
	return fs.dir
}

func (fs *FileStorage) path(key string) string {
	return filepath.Join(fs.dir, key+".json")
}

func (fs *FileStorage) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(fs.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Put writes through a temporary file and renames it into place so a
// crash never leaves a half-written collection.
func (fs *FileStorage) Put(key string, value []byte) error {
	tmp, err := os.CreateTemp(fs.dir, key+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), fs.path(key))
}

func (fs *FileStorage) Delete(key string) error {
	if err := os.Remove(fs.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (fs *FileStorage) Close() error {
	return nil
}

// MemoryStorage keeps values in a map. It is used by tests and by the
// "memory" backend.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte)}
}

func (ms *MemoryStorage) Get(key string) ([]byte, bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	v, ok := ms.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (ms *MemoryStorage) Put(key string, value []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.values[key] = append([]byte(nil), value...)
	return nil
}

func (ms *MemoryStorage) Delete(key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.values, key)
	return nil
}

func (ms *MemoryStorage) Close() error {
	return nil
}
