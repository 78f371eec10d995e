package store

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/piwi3910/cutdesk/internal/model"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)

// codeSequence returns a generator that yields the given codes in order
// and then repeats the last one.
func codeSequence(codes ...string) *model.OrderCodeGenerator {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	chars := strings.Join(codes, "")
	last := len(codes[len(codes)-1])
	i := 0
	return &model.OrderCodeGenerator{IntN: func(n int) int {
		if i >= len(chars) {
			i -= last
		}
		c := chars[i]
		i++
		return strings.IndexByte(alphabet, c)
	}}
}

func newMemoryStore(t *testing.T, opts ...Option) (*Store, *MemoryStorage) {
	t.Helper()
	ms := NewMemoryStorage()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return New(ms, opts...), ms
}

// faultyStorage wraps a Storage and fails Put for keys failPut rejects.
type faultyStorage struct {
	Storage
	failPut func(key string) error
}

func (fs *faultyStorage) Put(key string, value []byte) error {
	if fs.failPut != nil {
		if err := fs.failPut(key); err != nil {
			return err
		}
	}
	return fs.Storage.Put(key, value)
}

func failKey(key string) func(string) error {
	return func(k string) error {
		if k == key {
			return errors.New("disk full")
		}
		return nil
	}
}

func newFaultyStore(t *testing.T) (*Store, *faultyStorage, *MemoryStorage) {
	t.Helper()
	ms := NewMemoryStorage()
	fs := &faultyStorage{Storage: ms}
	return New(fs, WithClock(func() time.Time { return testNow })), fs, ms
}

// backends returns one fresh Store per storage backend.
func backends(t *testing.T) map[string]*Store {
	t.Helper()
	fileStorage, err := NewFileStorage(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	sqliteStorage, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStorage.Close() })

	clock := WithClock(func() time.Time { return testNow })
	return map[string]*Store{
		"memory": New(NewMemoryStorage(), clock),
		"json":   New(fileStorage, clock),
		"sqlite": New(sqliteStorage, clock),
	}
}
