package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one stored key in the SQLite backend.
type Entry struct {
	Key       string    `gorm:"primaryKey;column:entry_key;size:64"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for the Entry model
func (Entry) TableName() string {
	return "entries"
}

// SQLiteStorage keeps every key as a row of a single SQLite table.
type SQLiteStorage struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) the database at path and
// migrates the entries table. Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLiteStorage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	// SQLite serializes writers; one connection also keeps a ":memory:"
	// database from splitting across connections.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// DB returns the underlying gorm handle.
func (ss *SQLiteStorage) DB() *gorm.DB {
	return ss.db
}

func (ss *SQLiteStorage) Get(key string) ([]byte, bool, error) {
	var e Entry
	err := ss.db.Where("entry_key = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(e.Value), true, nil
}

func (ss *SQLiteStorage) Put(key string, value []byte) error {
	e := Entry{Key: key, Value: string(value), UpdatedAt: time.Now().UTC()}
	return ss.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
}

func (ss *SQLiteStorage) Delete(key string) error {
	return ss.db.Where("entry_key = ?", key).Delete(&Entry{}).Error
}

func (ss *SQLiteStorage) Close() error {
	sqlDB, err := ss.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
