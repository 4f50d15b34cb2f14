package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/curdbook/curdbook/internal/model"
)

// queueKey is the single row the serialized queue lives under.
const queueKey = "pending-actions"

// blobRecord is the keyed-blob table backing SQLiteStore.
type blobRecord struct {
	Key     string `gorm:"primaryKey;size:64"`
	Payload []byte
}

func (blobRecord) TableName() string {
	return "queue_blobs"
}

// SQLiteStore keeps the serialized queue in a local SQLite file, so
// pending actions survive process restarts and network outages.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLiteStore opens (and migrates) the queue database at path,
// creating parent directories as needed.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create queue db dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open queue db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	_, _ = sqlDB.Exec("PRAGMA journal_mode = WAL;")
	_, _ = sqlDB.Exec("PRAGMA synchronous = NORMAL;")

	if err := db.AutoMigrate(&blobRecord{}); err != nil {
		return nil, fmt.Errorf("migrate queue db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load implements Store. A missing row reads back as an empty queue.
func (s *SQLiteStore) Load() ([]model.PendingAction, error) {
	var rec blobRecord
	err := s.db.First(&rec, "key = ?", queueKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load queue blob: %w", err)
	}

	var actions []model.PendingAction
	if err := json.Unmarshal(rec.Payload, &actions); err != nil {
		return nil, fmt.Errorf("decode queue blob: %w", err)
	}
	return actions, nil
}

// Save implements Store, rewriting the blob in place.
func (s *SQLiteStore) Save(actions []model.PendingAction) error {
	payload, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("encode queue blob: %w", err)
	}
	rec := blobRecord{Key: queueKey, Payload: payload}
	if err := s.db.Save(&rec).Error; err != nil {
		return fmt.Errorf("save queue blob: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
