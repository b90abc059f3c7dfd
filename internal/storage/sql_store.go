package storage

import (
	"errors"
	"fmt"
	"time"

	"startpage/internal/common"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one persisted key-value pair
type Entry struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table name stable regardless of the struct name
func (Entry) TableName() string {
	return "kv_entries"
}

// SQLStore persists entries in SQLite through gorm
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore opens the database at dbPath and migrates the schema
func NewSQLStore(dbPath string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite has a single writer; one connection also keeps ":memory:"
	// databases from splitting across the pool.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return OpenSQLStore(db)
}

// OpenSQLStore wraps an existing gorm handle
func OpenSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// Load returns the value stored under key
func (s *SQLStore) Load(key string) ([]byte, error) {
	var entry Entry

	result := s.db.Where("key = ?", key).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", common.ErrNotFound, key)
		}
		return nil, result.Error
	}

	return []byte(entry.Value), nil
}

// Save upserts the value in a single statement
func (s *SQLStore) Save(key string, value []byte) error {
	entry := Entry{
		Key:   key,
		Value: string(value),
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// Delete removes key; deleting an absent key is not an error
func (s *SQLStore) Delete(key string) error {
	return s.db.Where("key = ?", key).Delete(&Entry{}).Error
}

// Close releases the underlying connection
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
