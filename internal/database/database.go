package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hauswert/internal/cache"
)

// CacheEntryRow persists one cache entry; (cache, key) is unique so
// repeated writes for the same fact overwrite each other.
type CacheEntryRow struct {
	ID       uint      `gorm:"primaryKey"`
	Cache    string    `gorm:"size:64;not null;uniqueIndex:idx_cache_entries_cache_key"`
	Key      string    `gorm:"size:255;not null;uniqueIndex:idx_cache_entries_cache_key"`
	Value    string    `gorm:"type:text"`
	StoredAt time.Time `gorm:"index"`
}

func (CacheEntryRow) TableName() string { return "cache_entries" }

// ValuationRecord is one line of valuation history.
type ValuationRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Address     string    `gorm:"size:255" json:"address"`
	Region      string    `gorm:"size:64;index" json:"region"`
	Method      string    `gorm:"size:32" json:"method"`
	TotalValue  float64   `json:"total_value"`
	PricePerSqm float64   `json:"price_per_sqm"`
	Confidence  string    `gorm:"size:16" json:"confidence"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ValuationRecord) TableName() string { return "valuations" }

type Database struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewDatabase opens the sqlite store and runs the schema migration.
func NewDatabase(path string, logger *logrus.Logger) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&CacheEntryRow{}, &ValuationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Database{db: db, logger: logger}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB exposes the underlying handle for callers that need raw access.
func (d *Database) GetDB() *gorm.DB { return d.db }

// LoadEntries implements cache.Store.
func (d *Database) LoadEntries(cacheName string) ([]cache.Entry, error) {
	var rows []CacheEntryRow
	if err := d.db.Where("cache = ?", cacheName).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load cache entries: %w", err)
	}

	entries := make([]cache.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, cache.Entry{
			Key:      row.Key,
			Value:    json.RawMessage(row.Value),
			StoredAt: row.StoredAt,
		})
	}
	return entries, nil
}

// SaveEntries implements cache.Store with an upsert inside a transaction.
func (d *Database) SaveEntries(cacheName string, entries []cache.Entry) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			row := CacheEntryRow{
				Cache:    cacheName,
				Key:      e.Key,
				Value:    string(e.Value),
				StoredAt: e.StoredAt,
			}
			err := tx.Assign(map[string]any{"value": row.Value, "stored_at": row.StoredAt}).
				FirstOrCreate(&CacheEntryRow{}, CacheEntryRow{Cache: cacheName, Key: e.Key}).Error
			if err != nil {
				return fmt.Errorf("failed to upsert cache entry %q: %w", e.Key, err)
			}
		}
		return nil
	})
}

// PurgeEntries implements cache.Store; it drops persisted rows beyond the
// cache's TTL so restarts do not resurrect them.
func (d *Database) PurgeEntries(cacheName string, olderThan time.Time) error {
	return d.db.Where("cache = ? AND stored_at < ?", cacheName, olderThan).Delete(&CacheEntryRow{}).Error
}

// SaveValuation appends one history row.
func (d *Database) SaveValuation(rec *ValuationRecord) error {
	return d.db.Create(rec).Error
}

// RecentValuations returns the latest history rows, newest first.
func (d *Database) RecentValuations(limit int) ([]ValuationRecord, error) {
	var rows []ValuationRecord
	err := d.db.Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}
