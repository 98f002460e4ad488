package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is the gorm model backing GormStore. One row per key.
type KVEntry struct {
	Key   string `gorm:"primaryKey;size:255"`
	Value []byte `gorm:"not null"`
}

func (KVEntry) TableName() string {
	return "market_state"
}

// GormStore persists state through gorm (postgres in production, sqlite in
// tests). Commit runs inside a single database transaction.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate market state table: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (g *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry KVEntry
	err := g.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return entry.Value, nil
}

func (g *GormStore) Commit(ctx context.Context, ops []Op) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			if op.Delete {
				if err := tx.Delete(&KVEntry{}, "key = ?", op.Key).Error; err != nil {
					return fmt.Errorf("failed to delete key %q: %w", op.Key, err)
				}
				continue
			}
			entry := KVEntry{Key: op.Key, Value: op.Value}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value"}),
			}).Create(&entry).Error
			if err != nil {
				return fmt.Errorf("failed to write key %q: %w", op.Key, err)
			}
		}
		return nil
	})
}
