package store

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupGormStore(t *testing.T) *GormStore {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	s, err := NewGormStore(db)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestGormStoreRoundtrip(t *testing.T) {
	s := setupGormStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	var batch Batch
	batch.Set("config", []byte(`{"minimum_bet":1}`))
	batch.Set("owner", []byte(`"owner"`))
	if err := s.Commit(ctx, batch.Ops()); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	got, err := s.Get(ctx, "owner")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `"owner"` {
		t.Errorf("unexpected value: %s", got)
	}
}

func TestGormStoreUpsertAndDelete(t *testing.T) {
	s := setupGormStore(t)
	ctx := context.Background()

	var first Batch
	first.Set("k", []byte("v1"))
	if err := s.Commit(ctx, first.Ops()); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	// Writing the same key again replaces the value.
	var second Batch
	second.Set("k", []byte("v2"))
	if err := s.Commit(ctx, second.Ops()); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "v2" {
		t.Errorf("expected v2, got %s", got)
	}

	var third Batch
	third.Delete("k")
	if err := s.Commit(ctx, third.Ops()); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
