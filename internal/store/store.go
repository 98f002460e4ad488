// Package store provides the persistent state layer for the market engine:
// a flat key-value store with typed singleton items and composite-key tables,
// and all-or-nothing write batches.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("store: key not found")

// Op is a single write: a set when Delete is false, a removal otherwise.
type Op struct {
	Key    string
	Value  []byte
	Delete bool
}

// Store is a flat key-value store. Commit applies a batch of ops as one
// indivisible unit: either every op is applied or none is.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Commit(ctx context.Context, ops []Op) error
}

// Batch accumulates writes for a single Commit.
type Batch struct {
	ops []Op
}

func (b *Batch) Set(key string, value []byte) {
	b.ops = append(b.ops, Op{Key: key, Value: value})
}

func (b *Batch) Delete(key string) {
	b.ops = append(b.ops, Op{Key: key, Delete: true})
}

// Ops returns the accumulated writes in insertion order.
func (b *Batch) Ops() []Op {
	return b.ops
}

// Item is a typed singleton slot.
type Item[T any] struct {
	key string
}

func NewItem[T any](key string) Item[T] {
	return Item[T]{key: key}
}

// Load reads the slot; it returns ErrNotFound when the slot is empty.
func (i Item[T]) Load(ctx context.Context, s Store) (T, error) {
	var v T
	raw, err := s.Get(ctx, i.key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("store: decode %q: %w", i.key, err)
	}
	return v, nil
}

// MayLoad reads the slot, reporting absence instead of an error.
func (i Item[T]) MayLoad(ctx context.Context, s Store) (T, bool, error) {
	v, err := i.Load(ctx, s)
	if errors.Is(err, ErrNotFound) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		return v, false, err
	}
	return v, true, nil
}

func (i Item[T]) Save(b *Batch, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", i.key, err)
	}
	b.Set(i.key, raw)
	return nil
}

func (i Item[T]) Remove(b *Batch) {
	b.Delete(i.key)
}

// Table is a typed map keyed by one or more string parts.
type Table[T any] struct {
	prefix string
}

func NewTable[T any](prefix string) Table[T] {
	return Table[T]{prefix: prefix}
}

func (t Table[T]) key(parts ...string) string {
	return t.prefix + "/" + strings.Join(parts, "/")
}

func (t Table[T]) Load(ctx context.Context, s Store, parts ...string) (T, error) {
	var v T
	raw, err := s.Get(ctx, t.key(parts...))
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("store: decode %q: %w", t.key(parts...), err)
	}
	return v, nil
}

// MayLoad reads an entry, reporting absence instead of an error.
func (t Table[T]) MayLoad(ctx context.Context, s Store, parts ...string) (T, bool, error) {
	v, err := t.Load(ctx, s, parts...)
	if errors.Is(err, ErrNotFound) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		return v, false, err
	}
	return v, true, nil
}

// Has reports whether an entry exists.
func (t Table[T]) Has(ctx context.Context, s Store, parts ...string) (bool, error) {
	_, ok, err := t.MayLoad(ctx, s, parts...)
	return ok, err
}

func (t Table[T]) Save(b *Batch, v T, parts ...string) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", t.key(parts...), err)
	}
	b.Set(t.key(parts...), raw)
	return nil
}

func (t Table[T]) Remove(b *Batch, parts ...string) {
	b.Delete(t.key(parts...))
}
