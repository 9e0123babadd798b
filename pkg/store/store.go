// Package store persists JSON documents keyed by (collection, key) and commits
// groups of writes atomically.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Collections written by the extractor.
const (
	CollectionWords       = "vocabulary"
	CollectionExamples    = "vocabulary_examples"
	CollectionRuns        = "extraction_runs"
	CollectionHealthcheck = "_healthcheck"
)

// ErrNotFound is returned by Get when no document exists for the key.
var ErrNotFound = errors.New("store: document not found")

// Op is a single set-by-key write.
type Op struct {
	Collection string
	Key        string
	Value      []byte
}

// SetOp marshals v into a write for collection/key.
func SetOp(collection, key string, v any) (Op, error) {
	if strings.TrimSpace(key) == "" {
		return Op{}, fmt.Errorf("store: empty key for collection %s", collection)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return Op{}, fmt.Errorf("marshal %s/%s: %w", collection, key, err)
	}
	return Op{Collection: collection, Key: key, Value: data}, nil
}

// Store is a document store with atomic multi-write commits.
type Store interface {
	Get(ctx context.Context, collection, key string) ([]byte, error)
	Set(ctx context.Context, collection, key string, value []byte) error
	Delete(ctx context.Context, collection, key string) error
	// Commit applies all ops or none.
	Commit(ctx context.Context, ops []Op) error
	Close() error
}

// Probe verifies the store is reachable with a write, read and delete round trip.
func Probe(ctx context.Context, s Store, now time.Time) error {
	key := fmt.Sprintf("probe_%d", now.UnixNano())
	payload, err := json.Marshal(map[string]any{"timestamp": now.UTC()})
	if err != nil {
		return err
	}
	if err := s.Set(ctx, CollectionHealthcheck, key, payload); err != nil {
		return fmt.Errorf("probe write: %w", err)
	}
	got, err := s.Get(ctx, CollectionHealthcheck, key)
	if err != nil {
		return fmt.Errorf("probe read: %w", err)
	}
	if !bytes.Equal(got, payload) {
		return fmt.Errorf("probe read: unexpected payload %q", got)
	}
	if err := s.Delete(ctx, CollectionHealthcheck, key); err != nil {
		return fmt.Errorf("probe delete: %w", err)
	}
	return nil
}
