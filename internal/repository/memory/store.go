package memory

import (
	"context"
	"errors"
	"fmt"

	ds "github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
)

// Store keeps persisted state in process memory. It is used by tests and by
// the memory storage driver; nothing survives a restart.
type Store struct {
	ds ds.Datastore
}

// New creates an empty, concurrency-safe in-memory store.
func New() *Store {
	return &Store{ds: dssync.MutexWrap(ds.NewMapDatastore())}
}

// GetItem returns the value under key, if any.
func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := s.ds.Get(ctx, ds.NewKey(key))
	if errors.Is(err, ds.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return string(value), true, nil
}

// SetItem stores value under key.
func (s *Store) SetItem(ctx context.Context, key, value string) error {
	if err := s.ds.Put(ctx, ds.NewKey(key), []byte(value)); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if err := s.ds.Delete(ctx, ds.NewKey(key)); err != nil && !errors.Is(err, ds.ErrNotFound) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying datastore.
func (s *Store) Close(context.Context) error {
	return s.ds.Close()
}
