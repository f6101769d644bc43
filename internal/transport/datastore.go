package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/ipfs/go-datastore"
	leveldb "github.com/ipfs/go-ds-leveldb"

	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

// DatastoreStore adapts a go-datastore to Store.
type DatastoreStore struct {
	ds datastore.Datastore
}

// NewDatastoreStore wraps ds.
func NewDatastoreStore(ds datastore.Datastore) *DatastoreStore {
	return &DatastoreStore{ds: ds}
}

// OpenLevelDB opens (or creates) a LevelDB datastore at path.
func OpenLevelDB(path string) (*DatastoreStore, error) {
	ds, err := leveldb.NewDatastore(path, nil)
	if err != nil {
		return nil, fmt.Errorf("opening local store at %s: %w", path, err)
	}
	return NewDatastoreStore(ds), nil
}

func (s *DatastoreStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.ds.Put(ctx, datastore.NewKey(key), value); err != nil {
		return fmt.Errorf("%w: %v", herrors.ErrTransient, err)
	}
	if err := s.ds.Sync(ctx, datastore.NewKey(key)); err != nil {
		return fmt.Errorf("%w: %v", herrors.ErrTransient, err)
	}
	return nil
}

func (s *DatastoreStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.ds.Get(ctx, datastore.NewKey(key))
	if errors.Is(err, datastore.ErrNotFound) {
		return nil, herrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrTransient, err)
	}
	return value, nil
}

func (s *DatastoreStore) Delete(ctx context.Context, key string) error {
	if err := s.ds.Delete(ctx, datastore.NewKey(key)); err != nil && !errors.Is(err, datastore.ErrNotFound) {
		return fmt.Errorf("%w: %v", herrors.ErrTransient, err)
	}
	return nil
}

// Close releases the underlying datastore.
func (s *DatastoreStore) Close() error {
	return s.ds.Close()
}
