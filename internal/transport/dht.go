package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/libp2p/go-libp2p/core/routing"

	herrors "github.com/PolarWolf314/handoff/internal/errors"
)

// ValueRouter is the part of a DHT that DHTStore needs. *dht.IpfsDHT
// satisfies it.
type ValueRouter interface {
	PutValue(ctx context.Context, key string, value []byte, opts ...routing.Option) error
	GetValue(ctx context.Context, key string, opts ...routing.Option) ([]byte, error)
}

// DHTStore stores values in a Kademlia DHT. Values must pass Validator on
// every DHT node, so only signed records and pointers can be put.
type DHTStore struct {
	router ValueRouter
}

// NewDHTStore wraps router.
func NewDHTStore(router ValueRouter) *DHTStore {
	return &DHTStore{router: router}
}

func (s *DHTStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.router.PutValue(ctx, key, value); err != nil {
		return classifyRouting(err)
	}
	return nil
}

func (s *DHTStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.router.GetValue(ctx, key)
	if err != nil {
		return nil, classifyRouting(err)
	}
	return value, nil
}

// Delete is a no-op: the DHT has no delete, and Client.Revoke has already
// replaced the value with a tombstone.
func (s *DHTStore) Delete(context.Context, string) error {
	return nil
}

func classifyRouting(err error) error {
	switch {
	case errors.Is(err, routing.ErrNotFound):
		return herrors.ErrNotFound
	case IsPermanent(err):
		// Cancellation, and validator rejections of our own values.
		return err
	default:
		return fmt.Errorf("%w: %v", herrors.ErrTransient, err)
	}
}
