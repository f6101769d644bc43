package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ipfs/go-datastore"
	"github.com/libp2p/go-libp2p/core/routing"

	"github.com/PolarWolf314/handoff/internal/keystore"
	"github.com/PolarWolf314/handoff/internal/record"
)

var fastRetry = RetryPolicy{
	InitialInterval: time.Millisecond,
	MaxInterval:     2 * time.Millisecond,
	Multiplier:      1.5,
	MaxElapsedTime:  100 * time.Millisecond,
}

func newKeypair(t *testing.T) *keystore.Keypair {
	t.Helper()
	kp, err := keystore.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	t.Cleanup(kp.Destroy)
	return kp
}

func sealedRecord(t *testing.T, kp *keystore.Keypair, payload string) *record.HandoffRecord {
	t.Helper()
	rec, err := record.Seal([]byte(payload), record.Metadata{Project: "api", Hostname: "laptop"},
		record.Options{Mode: record.ModeSelf, TTL: time.Hour}, kp, time.Now())
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	return rec
}

func newMemoryStore() *DatastoreStore {
	return NewDatastoreStore(datastore.NewMapDatastore())
}

// flakyStore fails the first failures calls of each kind with err.
type flakyStore struct {
	Store
	mu       sync.Mutex
	failures int
	err      error
	gets     int
	puts     int
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	f.gets++
	fail := f.gets <= f.failures
	f.mu.Unlock()
	if fail {
		return nil, f.err
	}
	return f.Store.Get(ctx, key)
}

func (f *flakyStore) Put(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.puts++
	fail := f.puts <= f.failures
	f.mu.Unlock()
	if fail {
		return f.err
	}
	return f.Store.Put(ctx, key, value)
}

// fakeRouter is an in-memory DHT that validates and selects like a real node.
type fakeRouter struct {
	mu     sync.Mutex
	values map[string][]byte
	getErr error
}

func newFakeRouter() *fakeRouter {
	return &fakeRouter{values: make(map[string][]byte)}
}

func (r *fakeRouter) PutValue(_ context.Context, key string, value []byte, _ ...routing.Option) error {
	v := Validator{}
	if err := v.Validate(key, value); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Like kad-dht, the incoming value is first and must win.
	if old, ok := r.values[key]; ok {
		i, err := v.Select(key, [][]byte{value, old})
		if err != nil {
			return err
		}
		if i != 0 {
			return errors.New("can't replace a newer value with an older value")
		}
	}
	r.values[key] = value
	return nil
}

func (r *fakeRouter) GetValue(_ context.Context, key string, _ ...routing.Option) ([]byte, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[key]
	if !ok {
		return nil, routing.ErrNotFound
	}
	return v, nil
}
