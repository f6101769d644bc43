package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	herrors "github.com/PolarWolf314/handoff/internal/errors"
	"github.com/PolarWolf314/handoff/internal/keystore"
	logger "github.com/PolarWolf314/handoff/internal/logging"
	"github.com/PolarWolf314/handoff/internal/record"
)

// Client publishes, retrieves and revokes records on a Store.
type Client struct {
	Store  Store
	Retry  RetryPolicy
	Logger logger.Logger

	now func() time.Time
}

// NewClient returns a Client using policy for every store call.
func NewClient(store Store, policy RetryPolicy, log logger.Logger) *Client {
	return &Client{Store: store, Retry: policy, Logger: log, now: time.Now}
}

func (c *Client) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// Publish stores rec under a new token and then points kp's latest entry at
// it. The pointer is only written once the record put has succeeded.
func (c *Client) Publish(ctx context.Context, rec *record.HandoffRecord, kp *keystore.Keypair) (record.Ref, error) {
	if rec.Pubkey != kp.ID() || !record.Verify(rec) {
		return record.Ref{}, herrors.ErrBadSignature
	}

	value, err := record.Marshal(rec)
	if err != nil {
		return record.Ref{}, err
	}

	token := record.NewToken(kp.ID())
	c.Logger.Debugf("Putting record %s (%d bytes)", token, len(value))
	if err := c.put(ctx, RecordKey(token), value); err != nil {
		return record.Ref{}, fmt.Errorf("publishing record: %w", err)
	}

	pointer, err := record.NewPointer(token, kp, c.clock())
	if err != nil {
		return record.Ref{}, err
	}
	pointerValue, err := record.MarshalPointer(pointer)
	if err != nil {
		return record.Ref{}, err
	}

	c.Logger.Debugf("Updating latest pointer for %s", kp.ID())
	if err := c.put(ctx, PointerKey(kp.ID()), pointerValue); err != nil {
		// The record is stored and reachable by token; only lookup by identity is stale.
		return token, fmt.Errorf("updating latest pointer: %w", err)
	}
	return token, nil
}

// Retrieve fetches the record ref names. An identity ref is resolved through
// its latest pointer first. The returned record has been verified and belongs
// to ref's identity; the returned token names it.
//
// Returns ErrNotFound if nothing is stored or the record was revoked,
// ErrBadSignature if a stored value does not verify, and ErrRetriesExhausted
// if the store stayed unreachable for the whole retry budget.
func (c *Client) Retrieve(ctx context.Context, ref record.Ref) (*record.HandoffRecord, record.Ref, error) {
	token := ref
	if !ref.IsToken() {
		resolved, err := c.resolveLatest(ctx, ref.Pubkey)
		if err != nil {
			return nil, record.Ref{}, err
		}
		token = resolved
	}

	value, err := c.get(ctx, RecordKey(token))
	if err != nil {
		return nil, record.Ref{}, err
	}

	rec, err := record.Unmarshal(value)
	if err != nil {
		return nil, record.Ref{}, err
	}
	if rec.Pubkey != token.Pubkey || !record.Verify(rec) {
		return nil, record.Ref{}, herrors.ErrBadSignature
	}
	if record.IsTombstone(rec) {
		return nil, record.Ref{}, herrors.ErrNotFound
	}
	return rec, token, nil
}

// Revoke replaces the record with a signed tombstone and deletes it where
// the store can. A record that is already gone counts as revoked. Only the
// publisher can revoke, so ref must belong to kp.
func (c *Client) Revoke(ctx context.Context, ref record.Ref, kp *keystore.Keypair) error {
	if ref.Pubkey != kp.ID() {
		return fmt.Errorf("%w: only the publisher can revoke a record", herrors.ErrInvalidUsage)
	}

	token := ref
	if !ref.IsToken() {
		resolved, err := c.resolveLatest(ctx, ref.Pubkey)
		if errors.Is(err, herrors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		token = resolved
	}

	tomb, err := record.Tombstone(kp, c.clock())
	if err != nil {
		return err
	}
	value, err := record.Marshal(tomb)
	if err != nil {
		return err
	}

	key := RecordKey(token)
	c.Logger.Debugf("Writing tombstone for %s", token)
	if err := c.put(ctx, key, value); err != nil && !errors.Is(err, herrors.ErrNotFound) {
		return fmt.Errorf("revoking record: %w", err)
	}

	if err := c.Retry.Do(ctx, func(ctx context.Context) error {
		return c.Store.Delete(ctx, key)
	}); err != nil && !errors.Is(err, herrors.ErrNotFound) {
		// The tombstone is already in place.
		c.Logger.Warnf("Could not delete %s after revoking: %v", token, err)
	}
	return nil
}

func (c *Client) resolveLatest(ctx context.Context, pubkey string) (record.Ref, error) {
	value, err := c.get(ctx, PointerKey(pubkey))
	if err != nil {
		return record.Ref{}, err
	}

	pointer, err := record.UnmarshalPointer(value)
	if err != nil {
		return record.Ref{}, err
	}
	if pointer.Pubkey != pubkey || !pointer.Verify() {
		return record.Ref{}, herrors.ErrBadSignature
	}
	return record.ParseRef(pointer.Token)
}

func (c *Client) get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.Retry.Do(ctx, func(ctx context.Context) error {
		v, err := c.Store.Get(ctx, key)
		if err != nil {
			c.Logger.Debugf("Get %s: %v", key, err)
			return err
		}
		value = v
		return nil
	})
	return value, err
}

func (c *Client) put(ctx context.Context, key string, value []byte) error {
	return c.Retry.Do(ctx, func(ctx context.Context) error {
		err := c.Store.Put(ctx, key, value)
		if err != nil {
			c.Logger.Debugf("Put %s: %v", key, err)
		}
		return err
	})
}
