package transport

import (
	"bytes"
	"fmt"

	p2precord "github.com/libp2p/go-libp2p-record"

	herrors "github.com/PolarWolf314/handoff/internal/errors"
	"github.com/PolarWolf314/handoff/internal/record"
)

// MaxValueSize bounds values accepted into the DHT.
const MaxValueSize = 16 * 1024

// Validator checks values in the handoff DHT namespace: each must be a
// record or pointer signed by the identity in its key. Select prefers the
// newest value and, at equal timestamps, a tombstone over a live record.
// Remaining ties go to the greater value bytes, so every node picks the
// same value whatever order it sees them in.
type Validator struct{}

var _ p2precord.Validator = Validator{}

func (Validator) Validate(key string, value []byte) error {
	_, err := validateValue(key, value)
	return err
}

func (Validator) Select(key string, values [][]byte) (int, error) {
	best := -1
	var bestRank rank
	for i, v := range values {
		r, err := validateValue(key, v)
		if err != nil {
			continue
		}
		if best < 0 || r.newerThan(bestRank) {
			best, bestRank = i, r
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("%w: no valid value for %s", herrors.ErrMalformedRecord, key)
	}
	return best, nil
}

type rank struct {
	at   int64
	tomb bool
	tie  []byte
}

func (r rank) newerThan(o rank) bool {
	if r.at != o.at {
		return r.at > o.at
	}
	if r.tomb != o.tomb {
		return r.tomb
	}
	return bytes.Compare(r.tie, o.tie) > 0
}

func validateValue(key string, value []byte) (rank, error) {
	pubkey, id, ok := splitKey(key)
	if !ok {
		return rank{}, fmt.Errorf("%w: bad key %q", herrors.ErrMalformedReference, key)
	}
	if len(value) > MaxValueSize {
		return rank{}, fmt.Errorf("%w: value of %d bytes", herrors.ErrMalformedRecord, len(value))
	}

	if id == latestSegment {
		p, err := record.UnmarshalPointer(value)
		if err != nil {
			return rank{}, err
		}
		if p.Pubkey != pubkey || !p.Verify() {
			return rank{}, herrors.ErrBadSignature
		}
		return rank{at: p.UpdatedAt, tie: value}, nil
	}

	if _, err := record.ParseRef(pubkey + "/" + id); err != nil {
		return rank{}, err
	}
	rec, err := record.Unmarshal(value)
	if err != nil {
		return rank{}, err
	}
	if rec.Pubkey != pubkey || !record.Verify(rec) {
		return rank{}, herrors.ErrBadSignature
	}
	return rank{at: rec.CreatedAt, tomb: record.IsTombstone(rec), tie: value}, nil
}
