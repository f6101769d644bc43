package transport

import (
	"context"
	"strings"

	"github.com/PolarWolf314/handoff/internal/record"
)

// Namespace is the first path segment of every key.
const Namespace = "handoff"

const latestSegment = "latest"

// Store is a key-value store for records and pointers. Get returns an error
// matching errors.ErrNotFound when there is no value. Delete of a missing
// key succeeds.
type Store interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// RecordKey is the store key of the record a token names.
func RecordKey(token record.Ref) string {
	return "/" + Namespace + "/" + token.Pubkey + "/" + token.ID
}

// PointerKey is the store key of an identity's latest pointer.
func PointerKey(pubkey string) string {
	return "/" + Namespace + "/" + pubkey + "/" + latestSegment
}

// splitKey breaks "/handoff/<pubkey>/<id>" into its parts.
func splitKey(key string) (pubkey, id string, ok bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 4 || parts[0] != "" || parts[1] != Namespace || parts[2] == "" || parts[3] == "" {
		return "", "", false
	}
	return parts[2], parts[3], true
}
