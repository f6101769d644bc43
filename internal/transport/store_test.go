package transport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/libp2p/go-libp2p/core/routing"

	herrors "github.com/PolarWolf314/handoff/internal/errors"
	logger "github.com/PolarWolf314/handoff/internal/logging"
	"github.com/PolarWolf314/handoff/internal/record"
)

var testLogger = logger.Logger{}

func TestKeys(t *testing.T) {
	token := record.Ref{Pubkey: "PUB", ID: "abc"}
	if got := RecordKey(token); got != "/handoff/PUB/abc" {
		t.Errorf("Unexpected record key: %s", got)
	}
	if got := PointerKey("PUB"); got != "/handoff/PUB/latest" {
		t.Errorf("Unexpected pointer key: %s", got)
	}

	for _, bad := range []string{"", "/handoff", "/handoff/PUB", "/other/PUB/abc", "handoff/PUB/abc", "/handoff/PUB/abc/x", "/handoff//abc"} {
		if _, _, ok := splitKey(bad); ok {
			t.Errorf("Expected %q to be rejected", bad)
		}
	}
}

func TestDatastoreStore_LevelDB(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "handoff-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	path := filepath.Join(tempDir, "store")
	store, err := OpenLevelDB(path)
	if err != nil {
		t.Fatalf("OpenLevelDB failed: %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, "/handoff/a/b", []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Values survive a reopen, as a synced directory needs.
	store, err = OpenLevelDB(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	got, err := store.Get(ctx, "/handoff/a/b")
	if err != nil || string(got) != "v" {
		t.Errorf("Expected 'v', got: %q, %v", got, err)
	}

	if err := store.Delete(ctx, "/handoff/a/b"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "/handoff/a/b"); !errors.Is(err, herrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got: %v", err)
	}
	if err := store.Delete(ctx, "/handoff/a/missing"); err != nil {
		t.Errorf("Expected delete of missing key to succeed, got: %v", err)
	}
}

func TestDHTStore_ErrorMapping(t *testing.T) {
	router := newFakeRouter()
	store := NewDHTStore(router)
	ctx := context.Background()

	if _, err := store.Get(ctx, "/handoff/a/b"); !errors.Is(err, herrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got: %v", err)
	}

	router.getErr = errors.New("failed to find any peer in table")
	if _, err := store.Get(ctx, "/handoff/a/b"); !errors.Is(err, herrors.ErrTransient) {
		t.Errorf("Expected ErrTransient, got: %v", err)
	}

	router.getErr = context.DeadlineExceeded
	_, err := store.Get(ctx, "/handoff/a/b")
	if !errors.Is(err, context.DeadlineExceeded) || errors.Is(err, herrors.ErrTransient) {
		t.Errorf("Expected deadline passed through, got: %v", err)
	}

	if err := store.Delete(ctx, "/handoff/a/b"); err != nil {
		t.Errorf("Expected no-op delete, got: %v", err)
	}

	if !errors.Is(classifyRouting(routing.ErrNotFound), herrors.ErrNotFound) {
		t.Error("routing.ErrNotFound should map to ErrNotFound")
	}
}
