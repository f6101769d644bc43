package workflows

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"

	"github.com/PolarWolf314/handoff/internal/configs"
	"github.com/PolarWolf314/handoff/internal/crypto"
	"github.com/PolarWolf314/handoff/internal/keystore"
	logger "github.com/PolarWolf314/handoff/internal/logging"
	"github.com/PolarWolf314/handoff/internal/record"
	"github.com/PolarWolf314/handoff/internal/transport"
)

func init() {
	record.PINParams = crypto.Params{Time: 1, MemoryKiB: 64, Threads: 1}
}

var (
	testParams = crypto.Params{Time: 1, MemoryKiB: 64, Threads: 1}
	testNow    = time.Unix(1_700_000_000, 0)
	fastRetry  = transport.RetryPolicy{
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Multiplier:      1.5,
		MaxElapsedTime:  50 * time.Millisecond,
	}
)

// scriptedPrompter answers Passphrase calls in order and Confirm with a
// fixed value.
type scriptedPrompter struct {
	mu       sync.Mutex
	answers  []string
	confirm  bool
	prompts  []string
	confirms int
}

func (p *scriptedPrompter) Passphrase(prompt string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, prompt)
	if len(p.answers) == 0 {
		return nil, nil
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return []byte(answer), nil
}

func (p *scriptedPrompter) Confirm(string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirms++
	return p.confirm, nil
}

// countingStore records how often the store is touched.
type countingStore struct {
	transport.Store
	mu   sync.Mutex
	gets int
	puts int
}

func (c *countingStore) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	c.gets++
	c.mu.Unlock()
	return c.Store.Get(ctx, key)
}

func (c *countingStore) Put(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.puts++
	c.mu.Unlock()
	return c.Store.Put(ctx, key, value)
}

func newSharedStore() *countingStore {
	return &countingStore{Store: transport.NewDatastoreStore(dssync.MutexWrap(datastore.NewMapDatastore()))}
}

// setupSettings points the global settings at a temp dir for history.
func setupSettings(t *testing.T) *configs.UserSettings {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "handoff-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	settings := &configs.UserSettings{
		KeyPath:     filepath.Join(tempDir, "data", "identity.key"),
		DataPath:    filepath.Join(tempDir, "data"),
		ConfigPath:  filepath.Join(tempDir, "config", "config.toml"),
		HistoryPath: filepath.Join(tempDir, "data", "history.jsonl"),
		LocalStore:  filepath.Join(tempDir, "data", "store"),
	}

	original := configs.UserHandoffSettings
	configs.UserHandoffSettings = settings
	t.Cleanup(func() { configs.UserHandoffSettings = original })
	return settings
}

// newTestEnv returns an Env with its own identity over store. The identity
// is saved without a passphrase unless passphrase is set.
func newTestEnv(t *testing.T, store transport.Store, prompter *scriptedPrompter) *Env {
	t.Helper()

	settings := setupSettings(t)
	config := configs.DefaultConfig()
	config.KDF = testParams

	env := NewEnv(config, settings, logger.Logger{})
	env.Keys.Prompter = prompter
	env.Transport = transport.NewClient(store, fastRetry, logger.Logger{})
	env.Now = func() time.Time { return testNow }
	return env
}

// withIdentity creates and saves a fresh identity for env.
func withIdentity(t *testing.T, env *Env, passphrase string) *keystore.Keypair {
	t.Helper()

	kp, err := keystore.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if err := env.Keys.Save(kp, []byte(passphrase)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	// Tests compare IDs; the env reloads its own copy.
	t.Cleanup(kp.Destroy)
	return kp
}
