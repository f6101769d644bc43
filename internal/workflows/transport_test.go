package workflows

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/PolarWolf314/handoff/internal/configs"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
	logger "github.com/PolarWolf314/handoff/internal/logging"
)

func TestOpenTransport_LocalRoundTrip(t *testing.T) {
	settings := setupSettings(t)
	config := configs.DefaultConfig()
	config.KDF = testParams
	config.Transport.Mode = configs.TransportLocal
	config.Transport.LocalPath = filepath.Join(t.TempDir(), "shared")
	ctx := context.Background()

	client, closeFn, err := OpenTransport(ctx, config, settings, logger.Logger{})
	if err != nil {
		t.Fatalf("OpenTransport failed: %v", err)
	}

	env := NewEnv(config, settings, logger.Logger{})
	env.Transport = client
	withIdentity(t, env, "")

	published, err := Publish(ctx, PublishOptions{Env: env, Payload: []byte("over leveldb")})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// A second process opening the same directory sees the record.
	client, closeFn, err = OpenTransport(ctx, config, settings, logger.Logger{})
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer closeFn()
	env.Transport = client

	picked, err := Pickup(ctx, PickupOptions{Env: env, Ref: published.Token.String()})
	if err != nil {
		t.Fatalf("Pickup failed: %v", err)
	}
	if string(picked.Payload) != "over leveldb" {
		t.Errorf("Expected payload, got: %q", picked.Payload)
	}
}

func TestOpenTransport_DHTNeedsBootstrapPeers(t *testing.T) {
	settings := setupSettings(t)

	_, _, err := OpenTransport(context.Background(), configs.DefaultConfig(), settings, logger.Logger{})
	if !errors.Is(err, herrors.ErrInvalidUsage) {
		t.Errorf("Expected ErrInvalidUsage, got: %v", err)
	}
}

func TestRetryPolicyFromConfig(t *testing.T) {
	config := configs.DefaultConfig()
	config.Retry.MaxElapsed = configs.Duration{Duration: 3 * time.Second}
	config.Retry.InitialInterval = configs.Duration{}

	policy := RetryPolicy(config)
	if policy.MaxElapsedTime != 3*time.Second {
		t.Errorf("Expected 3s ceiling, got: %s", policy.MaxElapsedTime)
	}
	if policy.InitialInterval != 500*time.Millisecond {
		t.Errorf("Expected default initial interval, got: %s", policy.InitialInterval)
	}
}
