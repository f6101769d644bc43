package workflows

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/PolarWolf314/handoff/internal/configs"
	herrors "github.com/PolarWolf314/handoff/internal/errors"
	logger "github.com/PolarWolf314/handoff/internal/logging"
	"github.com/PolarWolf314/handoff/internal/p2p"
	"github.com/PolarWolf314/handoff/internal/transport"
)

// OpenTransport connects the store selected by [transport] mode and returns
// a client over it together with a function that releases it.
//
// "dht" starts a libp2p node and uses the DHT; "local" opens a LevelDB
// store in local_path (or the data directory), which works through any
// shared or synced folder.
func OpenTransport(ctx context.Context, config *configs.Config, settings *configs.UserSettings, log logger.Logger) (*transport.Client, func() error, error) {
	policy := RetryPolicy(config)

	switch config.Transport.Mode {
	case configs.TransportLocal:
		path := config.Transport.LocalPath
		if path == "" {
			path = settings.LocalStore
		}
		path = filepath.Clean(path)

		log.Debugf("Opening local store at %s", path)
		store, err := transport.OpenLevelDB(path)
		if err != nil {
			return nil, nil, err
		}
		return transport.NewClient(store, policy, log), store.Close, nil

	case configs.TransportDHT:
		cfg, err := nodeConfig(config, settings, log)
		if err != nil {
			return nil, nil, err
		}

		log.Debugf("Starting DHT node with %d bootstrap peers", len(cfg.BootstrapPeers))
		node, err := p2p.NewNode(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return transport.NewClient(transport.NewDHTStore(node.DHT), policy, log), node.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown transport mode %q", herrors.ErrInvalidUsage, config.Transport.Mode)
	}
}

// nodeConfig builds the libp2p node settings from [transport]. A node that
// listens keeps its host key in the data directory so its bootstrap address
// stays valid across restarts.
func nodeConfig(config *configs.Config, settings *configs.UserSettings, log logger.Logger) (p2p.NodeConfig, error) {
	cfg := p2p.NodeConfig{
		BootstrapPeers: config.Transport.BootstrapPeers,
		ListenAddrs:    config.Transport.ListenAddrs,
		Namespace:      transport.Namespace,
		Validator:      transport.Validator{},
		Retry:          RetryPolicy(config),
		Debug:          log.Debug,
	}
	if len(cfg.BootstrapPeers) == 0 && len(cfg.ListenAddrs) == 0 {
		return cfg, fmt.Errorf("%w: transport.bootstrap_peers is empty; add peers to %s, run \"handoff serve\" on one device, or set transport.mode = \"local\"",
			herrors.ErrInvalidUsage, settings.ConfigPath)
	}
	if len(cfg.ListenAddrs) > 0 {
		key, err := p2p.LoadOrCreateHostKey(HostKeyPath(settings))
		if err != nil {
			return cfg, err
		}
		cfg.HostKey = key
	}
	return cfg, nil
}

// HostKeyPath is where a listening node keeps its libp2p identity.
func HostKeyPath(settings *configs.UserSettings) string {
	return filepath.Join(settings.DataPath, "host.key")
}
