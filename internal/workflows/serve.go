package workflows

import (
	"context"

	"github.com/PolarWolf314/handoff/internal/configs"
	logger "github.com/PolarWolf314/handoff/internal/logging"
	"github.com/PolarWolf314/handoff/internal/p2p"
)

// DefaultListenAddrs is where serve listens when neither the flag nor
// transport.listen_addrs names an address.
var DefaultListenAddrs = []string{"/ip4/0.0.0.0/tcp/4001", "/ip6/::/tcp/4001"}

// ServeOptions configures the serve workflow.
type ServeOptions struct {
	Config   *configs.Config
	Settings *configs.UserSettings
	Logger   logger.Logger

	// ListenAddrs overrides transport.listen_addrs.
	ListenAddrs []string

	// Ready is called once the node is up with the addresses other devices
	// put in transport.bootstrap_peers.
	Ready func(addrs []string)
}

// Serve runs a DHT server node until ctx is done. Other devices bootstrap
// from it, and it stores and answers for their records while it runs.
// Bootstrap peers are optional; with them this node joins an existing
// handoff DHT instead of starting a new one.
func Serve(ctx context.Context, opts ServeOptions) error {
	config := *opts.Config
	config.Transport.ListenAddrs = opts.ListenAddrs
	if len(config.Transport.ListenAddrs) == 0 {
		config.Transport.ListenAddrs = opts.Config.Transport.ListenAddrs
	}
	if len(config.Transport.ListenAddrs) == 0 {
		config.Transport.ListenAddrs = DefaultListenAddrs
	}

	cfg, err := nodeConfig(&config, opts.Settings, opts.Logger)
	if err != nil {
		return err
	}

	opts.Logger.Debugf("Starting DHT server on %v", cfg.ListenAddrs)
	node, err := p2p.NewNode(ctx, cfg)
	if err != nil {
		return err
	}
	defer node.Close()

	if opts.Ready != nil {
		opts.Ready(node.Addrs())
	}
	<-ctx.Done()
	opts.Logger.Infof("Stopping DHT server")
	return nil
}
