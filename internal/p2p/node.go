// Package p2p builds the libp2p host and Kademlia DHT that back the
// transport's DHT store. A node with listen addresses serves the DHT and can
// seed the others; a node without them is a client.
package p2p

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/libp2p/go-libp2p"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	p2precord "github.com/libp2p/go-libp2p-record"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"

	herrors "github.com/PolarWolf314/handoff/internal/errors"
	"github.com/PolarWolf314/handoff/internal/keystore"
	"github.com/PolarWolf314/handoff/internal/transport"
)

// ProtocolPrefix keeps the handoff DHT separate from the public IPFS DHT,
// which refuses values outside its own namespaces.
const ProtocolPrefix = "/handoff"

// libp2p subsystems that are noisy at their default level.
var quietSubsystems = []string{"dht", "dht/RtRefreshManager", "swarm2", "basichost", "net/identify", "autorelay", "routedhost"}

// NodeConfig configures NewNode.
type NodeConfig struct {
	// BootstrapPeers are full multiaddrs with a /p2p/ component.
	BootstrapPeers []string
	// ListenAddrs are multiaddrs to listen on. A node with listen addresses
	// serves the DHT and may run without bootstrap peers; a client needs none.
	ListenAddrs []string
	// HostKey is the libp2p identity. Nil generates an ephemeral key.
	HostKey crypto.PrivKey
	// Namespace and Validator register the value validator with the DHT.
	Namespace string
	Validator p2precord.Validator
	// ConnectTimeout bounds one bootstrap attempt.
	ConnectTimeout time.Duration
	// Retry schedules bootstrap attempts.
	Retry transport.RetryPolicy
	// Debug leaves libp2p logging at info instead of error.
	Debug bool
}

// Node is a running libp2p host with its DHT.
type Node struct {
	Host host.Host
	DHT  *dht.IpfsDHT
}

// ParseBootstrapPeers turns multiaddr strings into peer addresses.
func ParseBootstrapPeers(addrs []string) ([]peer.AddrInfo, error) {
	infos := make([]peer.AddrInfo, 0, len(addrs))
	for _, s := range addrs {
		ma, err := multiaddr.NewMultiaddr(s)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid bootstrap address %s: %v", herrors.ErrInvalidUsage, s, err)
		}
		info, err := peer.AddrInfoFromP2pAddr(ma)
		if err != nil {
			return nil, fmt.Errorf("%w: bootstrap address %s has no peer id: %v", herrors.ErrInvalidUsage, s, err)
		}
		infos = append(infos, *info)
	}
	return infos, nil
}

// SetLogLevels quiets libp2p unless debug is set.
func SetLogLevels(debug bool) {
	level := "error"
	if debug {
		level = "info"
	}
	for _, name := range quietSubsystems {
		_ = logging.SetLogLevel(name, level)
	}
}

// NewNode starts a host, connects to the bootstrap peers and returns once
// the DHT routing table holds at least one handoff peer. With listen
// addresses the node serves the DHT and bootstrap peers are optional. The
// host key is unrelated to the user's identity.
func NewNode(ctx context.Context, cfg NodeConfig) (*Node, error) {
	SetLogLevels(cfg.Debug)

	bootstrap, err := ParseBootstrapPeers(cfg.BootstrapPeers)
	if err != nil {
		return nil, err
	}
	serve := len(cfg.ListenAddrs) > 0
	if len(bootstrap) == 0 && !serve {
		return nil, fmt.Errorf("%w: no bootstrap peers configured", herrors.ErrInvalidUsage)
	}

	priv := cfg.HostKey
	if priv == nil {
		priv, _, err = crypto.GenerateEd25519Key(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("generating host key: %w", err)
		}
	}

	opts := []libp2p.Option{libp2p.Identity(priv)}
	if serve {
		opts = append(opts, libp2p.ListenAddrStrings(cfg.ListenAddrs...))
	} else {
		opts = append(opts, libp2p.NoListenAddrs)
	}

	h, err := libp2p.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: starting libp2p host: %v", herrors.ErrInvalidUsage, err)
	}

	mode := dht.ModeClient
	if serve {
		mode = dht.ModeServer
	}
	dhtOpts := []dht.Option{
		dht.Mode(mode),
		dht.ProtocolPrefix(ProtocolPrefix),
	}
	if len(bootstrap) > 0 {
		dhtOpts = append(dhtOpts, dht.BootstrapPeers(bootstrap...))
	}
	if cfg.Validator != nil {
		dhtOpts = append(dhtOpts, dht.NamespacedValidator(cfg.Namespace, cfg.Validator))
	}

	kad, err := dht.New(ctx, h, dhtOpts...)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("starting dht: %w", err)
	}

	n := &Node{Host: h, DHT: kad}
	if len(bootstrap) == 0 {
		return n, nil
	}

	err = cfg.Retry.Do(ctx, func(ctx context.Context) error {
		return n.join(ctx, bootstrap, cfg.ConnectTimeout)
	})
	if err != nil {
		n.Close()
		return nil, fmt.Errorf("joining the handoff dht: %w", err)
	}
	return n, nil
}

// join dials the bootstrap peers, bootstraps the DHT and waits for the
// routing table to pick up a peer that speaks the handoff DHT protocol.
func (n *Node) join(ctx context.Context, peers []peer.AddrInfo, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := n.connect(ctx, peers); err != nil {
		return err
	}
	if err := n.DHT.Bootstrap(ctx); err != nil {
		return fmt.Errorf("%w: bootstrapping dht: %v", herrors.ErrTransient, err)
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for n.DHT.RoutingTable().Size() == 0 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: bootstrap peers do not serve %s/kad/1.0.0", herrors.ErrTransient, ProtocolPrefix)
		case <-ticker.C:
		}
	}
	return nil
}

// Addrs returns the host's listen addresses with its /p2p/ component, in
// the form other nodes take as bootstrap peers.
func (n *Node) Addrs() []string {
	info := peer.AddrInfo{ID: n.Host.ID(), Addrs: n.Host.Addrs()}
	addrs, err := peer.AddrInfoToP2pAddrs(&info)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.String())
	}
	return out
}

// LoadOrCreateHostKey reads the libp2p host key at path, creating it on
// first use so a seed node keeps its peer id across restarts.
func LoadOrCreateHostKey(path string) (crypto.PrivKey, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		priv, err := crypto.UnmarshalPrivateKey(data)
		if err != nil {
			return nil, fmt.Errorf("%w: host key %s: %v", herrors.ErrFormat, path, err)
		}
		return priv, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading host key: %w", err)
	}

	priv, _, err := crypto.GenerateEd25519Key(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating host key: %w", err)
	}
	data, err = crypto.MarshalPrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("encoding host key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating host key directory: %w", err)
	}
	if err := keystore.WriteAtomic(path, data); err != nil {
		return nil, fmt.Errorf("writing host key: %w", err)
	}
	return priv, nil
}

func (n *Node) connect(ctx context.Context, peers []peer.AddrInfo) error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	connected := 0
	var lastErr error

	for _, info := range peers {
		wg.Add(1)
		go func(info peer.AddrInfo) {
			defer wg.Done()
			err := n.Host.Connect(ctx, info)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				lastErr = err
				return
			}
			connected++
		}(info)
	}
	wg.Wait()

	if connected == 0 {
		return fmt.Errorf("%w: no bootstrap peer reachable: %v", herrors.ErrTransient, lastErr)
	}
	return nil
}

// Close stops the DHT and the host.
func (n *Node) Close() error {
	var err error
	if n.DHT != nil {
		err = n.DHT.Close()
	}
	if n.Host != nil {
		if herr := n.Host.Close(); err == nil {
			err = herr
		}
	}
	return err
}
