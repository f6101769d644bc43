// Package configs manages handoff's paths and user configuration.
//
// # Settings
//
// UserHandoffSettings is resolved at startup from the XDG directories:
//
//   - KeyPath: $XDG_DATA_HOME/handoff/identity.key (HANDOFF_KEY_PATH overrides)
//   - ConfigPath: <user config dir>/handoff/config.toml (HANDOFF_CONFIG_DIR overrides the directory)
//   - HistoryPath: $XDG_DATA_HOME/handoff/history.jsonl
//   - LocalStore: $XDG_DATA_HOME/handoff/store, the default for local transport
//   - host.key in the data directory: the libp2p identity of a listening node
//
// # Configuration
//
// config.toml is optional. Every key has a default:
//
//	[record]
//	default_ttl = "15m"
//	max_ttl = "24h"
//
//	[kdf]
//	time = 3
//	memory_kib = 65536
//	threads = 1
//
//	[transport]
//	mode = "dht"            # or "local"
//	local_path = ""         # directory for local mode
//	bootstrap_peers = []    # multiaddrs with /p2p/ ids
//	listen_addrs = []       # a device with these serves the DHT for the others
//
//	[retry]
//	initial_interval = "500ms"
//	max_interval = "5s"
//	max_elapsed = "30s"
//
// The KDF parameters apply to newly written key files only. Existing files
// carry their own parameters.
package configs
