package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/PolarWolf314/handoff/internal/configs"
	"github.com/PolarWolf314/handoff/internal/ui"
	"github.com/PolarWolf314/handoff/internal/workflows"
	"github.com/spf13/cobra"
)

var serveListen []string

func init() {
	serveCmd.Flags().StringSliceVar(&serveListen, "listen", nil, "multiaddrs to listen on (default transport.listen_addrs, then port 4001)")
}

func resetServeState() {
	serveListen = nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a DHT node the other devices bootstrap from",
	Long: `Runs a handoff DHT server until interrupted. It prints its bootstrap addresses
on stdout; add one of them to transport.bootstrap_peers on your other devices.
The node keeps its peer id in the data directory, so the addresses survive
restarts.

Examples:
  handoff serve
  handoff serve --listen /ip4/0.0.0.0/tcp/4001`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting serve command")

		settings := configs.UserHandoffSettings
		config, err := configs.LoadConfig(settings.ConfigPath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return workflows.Serve(ctx, workflows.ServeOptions{
			Config:      config,
			Settings:    settings,
			Logger:      Logger,
			ListenAddrs: serveListen,
			Ready: func(addrs []string) {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.Success.Sprint("✓")+" Serving the handoff DHT. Bootstrap addresses:")
				for _, addr := range addrs {
					fmt.Fprintln(cmd.OutOrStdout(), addr)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), ui.Muted.Sprint("Press Ctrl-C to stop"))
			},
		})
	},
}
