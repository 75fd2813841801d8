package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/weft-dev/weft/internal/adapters/state"
	"github.com/weft-dev/weft/internal/api"
	"github.com/weft-dev/weft/internal/events"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the editor HTTP API",
	Long: `Start the HTTP API the browser editor talks to: run execution, run
history, version listings, and live node status over SSE.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "",
		"listen address (default: server.addr from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := buildLogger()

	lib, err := buildLibrary()
	if err != nil {
		return err
	}
	if cfg.Library.Watch {
		go func() {
			if err := lib.Watch(ctx, logger); err != nil && ctx.Err() == nil {
				logger.Error("library watcher stopped", "error", err)
			}
		}()
	}

	store, err := state.Open(cfg.State.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	bus := events.New(256)
	defer bus.Close()

	runner := buildRunner(lib, logger, events.NewBusNotifier(bus))

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	server := api.NewServer(runner, bus,
		api.WithLogger(logger),
		api.WithRunStore(store),
		api.WithVersionLister(lib),
	)
	return server.ListenAndServe(ctx, addr)
}
