package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapion/internal/api"
	"github.com/leapstack-labs/leapion/internal/cli/config"
	"github.com/leapstack-labs/leapion/internal/cli/output"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr  string
	Watch bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the macro table over HTTP",
		Long: `Start a local HTTP server exposing the macro table as JSON.

Endpoints:
  GET /api/status       Server and catalog load state
  GET /api/macros       Every macro with a summary, same shape as
                        "leapion list --output json"
  GET /api/macros/{id}  One macro by name or address

With --watch the server reloads the catalog whenever a catalog file
changes, keeping the previous table on load errors.`,
		Example: `  # Serve on the default address
  leapion serve

  # Serve on a custom address with live reload
  leapion serve --addr :8080 --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Address to listen on (default: :7341)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Reload the catalog on file changes")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	serveCfg := cfg.GetServeConfig()

	// CLI flags override config file
	addr := serveCfg.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	watch := serveCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	if err := cfg.ValidateCatalogDir(); err != nil {
		return err
	}

	srv, err := api.NewServer(cmd.Context(), api.Config{
		Addr:       addr,
		CatalogDir: cfg.CatalogDir,
		Watch:      watch,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
	r.Printf("Serving macro table on %s\n", addr)
	r.Println("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		cancel()
	}()

	return srv.Serve(ctx)
}
