package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapion/internal/catalog"
	"github.com/leapstack-labs/leapion/internal/cli/config"
	"github.com/leapstack-labs/leapion/internal/cli/output"
	"github.com/leapstack-labs/leapion/pkg/macro"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Catalog  *catalog.Catalog
	Table    *macro.Table
	Renderer *output.Renderer
}

// NewCommandContext loads the macro catalog and installs it into a table
// seeded with the system macros.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	cat, err := catalog.NewLoader(cfg.CatalogDir, logger).Load(cmd.Context())
	if err != nil {
		return nil, err
	}

	table := macro.NewTableWithSystemMacros()
	if err := cat.InstallInto(table); err != nil {
		return nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Catalog:  cat,
		Table:    table,
		Renderer: r,
	}, nil
}

// NewCommandContextWithoutCatalog creates a CommandContext with only the
// system macros. Useful for commands that never read the catalog.
func NewCommandContextWithoutCatalog(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Table:    macro.NewTableWithSystemMacros(),
		Renderer: r,
	}
}

// SourceFiles maps macro names to the catalog files that declared them.
func (c *CommandContext) SourceFiles() map[string]string {
	files := make(map[string]string)
	if c.Catalog == nil {
		return files
	}
	for _, e := range c.Catalog.Entries() {
		if name, ok := e.Template.Name(); ok {
			files[name] = e.File
		}
	}
	return files
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to
// environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	catalogDir := getEnvOrDefault("LEAPION_CATALOG_DIR", config.DefaultCatalogDir)
	verbose := os.Getenv("LEAPION_VERBOSE") == "true"
	outputFormat := os.Getenv("LEAPION_OUTPUT")

	return &config.Config{
		CatalogDir:   catalogDir,
		Verbose:      verbose,
		OutputFormat: outputFormat,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
