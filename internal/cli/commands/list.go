package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapion/internal/cli/output"
	"github.com/leapstack-labs/leapion/pkg/macro"
)

// ListOptions holds options for the list command.
type ListOptions struct {
	UserOnly bool
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all macros in the table",
		Long: `List every macro in the table: the built-in system macros followed by
the macros loaded from the catalog directory.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json, yaml`,
		Example: `  # List all macros (auto-detect output format)
  leapion list

  # List only catalog macros
  leapion list --user

  # List macros as JSON
  leapion list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.UserOnly, "user", false, "Only list macros loaded from the catalog")

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	files := cmdCtx.SourceFiles()

	var entries []output.MacroEntry
	for _, ref := range cmdCtx.Table.AllMacros() {
		if opts.UserOnly && ref.Address() < macro.FirstUserMacroID {
			continue
		}
		name, _ := ref.Name()
		entries = append(entries, output.NewMacroEntry(ref, files[name]))
	}

	header := "Macros"
	if opts.UserOnly {
		header = "Catalog macros"
	}
	return renderEntries(r, header, entries)
}
