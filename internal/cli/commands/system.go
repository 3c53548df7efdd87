package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapion/internal/cli/output"
	"github.com/leapstack-labs/leapion/pkg/macro"
)

// NewSystemCommand creates the system command.
func NewSystemCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "system",
		Short: "List the built-in system macros",
		Long: `List the system macros every macro table starts with.

System macros occupy addresses 0 through 8 and are always addressable by
name and by address, in any encoding context.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # List system macros
  leapion system

  # List system macros as JSON
  leapion system --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSystem(cmd)
		},
	}
}

func runSystem(cmd *cobra.Command) error {
	cmdCtx := NewCommandContextWithoutCatalog(cmd)
	r := cmdCtx.Renderer

	entries := make([]output.MacroEntry, 0, macro.NumSystemMacros)
	for _, ref := range cmdCtx.Table.AllMacros() {
		if ref.Address() >= macro.FirstUserMacroID {
			break
		}
		entries = append(entries, output.NewMacroEntry(ref, ""))
	}

	return renderEntries(r, "System macros", entries)
}
