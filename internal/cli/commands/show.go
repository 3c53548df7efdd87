package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapion/pkg/macro"
)

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "show <name-or-address>",
		Aliases: []string{"resolve"},
		Short:   "Show one macro in detail",
		Long: `Resolve a macro by name or address and show its signature, expansion
analysis, and template body.

A numeric argument is treated as a table address; anything else is
treated as a macro name.`,
		Example: `  # Show a macro by name
  leapion show make_string

  # Show a macro by address
  leapion show 2

  # Show a catalog macro as JSON
  leapion show greet --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0])
		},
	}
}

func runShow(cmd *cobra.Command, idText string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	ref, ok := cmdCtx.Table.MacroWithID(macro.ParseID(idText))
	if !ok {
		return fmt.Errorf("no macro named or addressed %q in the table", idText)
	}

	files := cmdCtx.SourceFiles()
	name, _ := ref.Name()
	return renderMacroDetail(cmdCtx.Renderer, ref, files[name])
}
