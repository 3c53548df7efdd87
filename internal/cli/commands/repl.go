package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapion/internal/catalog"
	"github.com/leapstack-labs/leapion/internal/cli/output"
	"github.com/leapstack-labs/leapion/pkg/macro"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactively inspect the macro table",
		Long: `Start an interactive session over the macro table.

The catalog is loaded once at startup; use .reload to pick up edits
without restarting. Type a macro name or address to show it.`,
		Example: `  # Start the REPL
  leapion repl

  # Inside the session
  leapion> .list
  leapion> make_string
  leapion> .body greet
  leapion> .reload`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd)
		},
	}
}

func runREPL(cmd *cobra.Command) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	// Setup history file (project-local)
	historyDir := filepath.Join(cmdCtx.Cfg.ProjectRoot, ".leapion")
	if err := os.MkdirAll(historyDir, 0750); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	historyFile := filepath.Join(historyDir, "repl_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "leapion> ",
		HistoryFile:     historyFile,
		AutoComplete:    newMacroCompleter(cmdCtx.Table),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "leapion REPL (catalog: %s, %d macros)\n", cmdCtx.Cfg.CatalogDir, cmdCtx.Table.Len())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			quit := handleREPLCommand(cmd, cmdCtx, rl, line)
			if quit {
				break
			}
			continue
		}

		// A bare name or address is shorthand for .show
		showMacro(cmd, cmdCtx, line, false)
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

// handleREPLCommand executes one dot-command and reports whether the
// session should end.
func handleREPLCommand(cmd *cobra.Command, cmdCtx *CommandContext, rl *readline.Instance, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(cmd.OutOrStdout())

	case ".list":
		files := cmdCtx.SourceFiles()
		var entries []output.MacroEntry
		for _, ref := range cmdCtx.Table.AllMacros() {
			name, _ := ref.Name()
			entries = append(entries, output.NewMacroEntry(ref, files[name]))
		}
		renderEntriesTable(cmdCtx.Renderer, entries)

	case ".show":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .show <name-or-address>")
			return false
		}
		showMacro(cmd, cmdCtx, parts[1], false)

	case ".body":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .body <name-or-address>")
			return false
		}
		showMacro(cmd, cmdCtx, parts[1], true)

	case ".reload":
		reloadCatalog(cmd, cmdCtx, rl)

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

// showMacro resolves and prints one macro. With bodyOnly, only the
// template body tree is printed.
func showMacro(cmd *cobra.Command, cmdCtx *CommandContext, idText string, bodyOnly bool) {
	ref, ok := cmdCtx.Table.MacroWithID(macro.ParseID(idText))
	if !ok {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "No macro named or addressed %q\n", idText)
		return
	}

	if bodyOnly {
		body, ok := ref.TemplateBody()
		if !ok {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Macro %s has no template body (kind %s)\n", ref.IDText(), ref.Kind())
			return
		}
		for _, line := range bodyTreeLines(body, ref.Signature()) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return
	}

	files := cmdCtx.SourceFiles()
	name, _ := ref.Name()
	if err := renderMacroDetail(cmdCtx.Renderer, ref, files[name]); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
}

// reloadCatalog re-reads the catalog directory and swaps in the new
// table. The old table is kept when the reload fails.
func reloadCatalog(cmd *cobra.Command, cmdCtx *CommandContext, rl *readline.Instance) {
	cat, err := catalog.NewLoader(cmdCtx.Cfg.CatalogDir, cmdCtx.Logger).Load(cmd.Context())
	if err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Reload failed: %v\n", err)
		return
	}

	table := macro.NewTableWithSystemMacros()
	if err := cat.InstallInto(table); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Reload failed: %v\n", err)
		return
	}

	cmdCtx.Catalog = cat
	cmdCtx.Table = table
	rl.Config.AutoComplete = newMacroCompleter(table)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Reloaded: %d macros\n", table.Len())
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help             Show this help message
  .list             List all macros in the table
  .show <id>        Show a macro by name or address
  .body <id>        Print a macro's template body tree
  .reload           Re-read the catalog directory
  .quit / .exit     Exit the REPL

Tips:
  - A bare name or address is shorthand for .show
  - Use arrow keys to navigate history
  - Tab completion works for macro names
`
	_, _ = fmt.Fprintln(w, help)
}

// newMacroCompleter creates a readline completer for macro names.
func newMacroCompleter(table *macro.Table) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	var names []readline.PrefixCompleterInterface
	for _, ref := range table.AllMacros() {
		if name, ok := ref.Name(); ok {
			items = append(items, readline.PcItem(name))
			names = append(names, readline.PcItem(name))
		}
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".list"),
		readline.PcItem(".show", names...),
		readline.PcItem(".body", names...),
		readline.PcItem(".reload"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
