package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapion/internal/catalog"
	"github.com/leapstack-labs/leapion/internal/cli/config"
	"github.com/leapstack-labs/leapion/internal/cli/output"
	"github.com/leapstack-labs/leapion/pkg/macro"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Format string // Output format: text, json, yaml
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the macro catalog for problems",
		Long: `Load the macro catalog and report anything that would prevent it from
installing into a macro table: files that fail to execute, invalid
signatures or template bodies, and name collisions with system macros
or other catalog macros.

The command exits non-zero when any problem is found, so it is suitable
for CI pipelines.`,
		Example: `  # Check the catalog
  leapion check

  # Machine-readable report
  leapion check --format json
  leapion check --format yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, yaml")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	var issues []output.CheckIssue
	var entries []output.MacroEntry
	files := make(map[string]bool)

	cat, err := catalog.NewLoader(cfg.CatalogDir, logger).Load(cmd.Context())
	if err != nil {
		issues = append(issues, checkIssueFromError(err))
	}

	if cat != nil {
		table := macro.NewTableWithSystemMacros()
		if err := cat.InstallInto(table); err != nil {
			issues = append(issues, checkIssueFromError(err))
		}
		for _, e := range cat.Entries() {
			files[e.File] = true
			if name, ok := e.Template.Name(); ok {
				if ref, ok := table.MacroWithName(name); ok {
					entries = append(entries, output.NewMacroEntry(ref, e.File))
				}
			}
		}
	}

	result := output.CheckOutput{
		CatalogDir: cfg.CatalogDir,
		Files:      len(files),
		Macros:     entries,
		Issues:     issues,
		OK:         len(issues) == 0,
	}

	switch opts.Format {
	case "json":
		if err := r.JSON(result); err != nil {
			return err
		}
	case "yaml":
		data, err := yaml.Marshal(result)
		if err != nil {
			return err
		}
		r.Printf("%s", data)
	default:
		renderCheckText(r, result)
	}

	if !result.OK {
		return fmt.Errorf("catalog check found %d issue(s)", len(result.Issues))
	}
	return nil
}

func checkIssueFromError(err error) output.CheckIssue {
	var loadErr *catalog.LoadError
	if errors.As(err, &loadErr) {
		return output.CheckIssue{File: loadErr.File, Message: loadErr.Message}
	}
	return output.CheckIssue{Message: err.Error()}
}

func renderCheckText(r *output.Renderer, result output.CheckOutput) {
	r.Header(1, "Catalog check")
	r.Printf("Catalog: %s (%d files, %d macros)\n", result.CatalogDir, result.Files, len(result.Macros))

	for _, e := range result.Macros {
		r.StatusLine(e.Name, "success", e.Signature)
	}
	for _, issue := range result.Issues {
		name := issue.Message
		if issue.File != "" {
			name = issue.File
		}
		r.StatusLine(name, "error", "")
		if issue.File != "" {
			r.Muted("    " + issue.Message)
		}
	}

	r.Println()
	if result.OK {
		r.Success("Catalog is installable")
	} else {
		r.Error(fmt.Sprintf("%d issue(s) found", len(result.Issues)))
	}
}
