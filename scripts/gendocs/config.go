package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// generateConfigDocs generates the configuration reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	// Create output directory
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Generate configuration reference
	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "project", "serve"
}

// getConfigSchema returns the configuration schema definition.
// This is based on internal/cli/config/types.go Config and ServeConfig.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		// Project settings
		{Name: "catalog_dir", Type: "string", Default: "macros", Description: "Path to the macro catalog directory", Category: "project"},
		{Name: "output", Type: "string", Default: "auto", Description: "Output format: auto, text, markdown, json, yaml", Category: "project"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Enable debug logging on stderr", Category: "project"},

		// API server settings
		{Name: "serve.addr", Type: "string", Default: ":7341", Description: "API server listen address", Category: "serve"},
		{Name: "serve.watch", Type: "bool", Default: "true", Description: "Reload the catalog when files under catalog_dir change", Category: "serve"},
	}
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	// Frontmatter
	w.Frontmatter("Configuration", "Leapion configuration reference")
	w.GeneratedMarker()

	// Title and intro
	w.Header(1, "Configuration")
	w.Paragraph("Leapion is configured via `leapion.yaml` (or `leapion.yml`) in your project root. All settings are optional; every key has a default.")

	fields := getConfigSchema()
	headers := []string{"Field", "Type", "Default", "Description"}

	// Project settings section
	w.Header(2, "Project Settings")
	w.Paragraph("Catalog location and output behavior:")

	var projectRows [][]string
	for _, f := range fields {
		if f.Category == "project" {
			projectRows = append(projectRows, []string{
				InlineCode(f.Name),
				f.Type,
				InlineCode(f.Default),
				f.Description,
			})
		}
	}
	w.Table(headers, projectRows)

	w.Paragraph("A relative `catalog_dir` resolves against the directory holding the config file, not the working directory the command runs from.")

	// Serve settings section
	w.Header(2, "Server Settings")
	w.Paragraph("Settings for `leapion serve`, nested under the `serve` key:")

	var serveRows [][]string
	for _, f := range fields {
		if f.Category == "serve" {
			serveRows = append(serveRows, []string{
				InlineCode(f.Name),
				f.Type,
				InlineCode(f.Default),
				f.Description,
			})
		}
	}
	w.Table(headers, serveRows)

	// Full example
	w.Header(2, "Full Configuration Example")
	w.CodeBlock("yaml", `# Leapion Configuration
# leapion.yaml

# Directory of .star catalog files
catalog_dir: macros

# Output format: auto, text, markdown, json, yaml
output: auto

# API server
serve:
  addr: ":7341"
  watch: true`)

	// Environment variables
	w.Header(2, "Environment Variables")
	w.Paragraph("Every key can be set from the environment with the `LEAPION_` prefix. A double underscore addresses a nested key:")
	w.CodeBlock("bash", `export LEAPION_CATALOG_DIR=./definitions
export LEAPION_OUTPUT=json
export LEAPION_SERVE__ADDR=:8100`)

	// Precedence
	w.Header(2, "Precedence")
	w.Paragraph("Values are merged from lowest to highest precedence: built-in defaults, then the config file, then environment variables, then command-line flags.")

	// Write file
	filename := filepath.Join(outDir, "configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}
