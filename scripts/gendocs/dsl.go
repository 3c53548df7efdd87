package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// generateDSLDocs generates catalog DSL documentation.
func generateDSLDocs(outDir string) error {
	log.Printf("Generating DSL docs to %s", outDir)

	// Create output directory
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Read existing catalog-dsl.md and append generated section
	dslPath := filepath.Clean(filepath.Join(outDir, "catalog-dsl.md"))

	// Check if file exists
	existingContent, err := os.ReadFile(dslPath) //#nosec G304 -- path is constructed from trusted config
	if err != nil {
		// File doesn't exist, generate full file
		return generateFullDSLDoc(dslPath)
	}

	// File exists, check if it already has generated section
	content := string(existingContent)
	if strings.Contains(content, generatedHeader) {
		// Replace existing generated section
		return updateDSLDoc(dslPath, content)
	}

	// Append generated section
	return appendDSLDoc(dslPath, content)
}

// BuiltinArg represents an argument of a DSL builtin.
type BuiltinArg struct {
	Name        string
	Type        string
	Description string
}

// Builtin represents a function predeclared in catalog files.
type Builtin struct {
	Name        string
	Signature   string
	Description string
	Args        []BuiltinArg
}

// getDSLSchema returns the catalog DSL schema.
// Based on internal/catalog/dsl.go builtins.
func getDSLSchema() []Builtin {
	return []Builtin{
		{
			Name:        "macro",
			Signature:   `macro(name, body, params=[])`,
			Description: "Declares a template macro and registers it with the catalog. The body is a scalar or a node built from the other builtins.",
			Args: []BuiltinArg{
				{Name: "name", Type: "string", Description: "Macro name, must be unique across the catalog"},
				{Name: "body", Type: "scalar or node", Description: "Template body expression"},
				{Name: "params", Type: "list of param(...)", Description: "Signature parameters, in declaration order"},
			},
		},
		{
			Name:        "param",
			Signature:   `param(name, cardinality="!", encoding="tagged", rest=False)`,
			Description: "Declares one signature parameter.",
			Args: []BuiltinArg{
				{Name: "name", Type: "string", Description: "Parameter name, referenced from the body with var()"},
				{Name: "cardinality", Type: "string", Description: `One of "!", "?", "*", "+" or the spelled-out forms exactly-one, zero-or-one, zero-or-more, one-or-more`},
				{Name: "encoding", Type: "string", Description: `Argument encoding: "tagged" (default) or "flex_uint"`},
				{Name: "rest", Type: "bool", Description: "Marks the final parameter as consuming all remaining arguments"},
			},
		},
		{
			Name:        "sexp",
			Signature:   `sexp(*children)`,
			Description: "Builds an S-expression node from its children.",
			Args: []BuiltinArg{
				{Name: "children", Type: "scalars or nodes", Description: "Child expressions, in order"},
			},
		},
		{
			Name:        "seq",
			Signature:   `seq(*children)`,
			Description: "Builds a list node from its children.",
			Args: []BuiltinArg{
				{Name: "children", Type: "scalars or nodes", Description: "Child expressions, in order"},
			},
		},
		{
			Name:        "symbol",
			Signature:   `symbol(text)`,
			Description: "Builds a symbol node. Plain strings build string nodes; symbols need this builtin.",
			Args: []BuiltinArg{
				{Name: "text", Type: "string", Description: "Symbol text"},
			},
		},
		{
			Name:        "null",
			Signature:   `null(type="")`,
			Description: "Builds a null node, optionally typed.",
			Args: []BuiltinArg{
				{Name: "type", Type: "string", Description: "Type name like string, int, or sexp; empty for untyped null"},
			},
		},
		{
			Name:        "var",
			Signature:   `var(name)`,
			Description: "References a signature parameter from the template body. The name must match a declared param().",
			Args: []BuiltinArg{
				{Name: "name", Type: "string", Description: "Parameter name"},
			},
		},
		{
			Name:        "annotated",
			Signature:   `annotated(annotations, value)`,
			Description: "Wraps a node with annotations.",
			Args: []BuiltinArg{
				{Name: "annotations", Type: "list of string", Description: "Annotation texts, outermost first"},
				{Name: "value", Type: "scalar or node", Description: "The annotated expression"},
			},
		},
	}
}

// generateDSLReferenceSection generates the reference section markdown.
func generateDSLReferenceSection() string {
	w := NewMarkdownWriter()

	w.Header(2, "Reference")
	w.GeneratedMarker()

	builtins := getDSLSchema()

	for _, b := range builtins {
		w.Header(3, InlineCode(b.Name))
		w.CodeBlock("python", b.Signature)
		w.Paragraph(b.Description)

		if len(b.Args) > 0 {
			headers := []string{"Argument", "Type", "Description"}
			var rows [][]string
			for _, a := range b.Args {
				rows = append(rows, []string{
					InlineCode(a.Name),
					a.Type,
					cleanDescription(a.Description),
				})
			}
			w.Table(headers, rows)
		}
	}

	// Add usage examples
	w.Header(3, "Usage Examples")
	w.CodeBlock("python", `# A macro with one rest parameter that expands to
# (make_string "hello, " (%who))
macro(
    name = "greet",
    params = [param("who", cardinality = "*", rest = True)],
    body = sexp(symbol("make_string"), "hello, ", var("who")),
)

# An annotated directive body
macro(
    name = "reset_symbols",
    params = [param("symbols", cardinality = "*", rest = True)],
    body = annotated(
        ["$ion_encoding"],
        sexp(
            sexp(symbol("symbol_table"), seq(var("symbols"))),
            sexp(symbol("macro_table"), symbol("$ion_encoding")),
        ),
    ),
)`)

	return w.String()
}

// generateFullDSLDoc generates a complete catalog-dsl.md file.
func generateFullDSLDoc(filepath string) error {
	w := NewMarkdownWriter()

	// Frontmatter
	w.Frontmatter("Catalog DSL", "Builtins available in Leapion catalog files")
	w.GeneratedMarker()

	// Title and intro
	w.Header(1, "Catalog DSL")
	w.Paragraph("Macro catalogs are `.star` files evaluated with a small set of predeclared builtins. Each top-level `macro()` call registers one macro; the other builtins construct signature parameters and template body nodes.")

	// Overview table
	w.Header(2, "Available Builtins")
	headers := []string{"Builtin", "Description"}
	rows := [][]string{
		{InlineCode("macro()"), "Declare and register a macro"},
		{InlineCode("param()"), "Declare a signature parameter"},
		{InlineCode("sexp()"), "S-expression body node"},
		{InlineCode("seq()"), "List body node"},
		{InlineCode("symbol()"), "Symbol body node"},
		{InlineCode("null()"), "Typed or untyped null node"},
		{InlineCode("var()"), "Reference a parameter from the body"},
		{InlineCode("annotated()"), "Attach annotations to a node"},
	}
	w.Table(headers, rows)

	// Reference section
	w.Text(generateDSLReferenceSection())

	return os.WriteFile(filepath, w.Bytes(), 0600)
}

// updateDSLDoc updates the generated section in an existing file.
func updateDSLDoc(filepath, content string) error {
	// Find the start of the generated section
	markerIdx := strings.Index(content, "## Reference")
	if markerIdx == -1 {
		// No Reference section, append
		return appendDSLDoc(filepath, content)
	}

	// Keep everything before Reference section and append new generated content
	newContent := strings.TrimSpace(content[:markerIdx]) + "\n\n" + generateDSLReferenceSection()

	return os.WriteFile(filepath, []byte(newContent), 0600)
}

// appendDSLDoc appends the generated reference section to an existing file.
func appendDSLDoc(filepath, content string) error {
	newContent := strings.TrimSpace(content) + "\n\n" + generateDSLReferenceSection()
	return os.WriteFile(filepath, []byte(newContent), 0600)
}
