package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leapion/internal/cli/output"
	"github.com/leapstack-labs/leapion/pkg/macro"
)

var titleCaser = cases.Title(language.English)

// kindTitle renders a macro kind for human output: "make_string"
// becomes "Make String".
func kindTitle(k macro.Kind) string {
	return titleCaser.String(strings.ReplaceAll(k.String(), "_", " "))
}

// renderEntriesTable writes macro entries as a styled table.
func renderEntriesTable(r *output.Renderer, entries []output.MacroEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Address", "Name", "Kind", "Signature", "Lazy"})

	for _, e := range entries {
		name := e.Name
		if name == "" {
			name = "-"
		}
		lazy := ""
		if e.Analysis.LazilyEvaluable {
			lazy = "yes"
		}
		t.AppendRow(table.Row{e.Address, name, e.Kind, e.Signature, lazy})
	}

	t.Render()
	r.Printf("(%d macros)\n", len(entries))
}

// renderEntriesMarkdown writes macro entries as a markdown table.
func renderEntriesMarkdown(r *output.Renderer, entries []output.MacroEntry) {
	r.Println("| Address | Name | Kind | Signature | Lazy |")
	r.Println("| --- | --- | --- | --- | --- |")
	for _, e := range entries {
		name := e.Name
		if name == "" {
			name = "-"
		}
		lazy := ""
		if e.Analysis.LazilyEvaluable {
			lazy = "yes"
		}
		r.Printf("| %d | %s | %s | `%s` | %s |\n", e.Address, name, e.Kind, e.Signature, lazy)
	}
	r.Println()
	r.Printf("(%d macros)\n", len(entries))
}

// renderEntriesJSON writes macro entries as a JSON list with summary.
func renderEntriesJSON(r *output.Renderer, entries []output.MacroEntry) error {
	return r.JSON(output.NewListOutput(entries))
}

// renderEntries dispatches on the renderer's effective mode.
func renderEntries(r *output.Renderer, header string, entries []output.MacroEntry) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return renderEntriesJSON(r, entries)
	case output.ModeYAML:
		return r.YAML(output.NewListOutput(entries))
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, header))
		r.Println()
		renderEntriesMarkdown(r, entries)
	default:
		r.Header(1, header)
		renderEntriesTable(r, entries)
	}
	return nil
}

// renderMacroDetail writes a full description of one macro: identity,
// signature, analysis, and template body.
func renderMacroDetail(r *output.Renderer, ref macro.Ref, file string) error {
	entry := output.NewMacroEntry(ref, file)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(entry)
	case output.ModeYAML:
		return r.YAML(entry)
	}

	markdown := r.EffectiveMode() == output.ModeMarkdown

	title := entry.Name
	if title == "" {
		title = fmt.Sprintf("macro %d", entry.Address)
	}
	if markdown {
		r.Println(output.FormatHeader(1, title))
		r.Println()
		r.Println(output.FormatKeyValue("Address", fmt.Sprintf("%d", entry.Address)))
		r.Println(output.FormatKeyValue("Kind", kindTitle(ref.Kind())))
		r.Println(output.FormatKeyValue("Signature", "`"+entry.Signature+"`"))
		if entry.System {
			r.Println(output.FormatKeyValue("Origin", "system"))
		} else if file != "" {
			r.Println(output.FormatKeyValue("File", file))
		}
	} else {
		r.Header(1, title)
		r.Printf("Address:   %d\n", entry.Address)
		r.Printf("Kind:      %s\n", kindTitle(ref.Kind()))
		r.Printf("Signature: %s\n", entry.Signature)
		if entry.System {
			r.Println("Origin:    system")
		} else if file != "" {
			r.Printf("File:      %s\n", file)
		}
	}

	renderAnalysis(r, entry.Analysis, markdown)

	if body, ok := ref.TemplateBody(); ok {
		lines := bodyTreeLines(body, ref.Signature())
		if markdown {
			r.Println()
			r.Println(output.FormatHeader(2, "Template body"))
			r.Println()
			r.Println(output.FormatCodeBlock(strings.Join(lines, "\n"), ""))
		} else {
			r.Println()
			r.Println("Template body:")
			for _, line := range lines {
				r.Println("  " + line)
			}
		}
	}

	return nil
}

func renderAnalysis(r *output.Renderer, a output.AnalysisInfo, markdown bool) {
	var traits []string
	if a.MustProduceExactlyOneValue {
		traits = append(traits, "exactly one value")
	}
	if a.CouldProduceSystemValue {
		traits = append(traits, "could produce a system value")
	}
	if a.LazilyEvaluable {
		traits = append(traits, "lazily evaluable at top level")
	}
	if len(traits) == 0 {
		traits = append(traits, "no static guarantees")
	}

	line := strings.Join(traits, ", ")
	if markdown {
		r.Println(output.FormatKeyValue("Expansion", line))
		if a.Singleton != nil {
			r.Println(output.FormatKeyValue("Produces", singletonLabel(*a.Singleton)))
		}
		return
	}
	r.Printf("Expansion: %s\n", line)
	if a.Singleton != nil {
		r.Printf("Produces:  %s\n", singletonLabel(*a.Singleton))
	}
}

func singletonLabel(s output.SingletonInfo) string {
	label := s.Type
	if s.IsNull {
		label = "null." + s.Type
	}
	if s.Annotations > 0 {
		label += fmt.Sprintf(" with %d annotation(s)", s.Annotations)
	}
	return label
}

// bodyTreeLines renders a template body as an indented tree, one line
// per expression, using each expression's subtree range to find its
// children.
func bodyTreeLines(body *macro.TemplateBody, sig macro.Signature) []string {
	var lines []string
	for _, root := range body.Roots() {
		appendBodyLines(&lines, body, sig, root, 0)
	}
	return lines
}

// appendBodyLines walks one expression subtree and returns the index
// just past it.
func appendBodyLines(lines *[]string, body *macro.TemplateBody, sig macro.Signature, index, depth int) int {
	expr := body.ExprAt(index)
	indent := strings.Repeat("  ", depth)

	if vi, ok := expr.VariableIndex(); ok {
		name := fmt.Sprintf("$%d", vi)
		if vi < sig.Len() {
			name = sig.At(vi).Name()
		}
		*lines = append(*lines, fmt.Sprintf("%svariable %s", indent, name))
		return index + 1
	}

	elem, _ := expr.Element()
	label := elem.Value().String()
	if elem.HasAnnotations() {
		annotations := body.AnnotationsInRange(elem.AnnotationsRange())
		var parts []string
		for _, a := range annotations {
			parts = append(parts, a.Text())
		}
		label = strings.Join(parts, "::") + "::" + label
	}
	*lines = append(*lines, indent+label)

	if elem.Value().IsContainer() && !elem.Value().IsNull() {
		end := expr.SubtreeRange().End()
		next := index + 1
		for next < end {
			next = appendBodyLines(lines, body, sig, next, depth+1)
		}
		return end
	}
	return index + 1
}
