// Package catalog loads user macro definitions from .star files and
// installs them into macro tables. Definition files are ordinary Starlark
// with a small set of predeclared builtins (macro, param, sexp, seq,
// symbol, null, var, annotated); executing a file registers the macros it
// declares.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapion/pkg/macro"
)

// Entry is one declared macro together with the file that declared it.
type Entry struct {
	Template *macro.Template
	File     string
}

// Catalog is the ordered set of macro definitions loaded from a catalog
// directory. Order is load order: files in lexical path order,
// declarations in execution order within a file. Installing into a table
// assigns addresses in exactly that order, so addresses are reproducible
// across runs.
type Catalog struct {
	entries []Entry
}

// Len returns the number of declared macros.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the declarations in load order.
func (c *Catalog) Entries() []Entry {
	entries := make([]Entry, len(c.entries))
	copy(entries, c.entries)
	return entries
}

// InstallInto appends every declared macro to the table in load order.
// A name collision aborts the install; entries appended before the
// collision remain, mirroring the table's merge semantics.
func (c *Catalog) InstallInto(table *macro.Table) error {
	for _, e := range c.entries {
		if _, err := table.AddMacro(e.Template); err != nil {
			return fmt.Errorf("installing macros from %s: %w", filepath.Base(e.File), err)
		}
	}
	return nil
}

// Loader scans a directory for .star files and executes them to collect
// macro declarations.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a loader for the given catalog directory.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{dir: dir, logger: logger}
}

// Load executes every .star file in the catalog directory and returns the
// collected declarations. Files are executed concurrently; the resulting
// catalog preserves lexical file order regardless. A missing directory is
// not an error, it just yields an empty catalog.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	info, err := os.Stat(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return &Catalog{}, nil
		}
		return nil, fmt.Errorf("failed to access catalog directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog path is not a directory: %s", l.dir)
	}

	files, err := filepath.Glob(filepath.Join(l.dir, "*.star"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan catalog directory: %w", err)
	}

	perFile := make([][]Entry, len(files))
	eg, ctx := errgroup.WithContext(ctx)
	for i, file := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entries, err := loadFile(file)
			if err != nil {
				return err
			}
			perFile[i] = entries
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	catalog := &Catalog{}
	for i, entries := range perFile {
		l.logger.Debug("loaded macro file",
			"file", filepath.Base(files[i]),
			"macros", len(entries))
		catalog.entries = append(catalog.entries, entries...)
	}
	l.logger.Info("catalog loaded",
		"dir", l.dir,
		"files", len(files),
		"macros", catalog.Len())
	return catalog, nil
}

// LoadError reports a catalog file that could not be read or executed.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("catalog/%s: %s", filepath.Base(e.File), e.Message)
}
