// Package tableimport reads tabular data from delimited text files and
// spreadsheets and converts it to tables ready for rendering.
package tableimport

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"texed/common"
	"texed/latex"
)

// Sheet is a single named table of a workbook.
type Sheet struct {
	Name  string
	Table *latex.Table
}

// Workbook is ordered set of tables read from a single source.
type Workbook struct {
	Sheets []Sheet
}

// Names returns sheet names in source order.
func (w *Workbook) Names() []string {
	names := make([]string, 0, len(w.Sheets))
	for _, s := range w.Sheets {
		names = append(names, s.Name)
	}
	return names
}

// Sheet returns table of the named sheet. Empty name selects first sheet.
func (w *Workbook) Sheet(name string) (*latex.Table, error) {
	if len(w.Sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets: %w", common.ErrNotFound)
	}
	if name == "" {
		return w.Sheets[0].Table, nil
	}
	for _, s := range w.Sheets {
		if s.Name == name {
			return s.Table, nil
		}
	}
	return nil, fmt.Errorf("sheet %q, try [%s]: %w", name, strings.Join(w.Names(), ", "), common.ErrNotFound)
}

// openSource is replaced in tests.
var openSource = func(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// ReadFile reads table source selecting format by file extension.
func ReadFile(path string, opts Options) (wb *Workbook, err error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		f, oerr := openSource(path)
		if oerr != nil {
			return nil, fmt.Errorf("unable to open table source: %w", oerr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				err = multierr.Append(err, fmt.Errorf("unable to close table source: %w", cerr))
			}
		}()
		return ReadCSV(f, opts)
	case ".xlsx":
		return ReadXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported table source %q: %w", ext, common.ErrMalformedTableSource)
	}
}

// tableFromGrid uses first row as header, the rest becomes table body.
// Rows shorter than header are padded.
func tableFromGrid(grid [][]string) *latex.Table {
	t := &latex.Table{}
	if len(grid) == 0 {
		return t
	}
	t.Columns = grid[0]
	for _, row := range grid[1:] {
		if len(row) < len(t.Columns) {
			row = append(row, make([]string, len(t.Columns)-len(row))...)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
