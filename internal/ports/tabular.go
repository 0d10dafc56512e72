package ports

import (
	"context"
	"errors"
	"iter"
)

var ErrTableNotFound = errors.New("tabular file not found")

// TabularRow.Number is the physical position after the header, starting at 1.
type TabularRow struct {
	Number int
	Cells  []string
}

// Table is an opened tabular file. Rows excludes the header and blank rows and may
// be ranged over once per call.
type Table interface {
	Header() []string
	Count() int
	Rows(ctx context.Context) iter.Seq2[TabularRow, error]
	Close() error
}

type TabularReader interface {
	Exists(path string) bool
	Open(ctx context.Context, path string) (Table, error)
}
