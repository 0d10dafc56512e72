package tabular

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"icecatimport/internal/errs"
	"icecatimport/internal/ports"
)

// Reader opens spreadsheet and csv files. Relative paths are resolved against root.
type Reader struct {
	root string
}

var _ ports.TabularReader = (*Reader)(nil)

func NewReader(root string) *Reader {
	return &Reader{root: strings.TrimSpace(root)}
}

func (r *Reader) Exists(path string) bool {
	resolved := r.resolve(path)
	if resolved == "" {
		return false
	}
	info, err := os.Stat(resolved)
	return err == nil && info.Mode().IsRegular()
}

// Open reads the header and counts the non-blank data rows in one pass. Rows reopens
// the underlying scanner on every call.
func (r *Reader) Open(ctx context.Context, path string) (ports.Table, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if !r.Exists(path) {
		return nil, fmt.Errorf("%w: %s", ports.ErrTableNotFound, path)
	}

	resolved := r.resolve(path)
	var (
		open    func() (scanner, error)
		closeFn func() error
	)
	switch ext := strings.ToLower(filepath.Ext(resolved)); ext {
	case ".csv":
		open = func() (scanner, error) { return openCSV(resolved) }
		closeFn = func() error { return nil }
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		book, err := openWorkbook(resolved)
		if err != nil {
			return nil, err
		}
		open = book.scanner
		closeFn = book.Close
	default:
		return nil, fmt.Errorf("unsupported tabular file type %q", ext)
	}

	t := &table{open: open, closeFn: closeFn}
	if err := t.load(); err != nil {
		_ = closeFn()
		return nil, errs.Wrapf(err, "read %s", resolved)
	}
	return t, nil
}

func (r *Reader) resolve(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) || r.root == "" {
		return filepath.Clean(trimmed)
	}
	return filepath.Join(r.root, trimmed)
}

// scanner yields raw records with their 1-based physical line; Scan returns io.EOF
// after the last one.
type scanner interface {
	Scan() ([]string, int, error)
	Close() error
}

type table struct {
	open    func() (scanner, error)
	closeFn func() error
	header  []string
	count   int
}

func (t *table) Header() []string {
	return append([]string(nil), t.header...)
}

func (t *table) Count() int {
	return t.count
}

func (t *table) Close() error {
	return t.closeFn()
}

func (t *table) load() error {
	header := true
	return t.each(func(cells []string, _ int) bool {
		if header {
			t.header = cells
			header = false
			return true
		}
		if !blank(cells) {
			t.count++
		}
		return true
	})
}

// Rows numbers data rows by their physical position, the first line after the header
// being row 1. Blank rows are skipped but keep their place in the numbering.
func (t *table) Rows(_ context.Context) iter.Seq2[ports.TabularRow, error] {
	return func(yield func(ports.TabularRow, error) bool) {
		headerLine := 0
		lastLine := 0
		stopped := false
		err := t.each(func(cells []string, line int) bool {
			lastLine = line
			if headerLine == 0 {
				headerLine = line
				return true
			}
			if blank(cells) {
				return true
			}
			if !yield(ports.TabularRow{Number: line - headerLine, Cells: cells}, nil) {
				stopped = true
				return false
			}
			return true
		})
		if err != nil && !stopped {
			yield(ports.TabularRow{Number: lastLine + 1 - headerLine}, err)
		}
	}
}

func (t *table) each(fn func(cells []string, line int) bool) error {
	s, err := t.open()
	if err != nil {
		return err
	}
	defer s.Close()

	for {
		cells, line, err := s.Scan()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if !fn(cells, line) {
			return nil
		}
	}
}

func blank(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
