package tabular

import (
	"io"

	"github.com/xuri/excelize/v2"

	"icecatimport/internal/errs"
)

// workbook reads the active sheet of an excel workbook.
type workbook struct {
	file  *excelize.File
	sheet string
}

func openWorkbook(path string) (*workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errs.Wrapf(err, "open workbook %s", path)
	}

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		if sheets := f.GetSheetList(); len(sheets) > 0 {
			sheet = sheets[0]
		}
	}
	return &workbook{file: f, sheet: sheet}, nil
}

func (w *workbook) scanner() (scanner, error) {
	rows, err := w.file.Rows(w.sheet)
	if err != nil {
		return nil, errs.Wrapf(err, "iterate sheet %s", w.sheet)
	}
	return &xlsxScanner{rows: rows}, nil
}

func (w *workbook) Close() error {
	return w.file.Close()
}

type xlsxScanner struct {
	rows *excelize.Rows
	line int
}

// Scan relies on Rows.Next visiting rows that have no cells, so line tracks the
// sheet row number.
func (s *xlsxScanner) Scan() ([]string, int, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, 0, err
		}
		return nil, 0, io.EOF
	}
	s.line++
	cells, err := s.rows.Columns()
	if err != nil {
		return nil, 0, err
	}
	return cells, s.line, nil
}

func (s *xlsxScanner) Close() error {
	return s.rows.Close()
}
