package tabular

import (
	"bufio"
	"encoding/csv"
	"os"

	"icecatimport/internal/errs"
)

type csvScanner struct {
	file   *os.File
	reader *csv.Reader
}

func openCSV(path string) (scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrapf(err, "open csv %s", path)
	}

	r := csv.NewReader(stripUTF8BOM(bufio.NewReader(f)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return &csvScanner{file: f, reader: r}, nil
}

func (s *csvScanner) Scan() ([]string, int, error) {
	record, err := s.reader.Read()
	if err != nil {
		return nil, 0, err
	}
	line, _ := s.reader.FieldPos(0)
	return record, line, nil
}

func (s *csvScanner) Close() error {
	return s.file.Close()
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}
