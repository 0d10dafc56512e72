package recurringimport

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"icecatimport/internal/domain/importrun"
	"icecatimport/internal/errs"
	"icecatimport/internal/ports"
)

type sourceItem struct {
	record importrun.SourceRecord
	entity *ports.CatalogEntity
}

// label is the record prefix used in per-pair diagnostics.
func (s sourceItem) label() string {
	if s.record.OwnerID != nil {
		return fmt.Sprintf("OBJECT ID %d", *s.record.OwnerID)
	}
	return fmt.Sprintf("ROW %d", s.record.Row)
}

// recordSource is a validated, one-pass sequence of records. A yielded error is
// scoped to that record; the sequence decides whether to continue after it.
type recordSource interface {
	Kind() string
	Count() int
	Mapping() importrun.FieldMapping
	Records(ctx context.Context) iter.Seq2[sourceItem, error]
	Close() error
}

type spreadsheetSource struct {
	table ports.Table
	index map[string]int
}

func newSpreadsheetSource(table ports.Table) (*spreadsheetSource, error) {
	index := importrun.HeaderIndex(table.Header())
	if !importrun.ValidHeader(index) {
		return nil, importrun.ErrInvalidColumns
	}
	return &spreadsheetSource{table: table, index: index}, nil
}

func (s *spreadsheetSource) Kind() string { return "spreadsheet" }

func (s *spreadsheetSource) Count() int { return s.table.Count() }

func (s *spreadsheetSource) Mapping() importrun.FieldMapping { return importrun.SpreadsheetMapping }

func (s *spreadsheetSource) Close() error { return s.table.Close() }

// Records stops after the first read error.
func (s *spreadsheetSource) Records(ctx context.Context) iter.Seq2[sourceItem, error] {
	return func(yield func(sourceItem, error) bool) {
		for row, err := range s.table.Rows(ctx) {
			if err != nil {
				yield(sourceItem{record: importrun.SourceRecord{Row: row.Number}}, errs.Wrap(err, "read spreadsheet row"))
				return
			}
			if !yield(sourceItem{record: s.record(row)}, nil) {
				return
			}
		}
	}
}

// record folds EAN into GTIN when the GTIN cell is empty.
func (s *spreadsheetSource) record(row ports.TabularRow) importrun.SourceRecord {
	cell := func(column string) string {
		i, ok := s.index[column]
		if !ok || i >= len(row.Cells) {
			return ""
		}
		return row.Cells[i]
	}

	gtin := cell(importrun.ColumnGTIN)
	if strings.TrimSpace(gtin) == "" {
		gtin = cell(importrun.ColumnEAN)
	}

	return importrun.SourceRecord{
		Row: row.Number,
		Values: map[string]string{
			importrun.ColumnGTIN:        gtin,
			importrun.ColumnBrandName:   cell(importrun.ColumnBrandName),
			importrun.ColumnProductCode: cell(importrun.ColumnProductCode),
		},
	}
}

type catalogSource struct {
	catalog ports.CatalogStore
	ids     []uint64
	mapping importrun.FieldMapping
}

func (s *catalogSource) Kind() string { return "catalog" }

func (s *catalogSource) Count() int { return len(s.ids) }

func (s *catalogSource) Mapping() importrun.FieldMapping { return s.mapping }

func (s *catalogSource) Close() error { return nil }

// Records loads objects one at a time and keeps going past objects that fail to load.
func (s *catalogSource) Records(ctx context.Context) iter.Seq2[sourceItem, error] {
	return func(yield func(sourceItem, error) bool) {
		for i, id := range s.ids {
			objectID := id
			item := sourceItem{record: importrun.SourceRecord{Row: i + 1, OwnerID: &objectID}}

			entity, err := s.catalog.GetObject(ctx, objectID)
			if err != nil {
				if !yield(item, errs.Wrapf(err, "load object %d", objectID)) {
					return
				}
				continue
			}

			item.entity = &entity
			if !yield(item, nil) {
				return
			}
		}
	}
}
