package importrun

import "strings"

type FieldKind string

const (
	FieldDirect   FieldKind = "direct"
	FieldRelation FieldKind = "relation"
)

// ParseFieldKind accepts "relation" and the catalog's "manyToOneRelation" type name
// as relation fields. Everything else is read directly.
func ParseFieldKind(kind string) FieldKind {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "relation", "manytoonerelation":
		return FieldRelation
	default:
		return FieldDirect
	}
}

// FieldRef names a source field and, for relation fields, the field read on the
// referenced object.
type FieldRef struct {
	Name   string
	Kind   FieldKind
	Nested string
}

func (f FieldRef) IsSet() bool {
	return strings.TrimSpace(f.Name) != ""
}

func (f FieldRef) IsRelation() bool {
	return f.Kind == FieldRelation
}

type FieldMapping struct {
	GTIN        FieldRef
	Brand       FieldRef
	ProductCode FieldRef
}

func (m FieldMapping) HasGTIN() bool {
	return m.GTIN.IsSet()
}

func (m FieldMapping) HasBrandProductCode() bool {
	return m.Brand.IsSet() && m.ProductCode.IsSet()
}

// Validate requires a GTIN field or a complete brand + product code pair.
func (m FieldMapping) Validate() error {
	if m.HasGTIN() || m.HasBrandProductCode() {
		return nil
	}
	return ErrInvalidMapping
}

// Canonical spreadsheet column names, matched case-insensitively.
const (
	ColumnGTIN        = "GTIN"
	ColumnEAN         = "EAN"
	ColumnProductCode = "PRODUCT CODE"
	ColumnBrandName   = "BRAND NAME"
)

// SpreadsheetMapping is the mapping applied to normalized spreadsheet rows. The EAN
// column is folded into GTIN by the reader.
var SpreadsheetMapping = FieldMapping{
	GTIN:        FieldRef{Name: ColumnGTIN, Kind: FieldDirect},
	Brand:       FieldRef{Name: ColumnBrandName, Kind: FieldDirect},
	ProductCode: FieldRef{Name: ColumnProductCode, Kind: FieldDirect},
}

// HeaderIndex maps a header row to canonical column positions. Unknown columns are
// ignored; the first occurrence of a column wins.
func HeaderIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, raw := range header {
		name := strings.ToUpper(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		switch name {
		case ColumnGTIN, ColumnEAN, ColumnProductCode, ColumnBrandName:
			if _, seen := index[name]; !seen {
				index[name] = i
			}
		}
	}
	return index
}

// ValidHeader reports whether the indexed header can produce lookup keys.
func ValidHeader(index map[string]int) bool {
	if _, ok := index[ColumnGTIN]; ok {
		return true
	}
	if _, ok := index[ColumnEAN]; ok {
		return true
	}
	_, hasCode := index[ColumnProductCode]
	_, hasBrand := index[ColumnBrandName]
	return hasCode && hasBrand
}
