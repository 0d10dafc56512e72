package importrun

import (
	"fmt"
	"strings"
)

type keyKind uint8

const (
	keyNone keyKind = iota
	keyGTIN
	keyBrandProductCode
)

// IdentityKey is the lookup key sent to the enrichment API: either a GTIN or a
// brand + product code pair. The zero value is not a valid key.
type IdentityKey struct {
	kind        keyKind
	gtin        string
	brand       string
	productCode string
}

func GTINKey(gtin string) IdentityKey {
	return IdentityKey{kind: keyGTIN, gtin: strings.TrimSpace(gtin)}
}

func BrandProductCodeKey(brand, productCode string) IdentityKey {
	return IdentityKey{
		kind:        keyBrandProductCode,
		brand:       strings.TrimSpace(brand),
		productCode: strings.TrimSpace(productCode),
	}
}

func (k IdentityKey) IsGTIN() bool             { return k.kind == keyGTIN }
func (k IdentityKey) IsBrandProductCode() bool { return k.kind == keyBrandProductCode }
func (k IdentityKey) Valid() bool              { return k.kind != keyNone }
func (k IdentityKey) GTIN() string             { return k.gtin }
func (k IdentityKey) Brand() string            { return k.brand }
func (k IdentityKey) ProductCode() string      { return k.productCode }

func (k IdentityKey) String() string {
	switch k.kind {
	case keyGTIN:
		return "gtin:" + k.gtin
	case keyBrandProductCode:
		return fmt.Sprintf("brand:%s/product_code:%s", k.brand, k.productCode)
	default:
		return "none"
	}
}

// IsValidGTIN accepts non-empty, all-digit values.
func IsValidGTIN(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SourceRecord is one unit read from a source. Spreadsheet rows carry Values keyed by
// canonical column name; catalog objects carry OwnerID instead.
type SourceRecord struct {
	Row     int
	Values  map[string]string
	OwnerID *uint64
}

func (r SourceRecord) Value(column string) string {
	if r.Values == nil {
		return ""
	}
	return strings.TrimSpace(r.Values[column])
}

// FromCatalog reports whether the record wraps a catalog object.
func (r SourceRecord) FromCatalog() bool {
	return r.OwnerID != nil
}
