package importrun

import (
	"errors"
	"testing"
)

func TestFieldMappingValidate(t *testing.T) {
	cases := []struct {
		name    string
		mapping FieldMapping
		wantErr bool
	}{
		{name: "gtin only", mapping: FieldMapping{GTIN: FieldRef{Name: "ean"}}},
		{name: "brand and product code", mapping: FieldMapping{Brand: FieldRef{Name: "brand"}, ProductCode: FieldRef{Name: "mpn"}}},
		{name: "brand only", mapping: FieldMapping{Brand: FieldRef{Name: "brand"}}, wantErr: true},
		{name: "product code only", mapping: FieldMapping{ProductCode: FieldRef{Name: "mpn"}}, wantErr: true},
		{name: "blank names", mapping: FieldMapping{GTIN: FieldRef{Name: "  "}}, wantErr: true},
		{name: "empty", mapping: FieldMapping{}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.mapping.Validate()
			if tc.wantErr && !errors.Is(err, ErrInvalidMapping) {
				t.Fatalf("Validate() error = %v, want ErrInvalidMapping", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
		})
	}
}

func TestHeaderIndexAndValidity(t *testing.T) {
	cases := []struct {
		name   string
		header []string
		valid  bool
	}{
		{name: "gtin", header: []string{"gtin", "Brand Name"}, valid: true},
		{name: "ean synonym", header: []string{" Ean "}, valid: true},
		{name: "brand and code", header: []string{"Product Code", "BRAND NAME"}, valid: true},
		{name: "code only", header: []string{"PRODUCT CODE", "title"}, valid: false},
		{name: "nothing usable", header: []string{"sku", "name"}, valid: false},
		{name: "empty", header: nil, valid: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidHeader(HeaderIndex(tc.header)); got != tc.valid {
				t.Fatalf("ValidHeader(%v) = %v, want %v", tc.header, got, tc.valid)
			}
		})
	}

	index := HeaderIndex([]string{"name", "GTIN", "gtin"})
	if index[ColumnGTIN] != 1 {
		t.Fatalf("HeaderIndex() GTIN position = %d, want first occurrence 1", index[ColumnGTIN])
	}
}

func TestParseFieldKind(t *testing.T) {
	if ParseFieldKind("manyToOneRelation") != FieldRelation {
		t.Fatalf("manyToOneRelation should be a relation")
	}
	if ParseFieldKind("Relation") != FieldRelation {
		t.Fatalf("relation should be a relation")
	}
	if ParseFieldKind("input") != FieldDirect || ParseFieldKind("") != FieldDirect {
		t.Fatalf("other kinds should be direct")
	}
}

func TestIsValidGTIN(t *testing.T) {
	for _, v := range []string{"0123456789012", " 4006381333931 "} {
		if !IsValidGTIN(v) {
			t.Fatalf("IsValidGTIN(%q) = false", v)
		}
	}
	for _, v := range []string{"", "  ", "12a4", "1.5", "-12"} {
		if IsValidGTIN(v) {
			t.Fatalf("IsValidGTIN(%q) = true", v)
		}
	}
}

func TestShouldReclaim(t *testing.T) {
	if ShouldReclaim(0) || ShouldReclaim(99) || !ShouldReclaim(100) || !ShouldReclaim(300) {
		t.Fatalf("ShouldReclaim boundaries are wrong")
	}
}
