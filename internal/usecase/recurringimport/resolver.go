package recurringimport

import (
	"context"
	"fmt"
	"strings"

	"icecatimport/internal/domain/importrun"
	"icecatimport/internal/ports"
)

// KeyResolver derives the lookup key of one record for one language.
type KeyResolver struct {
	fields ports.FieldAccessor
}

func NewKeyResolver(fields ports.FieldAccessor) KeyResolver {
	return KeyResolver{fields: fields}
}

// Resolve tries the GTIN field first and falls back to brand + product code when the
// GTIN is absent or not numeric. Field read failures are returned as is, without fallback.
func (r KeyResolver) Resolve(ctx context.Context, rec sourceItem, language string, mapping importrun.FieldMapping) (importrun.IdentityKey, error) {
	if mapping.HasGTIN() {
		gtin, err := r.read(ctx, rec, mapping.GTIN, language)
		if err != nil {
			return importrun.IdentityKey{}, fmt.Errorf("gtin: %w", err)
		}
		if importrun.IsValidGTIN(gtin) {
			return importrun.GTINKey(gtin), nil
		}
	}

	if mapping.HasBrandProductCode() {
		brand, err := r.read(ctx, rec, mapping.Brand, language)
		if err != nil {
			return importrun.IdentityKey{}, fmt.Errorf("brand: %w", err)
		}
		productCode, err := r.read(ctx, rec, mapping.ProductCode, language)
		if err != nil {
			return importrun.IdentityKey{}, fmt.Errorf("product code: %w", err)
		}
		key := importrun.BrandProductCodeKey(brand, productCode)
		if key.Brand() != "" && key.ProductCode() != "" {
			return key, nil
		}
	}

	return importrun.IdentityKey{}, importrun.ErrNoLookupKey
}

func (r KeyResolver) read(ctx context.Context, rec sourceItem, ref importrun.FieldRef, language string) (string, error) {
	if !rec.record.FromCatalog() {
		return rec.record.Value(ref.Name), nil
	}
	if rec.entity == nil {
		return "", fmt.Errorf("%w: object %d is not loaded", importrun.ErrFieldReadFailed, *rec.record.OwnerID)
	}
	if r.fields == nil {
		return "", fmt.Errorf("%w: no field accessor", importrun.ErrFieldReadFailed)
	}

	if ref.IsRelation() {
		if strings.TrimSpace(ref.Nested) == "" {
			return "", fmt.Errorf("%w for %s", importrun.ErrMissingReferenceMapping, ref.Name)
		}
		value, err := r.fields.ReadViaRelation(ctx, *rec.entity, ref.Name, ref.Nested, language)
		if err != nil {
			return "", fmt.Errorf("%w: %s.%s: %v", importrun.ErrReferenceResolutionFailed, ref.Name, ref.Nested, err)
		}
		return value, nil
	}

	value, err := r.fields.ReadDirect(ctx, *rec.entity, ref.Name, language)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", importrun.ErrFieldReadFailed, ref.Name, err)
	}
	return value, nil
}
