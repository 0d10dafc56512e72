package ports

import (
	"context"
	"errors"
	"time"
)

var (
	ErrObjectNotFound = errors.New("catalog object not found")
	ErrUnknownField   = errors.New("field is not defined on catalog class")
)

// FieldValue holds either a plain value, per-language values, or a relation to another object.
type FieldValue struct {
	Value      string            `json:"value,omitempty"`
	Localized  map[string]string `json:"localized,omitempty"`
	RelationID *uint64           `json:"relation_id,omitempty"`
}

type CatalogEntity struct {
	ObjectID  uint64
	ClassID   string
	Key       string
	CreatedAt time.Time
	Fields    map[string]FieldValue
}

type CatalogFilter struct {
	ClassID      string
	CreatedAfter *time.Time
}

// ProductWrite is the enrichment payload persisted for one catalog id and language.
type ProductWrite struct {
	CatalogID     string
	Language      string
	OriginalGTIN  string
	DataEncoded   string
	OwnerObjectID *uint64
	FolderPath    string
	UserID        string
	StoreID       string
	JobID         string
}

type CatalogStore interface {
	ClassExists(ctx context.Context, classID string) (bool, error)
	CountObjects(ctx context.Context, filter CatalogFilter) (int64, error)
	ListObjectIDs(ctx context.Context, filter CatalogFilter) ([]uint64, error)
	GetObject(ctx context.Context, objectID uint64) (CatalogEntity, error)
	EnsureFolders(ctx context.Context, paths ...string) error
	// UpsertProduct returns created=true when no product existed for (CatalogID, Language).
	UpsertProduct(ctx context.Context, write ProductWrite) (created bool, err error)
}

// FieldAccessor reads dynamically named fields of catalog objects.
type FieldAccessor interface {
	ReadDirect(ctx context.Context, entity CatalogEntity, field string, language string) (string, error)
	ReadViaRelation(ctx context.Context, entity CatalogEntity, field string, nested string, language string) (string, error)
}
