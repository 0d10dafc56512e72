package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"icecatimport/internal/errs"
	"icecatimport/internal/infrastructure/persistence/sqlite/model"
	"icecatimport/internal/ports"
)

// CatalogRepository stores catalog classes, objects, folders and enriched products.
type CatalogRepository struct {
	db *gorm.DB
}

var (
	_ ports.CatalogStore  = (*CatalogRepository)(nil)
	_ ports.FieldAccessor = (*CatalogRepository)(nil)
)

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreateClass(ctx context.Context, classID string, name string, fields []string) error {
	classID = strings.TrimSpace(classID)
	if classID == "" {
		return errors.New("class id is required")
	}

	encoded, err := json.Marshal(fields)
	if err != nil {
		return errs.Wrap(err, "encode class fields")
	}

	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	row := model.CatalogClass{ClassID: classID, Name: name, FieldsJSON: string(encoded)}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "class_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "fields_json"}),
	}).Create(&row).Error; err != nil {
		return errs.Wrapf(err, "save class %s", classID)
	}
	return nil
}

// CreateObject inserts entity and returns it with the assigned object id.
func (r *CatalogRepository) CreateObject(ctx context.Context, entity ports.CatalogEntity) (ports.CatalogEntity, error) {
	if strings.TrimSpace(entity.ClassID) == "" {
		return ports.CatalogEntity{}, errors.New("class id is required")
	}
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = time.Now().UTC()
	}
	if entity.Fields == nil {
		entity.Fields = map[string]ports.FieldValue{}
	}

	encoded, err := json.Marshal(entity.Fields)
	if err != nil {
		return ports.CatalogEntity{}, errs.Wrap(err, "encode object fields")
	}

	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.CatalogEntity{}, err
	}

	row := model.CatalogObject{
		ClassID:      entity.ClassID,
		Key:          entity.Key,
		CreationDate: entity.CreatedAt.Unix(),
		FieldsJSON:   string(encoded),
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.CatalogEntity{}, errs.Wrap(err, "insert catalog object")
	}

	entity.ObjectID = row.ObjectID
	return entity, nil
}

func (r *CatalogRepository) ClassExists(ctx context.Context, classID string) (bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return false, err
	}

	var count int64
	if err := db.Model(&model.CatalogClass{}).Where("class_id = ?", strings.TrimSpace(classID)).Count(&count).Error; err != nil {
		return false, errs.Wrapf(err, "query class %s", classID)
	}
	return count > 0, nil
}

func (r *CatalogRepository) CountObjects(ctx context.Context, filter ports.CatalogFilter) (int64, error) {
	query, err := r.objectQuery(ctx, filter)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count catalog objects")
	}
	return count, nil
}

func (r *CatalogRepository) ListObjectIDs(ctx context.Context, filter ports.CatalogFilter) ([]uint64, error) {
	query, err := r.objectQuery(ctx, filter)
	if err != nil {
		return nil, err
	}

	var ids []uint64
	if err := query.Order("object_id asc").Pluck("object_id", &ids).Error; err != nil {
		return nil, errs.Wrap(err, "list catalog object ids")
	}
	return ids, nil
}

func (r *CatalogRepository) GetObject(ctx context.Context, objectID uint64) (ports.CatalogEntity, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.CatalogEntity{}, err
	}

	var row model.CatalogObject
	if err := db.Where("object_id = ?", objectID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.CatalogEntity{}, ports.ErrObjectNotFound
		}
		return ports.CatalogEntity{}, errs.Wrapf(err, "query catalog object %d", objectID)
	}

	fields := map[string]ports.FieldValue{}
	if strings.TrimSpace(row.FieldsJSON) != "" {
		if err := json.Unmarshal([]byte(row.FieldsJSON), &fields); err != nil {
			return ports.CatalogEntity{}, errs.Wrapf(err, "decode fields of catalog object %d", objectID)
		}
	}

	return ports.CatalogEntity{
		ObjectID:  row.ObjectID,
		ClassID:   row.ClassID,
		Key:       row.Key,
		CreatedAt: time.Unix(row.CreationDate, 0).UTC(),
		Fields:    fields,
	}, nil
}

func (r *CatalogRepository) EnsureFolders(ctx context.Context, paths ...string) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		row := model.CatalogFolder{Path: path, CreatedAt: nowUTCString()}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return errs.Wrapf(err, "ensure folder %s", path)
		}
	}
	return nil
}

func (r *CatalogRepository) UpsertProduct(ctx context.Context, write ports.ProductWrite) (bool, error) {
	if strings.TrimSpace(write.CatalogID) == "" {
		return false, errors.New("catalog id is required")
	}
	if strings.TrimSpace(write.Language) == "" {
		return false, errors.New("language is required")
	}

	created := false
	err := inTransaction(ctx, r.db, func(tx *gorm.DB) error {
		now := nowUTCString()

		var existing model.IcecatProduct
		err := tx.Where("icecat_id = ? AND language = ?", write.CatalogID, write.Language).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := model.IcecatProduct{
				IcecatID:      write.CatalogID,
				Language:      write.Language,
				OriginalGTIN:  write.OriginalGTIN,
				DataEncoded:   write.DataEncoded,
				OwnerObjectID: write.OwnerObjectID,
				FolderPath:    write.FolderPath,
				UserID:        write.UserID,
				StoreID:       write.StoreID,
				JobID:         write.JobID,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return errs.Wrapf(err, "insert product %s/%s", write.CatalogID, write.Language)
			}
			created = true
			return nil
		case err != nil:
			return errs.Wrapf(err, "query product %s/%s", write.CatalogID, write.Language)
		}

		updates := map[string]any{
			"original_gtin":   write.OriginalGTIN,
			"data_encoded":    write.DataEncoded,
			"owner_object_id": write.OwnerObjectID,
			"folder_path":     write.FolderPath,
			"user_id":         write.UserID,
			"store_id":        write.StoreID,
			"job_id":          write.JobID,
			"updated_at":      now,
		}
		if err := tx.Model(&model.IcecatProduct{}).Where("product_id = ?", existing.ProductID).Updates(updates).Error; err != nil {
			return errs.Wrapf(err, "update product %s/%s", write.CatalogID, write.Language)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// ReadDirect returns the localized value for language when present, otherwise the plain value.
func (r *CatalogRepository) ReadDirect(ctx context.Context, entity ports.CatalogEntity, field string, language string) (string, error) {
	value, err := r.fieldValue(ctx, entity, field)
	if err != nil {
		return "", err
	}
	return localizedValue(value, language), nil
}

func (r *CatalogRepository) ReadViaRelation(ctx context.Context, entity ports.CatalogEntity, field string, nested string, language string) (string, error) {
	value, err := r.fieldValue(ctx, entity, field)
	if err != nil {
		return "", err
	}
	if value.RelationID == nil {
		return "", fmt.Errorf("field %q of object %d holds no reference", field, entity.ObjectID)
	}

	target, err := r.GetObject(ctx, *value.RelationID)
	if err != nil {
		return "", errs.Wrapf(err, "load object %d referenced by %q", *value.RelationID, field)
	}
	return r.ReadDirect(ctx, target, nested, language)
}

func (r *CatalogRepository) fieldValue(ctx context.Context, entity ports.CatalogEntity, field string) (ports.FieldValue, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return ports.FieldValue{}, errors.New("field name is required")
	}

	declared, err := r.classFields(ctx, entity.ClassID)
	if err != nil {
		return ports.FieldValue{}, err
	}
	if _, ok := declared[field]; !ok {
		return ports.FieldValue{}, fmt.Errorf("%w: %s.%s", ports.ErrUnknownField, entity.ClassID, field)
	}
	return entity.Fields[field], nil
}

func (r *CatalogRepository) classFields(ctx context.Context, classID string) (map[string]struct{}, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var row model.CatalogClass
	if err := db.Where("class_id = ?", classID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: class %s", ports.ErrUnknownField, classID)
		}
		return nil, errs.Wrapf(err, "query class %s", classID)
	}

	var names []string
	if err := json.Unmarshal([]byte(row.FieldsJSON), &names); err != nil {
		return nil, errs.Wrapf(err, "decode fields of class %s", classID)
	}

	out := make(map[string]struct{}, len(names))
	for _, name := range names {
		out[name] = struct{}{}
	}
	return out, nil
}

func (r *CatalogRepository) objectQuery(ctx context.Context, filter ports.CatalogFilter) (*gorm.DB, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.CatalogObject{}).Where("class_id = ?", filter.ClassID)
	if filter.CreatedAfter != nil {
		query = query.Where("creation_date > ?", filter.CreatedAfter.Unix())
	}
	return query, nil
}

func localizedValue(value ports.FieldValue, language string) string {
	if len(value.Localized) > 0 {
		if v, ok := value.Localized[language]; ok {
			return v
		}
		for lang, v := range value.Localized {
			if strings.EqualFold(lang, language) {
				return v
			}
		}
	}
	return value.Value
}
