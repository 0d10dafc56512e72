package model

// CatalogClass declares which fields objects of the class may carry.
type CatalogClass struct {
	ClassID    string `gorm:"column:class_id;type:text;primaryKey"`
	Name       string `gorm:"column:name;type:text;not null"`
	FieldsJSON string `gorm:"column:fields_json;type:text;not null"`
}

func (CatalogClass) TableName() string {
	return "catalog_classes"
}

// CatalogObject stores field values as JSON keyed by field name. CreationDate is unix seconds.
type CatalogObject struct {
	ObjectID     uint64 `gorm:"column:object_id;primaryKey;autoIncrement"`
	ClassID      string `gorm:"column:class_id;type:text;not null;index"`
	Key          string `gorm:"column:object_key;type:text;not null"`
	CreationDate int64  `gorm:"column:creation_date;not null;index"`
	FieldsJSON   string `gorm:"column:fields_json;type:text;not null"`
}

func (CatalogObject) TableName() string {
	return "catalog_objects"
}

type CatalogFolder struct {
	Path      string `gorm:"column:path;type:text;primaryKey"`
	CreatedAt string `gorm:"column:created_at;type:text;not null"`
}

func (CatalogFolder) TableName() string {
	return "catalog_folders"
}
