package model

type IcecatProduct struct {
	ProductID     uint64  `gorm:"column:product_id;primaryKey;autoIncrement"`
	IcecatID      string  `gorm:"column:icecat_id;type:text;not null;uniqueIndex:idx_icecat_products_id_language"`
	Language      string  `gorm:"column:language;type:text;not null;uniqueIndex:idx_icecat_products_id_language"`
	OriginalGTIN  string  `gorm:"column:original_gtin;type:text;not null"`
	DataEncoded   string  `gorm:"column:data_encoded;type:text;not null"`
	OwnerObjectID *uint64 `gorm:"column:owner_object_id;index"`
	FolderPath    string  `gorm:"column:folder_path;type:text;not null"`
	UserID        string  `gorm:"column:user_id;type:text;not null"`
	StoreID       string  `gorm:"column:store_id;type:text;not null"`
	JobID         string  `gorm:"column:job_id;type:text;not null"`
	CreatedAt     string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt     string  `gorm:"column:updated_at;type:text;not null"`
}

func (IcecatProduct) TableName() string {
	return "icecat_products"
}
