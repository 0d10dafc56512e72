package model

type UserLogin struct {
	ID           uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	IcecatUserID string `gorm:"column:icecat_user_id;type:text;not null"`
	CreatedAt    string `gorm:"column:created_at;type:text;not null"`
}

func (UserLogin) TableName() string {
	return "icecat_user_login"
}
