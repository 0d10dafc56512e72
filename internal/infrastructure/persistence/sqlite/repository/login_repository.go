package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"icecatimport/internal/errs"
	"icecatimport/internal/infrastructure/persistence/sqlite/model"
	"icecatimport/internal/ports"
)

type LoginRepository struct {
	db *gorm.DB
}

var _ ports.LoginStore = (*LoginRepository)(nil)

func NewLoginRepository(db *gorm.DB) *LoginRepository {
	return &LoginRepository{db: db}
}

func (r *LoginRepository) LatestLoginUser(ctx context.Context) (string, bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return "", false, err
	}

	var row model.UserLogin
	if err := db.Order("id desc").Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Wrap(err, "query latest login user")
	}

	userID := strings.TrimSpace(row.IcecatUserID)
	if userID == "" {
		return "", false, nil
	}
	return userID, true, nil
}

func (r *LoginRepository) SaveLoginUser(ctx context.Context, userID string) error {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return errors.New("login user id is required")
	}

	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	row := model.UserLogin{IcecatUserID: trimmed, CreatedAt: nowUTCString()}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert login user")
	}
	return nil
}
