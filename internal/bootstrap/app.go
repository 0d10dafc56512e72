package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"icecatimport/internal/bootstrap/config"
	"icecatimport/internal/bootstrap/logging"
	"icecatimport/internal/errs"
	"icecatimport/internal/infrastructure/persistence/schema"
	"icecatimport/internal/infrastructure/persistence/sqlite/model"
)

type App struct {
	Config config.Config
	DB     *gorm.DB
}

func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))
	logging.Info(logCtx, "start schema migration")

	db := a.DB.WithContext(ctx)
	if err := db.AutoMigrate(
		&schema.SchemaMeta{},
		&model.RecurringImport{},
		&model.UserLogin{},
		&model.CatalogClass{},
		&model.CatalogObject{},
		&model.CatalogFolder{},
		&model.IcecatProduct{},
	); err != nil {
		return errs.Wrap(err, "auto migrate schema")
	}

	if err := db.Exec(model.SingleRunningIndexSQL).Error; err != nil {
		return errs.Wrap(err, "create single running import index")
	}

	meta := schema.SchemaMeta{Key: schema.VersionKey, Value: schema.CurrentVersion}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&meta).Error; err != nil {
		return errs.Wrap(err, "record schema version")
	}

	logging.Info(logCtx, "schema migration completed", slog.String("schema_version", schema.CurrentVersion))
	return nil
}

// SchemaVersion returns the recorded schema version, or "" before InitSchema ran.
func (a *App) SchemaVersion(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}

	var meta schema.SchemaMeta
	err := a.DB.WithContext(ctx).Where("key = ?", schema.VersionKey).Take(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errs.Wrap(err, "query schema version")
	}
	return meta.Value, nil
}
