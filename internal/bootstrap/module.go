package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"icecatimport/internal/bootstrap/config"
	"icecatimport/internal/bootstrap/database"
	"icecatimport/internal/bootstrap/logging"
	"icecatimport/internal/infrastructure/icecat"
	sqliterepo "icecatimport/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "icecatimport/internal/infrastructure/persistence/sqlite/uow"
	"icecatimport/internal/infrastructure/runlog"
	"icecatimport/internal/infrastructure/tabular"
	"icecatimport/internal/ports"
	"icecatimport/internal/usecase/recurringimport"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewRunLedgerRepository,
			fx.As(new(ports.RunLedger)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewLoginRepository,
			fx.As(new(ports.LoginStore)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewCatalogRepository,
			fx.As(new(ports.CatalogStore), new(ports.FieldAccessor)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			provideTabularReader,
			fx.As(new(ports.TabularReader)),
		),
	),
	fx.Provide(
		fx.Annotate(
			provideIcecatClient,
			fx.As(new(ports.HTTPFetcher)),
		),
	),
	fx.Provide(
		fx.Annotate(
			provideRunLogSink,
			fx.As(new(ports.RunLogSink)),
		),
	),
	fx.Provide(provideImportService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideTabularReader(cfg config.Config) *tabular.Reader {
	return tabular.NewReader(cfg.Import.AssetRoot)
}

func provideIcecatClient(cfg config.Config) *icecat.Client {
	return icecat.NewClient(icecat.Options{
		Timeout:           cfg.Icecat.Timeout,
		RequestsPerSecond: cfg.Icecat.RequestsPerSecond,
		UserAgent:         cfg.Icecat.UserAgent,
	})
}

func provideRunLogSink(cfg config.Config) *runlog.FileSink {
	return runlog.NewFileSink(cfg.Log.Dir)
}

type importServiceParams struct {
	fx.In

	Config  config.Config
	Ledger  ports.RunLedger
	Logins  ports.LoginStore
	Catalog ports.CatalogStore
	Fields  ports.FieldAccessor
	Tables  ports.TabularReader
	HTTP    ports.HTTPFetcher
	RunLog  ports.RunLogSink
	UoW     ports.UnitOfWork
}

func provideImportService(p importServiceParams) *recurringimport.Service {
	return recurringimport.NewService(recurringimport.Deps{
		Ledger:   p.Ledger,
		Logins:   p.Logins,
		Catalog:  p.Catalog,
		Fields:   p.Fields,
		Tables:   p.Tables,
		HTTP:     p.HTTP,
		RunLog:   p.RunLog,
		UoW:      p.UoW,
		Settings: ImportSettings(p.Config),
	})
}

// ImportSettings maps the loaded config onto the import run settings.
func ImportSettings(cfg config.Config) recurringimport.Settings {
	return recurringimport.Settings{
		AssetFilePath:  cfg.Import.AssetFilePath,
		ProductClass:   cfg.Import.ProductClass,
		OnlyNewObjects: cfg.Import.OnlyNewObjects,
		Languages:      cfg.Import.Languages,
		StoreID:        cfg.Import.StoreID,
		BaseURL:        cfg.Icecat.BaseURL,
		Mapping:        cfg.Import.Mapping.FieldMapping(),
		LogLevel:       logging.ParseLevel(cfg.Log.Level),
	}
}
