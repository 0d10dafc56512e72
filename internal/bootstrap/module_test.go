package bootstrap

import (
	"context"
	"log/slog"
	"testing"

	"go.uber.org/fx"

	"icecatimport/internal/bootstrap/config"
	"icecatimport/internal/domain/importrun"
	"icecatimport/internal/usecase/recurringimport"
)

func TestModuleGraphIsComplete(t *testing.T) {
	err := fx.ValidateApp(
		Module,
		fx.Provide(func() context.Context { return context.Background() }),
		fx.Provide(
			fx.Annotate(
				func() string { return "" },
				fx.ResultTags(`name:"configFile"`),
			),
		),
		fx.Invoke(func(*App, *recurringimport.Service) {}),
	)
	if err != nil {
		t.Fatalf("ValidateApp() error = %v", err)
	}
}

func TestImportSettings(t *testing.T) {
	var cfg config.Config
	cfg.Log.Level = "debug"
	cfg.Icecat.BaseURL = "https://live.icecat.biz/api"
	cfg.Import.ProductClass = "Product"
	cfg.Import.Languages = []string{"en"}
	cfg.Import.Mapping.GTIN = config.FieldConfig{Field: " ean "}
	cfg.Import.Mapping.Brand = config.FieldConfig{Field: "manufacturer", Type: "manyToOneRelation", ReferenceField: "name"}

	got := ImportSettings(cfg)
	if got.BaseURL != cfg.Icecat.BaseURL || got.ProductClass != "Product" {
		t.Fatalf("ImportSettings() = %+v", got)
	}
	if got.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v, want debug", got.LogLevel)
	}
	if got.Mapping.GTIN.Name != "ean" || !got.Mapping.Brand.IsRelation() || got.Mapping.Brand.Nested != "name" {
		t.Fatalf("Mapping = %+v", got.Mapping)
	}
	if got.Mapping.Validate() != nil {
		t.Fatalf("Mapping.Validate() = %v", got.Mapping.Validate())
	}
	if got.Mapping.ProductCode.Kind != importrun.FieldDirect {
		t.Fatalf("ProductCode kind = %q, want direct", got.Mapping.ProductCode.Kind)
	}
}
