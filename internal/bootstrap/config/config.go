package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"icecatimport/internal/bootstrap/logging"
	"icecatimport/internal/domain/importrun"
	"icecatimport/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Icecat   IcecatConfig   `mapstructure:"icecat"`
	Import   ImportConfig   `mapstructure:"import"`
	Server   ServerConfig   `mapstructure:"server"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type LogConfig struct {
	Dir   string `mapstructure:"dir"`
	Level string `mapstructure:"level"`
}

type IcecatConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	UserAgent         string        `mapstructure:"user_agent"`
}

type ImportConfig struct {
	AssetFilePath  string        `mapstructure:"asset_file_path"`
	AssetRoot      string        `mapstructure:"asset_root"`
	ProductClass   string        `mapstructure:"product_class"`
	OnlyNewObjects bool          `mapstructure:"only_new_objects"`
	Languages      []string      `mapstructure:"languages"`
	StoreID        string        `mapstructure:"store_id"`
	Mapping        MappingConfig `mapstructure:"mapping"`
}

type MappingConfig struct {
	GTIN        FieldConfig `mapstructure:"gtin"`
	Brand       FieldConfig `mapstructure:"brand"`
	ProductCode FieldConfig `mapstructure:"product_code"`
}

// FieldConfig names a catalog field. Type "relation" (or "manyToOneRelation") reads
// ReferenceField on the referenced object.
type FieldConfig struct {
	Field          string `mapstructure:"field"`
	Type           string `mapstructure:"type"`
	ReferenceField string `mapstructure:"reference_field"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

func (m MappingConfig) FieldMapping() importrun.FieldMapping {
	return importrun.FieldMapping{
		GTIN:        m.GTIN.ref(),
		Brand:       m.Brand.ref(),
		ProductCode: m.ProductCode.ref(),
	}
}

func (f FieldConfig) ref() importrun.FieldRef {
	return importrun.FieldRef{
		Name:   strings.TrimSpace(f.Field),
		Kind:   importrun.ParseFieldKind(f.Type),
		Nested: strings.TrimSpace(f.ReferenceField),
	}
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ICECAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required")
	}
	if strings.TrimSpace(cfg.Icecat.BaseURL) == "" {
		return Config{}, errors.New("icecat.base_url is required")
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Int("languages", len(cfg.Import.Languages)),
	)

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "icecatimport")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "var/icecat.sqlite")

	v.SetDefault("log.dir", "var/log")
	v.SetDefault("log.level", "info")

	v.SetDefault("icecat.base_url", "https://live.icecat.biz/api")
	v.SetDefault("icecat.timeout", 30*time.Second)
	v.SetDefault("icecat.requests_per_second", 0)
	v.SetDefault("icecat.user_agent", "icecatimport/1.0")

	v.SetDefault("import.asset_file_path", "")
	v.SetDefault("import.asset_root", "var/assets")
	v.SetDefault("import.product_class", "")
	v.SetDefault("import.only_new_objects", false)
	v.SetDefault("import.languages", []string{})
	v.SetDefault("import.store_id", "")
	for _, field := range []string{"gtin", "brand", "product_code"} {
		v.SetDefault("import.mapping."+field+".field", "")
		v.SetDefault("import.mapping."+field+".type", "")
		v.SetDefault("import.mapping."+field+".reference_field", "")
	}

	v.SetDefault("server.addr", ":8080")
}
