package recurringimport

import (
	"log/slog"
	"runtime"
	"strings"
	"time"

	"icecatimport/internal/domain/importrun"
	"icecatimport/internal/ports"
)

const DefaultBaseURL = "https://live.icecat.biz/api"

// Catalog folders created before the first product write of a run.
const (
	DataFolder  = "/ICECAT"
	AssetFolder = "/ICECAT/assets"
)

// Settings is the import configuration read once per run.
type Settings struct {
	AssetFilePath  string
	ProductClass   string
	OnlyNewObjects bool
	Languages      []string
	StoreID        string
	BaseURL        string
	Mapping        importrun.FieldMapping
	LogLevel       slog.Level
}

// NormalizedLanguages returns the configured languages trimmed, upper-cased and de-duplicated.
func (s Settings) NormalizedLanguages() []string {
	seen := make(map[string]struct{}, len(s.Languages))
	out := make([]string, 0, len(s.Languages))
	for _, raw := range s.Languages {
		lang := strings.ToUpper(strings.TrimSpace(raw))
		if lang == "" {
			continue
		}
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		out = append(out, lang)
	}
	return out
}

type Deps struct {
	Ledger   ports.RunLedger
	Logins   ports.LoginStore
	Catalog  ports.CatalogStore
	Fields   ports.FieldAccessor
	Tables   ports.TabularReader
	HTTP     ports.HTTPFetcher
	RunLog   ports.RunLogSink
	UoW      ports.UnitOfWork
	Settings Settings

	// Now and Reclaim default to time.Now and an asynchronous runtime.GC.
	Now     func() time.Time
	Reclaim func()
}

type Service struct {
	ledger   ports.RunLedger
	logins   ports.LoginStore
	catalog  ports.CatalogStore
	tables   ports.TabularReader
	runLog   ports.RunLogSink
	settings Settings

	resolver KeyResolver
	fetcher  EnrichmentFetcher
	upserter UpsertService

	now     func() time.Time
	reclaim func()
}

func NewService(deps Deps) *Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	reclaim := deps.Reclaim
	if reclaim == nil {
		reclaim = func() { go runtime.GC() }
	}

	return &Service{
		ledger:   deps.Ledger,
		logins:   deps.Logins,
		catalog:  deps.Catalog,
		tables:   deps.Tables,
		runLog:   deps.RunLog,
		settings: deps.Settings,
		resolver: NewKeyResolver(deps.Fields),
		fetcher:  NewEnrichmentFetcher(deps.HTTP, deps.Settings.BaseURL),
		upserter: NewUpsertService(deps.Catalog, deps.UoW, deps.Settings.StoreID),
		now:      now,
		reclaim:  reclaim,
	}
}
