package recurringimport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"icecatimport/internal/bootstrap/logging"
	"icecatimport/internal/domain/importrun"
	"icecatimport/internal/errs"
	"icecatimport/internal/ports"
)

type RunInput struct {
	ExecutionType string
}

// RunSummary describes how one invocation ended. AbortReason is set for refused and
// aborted runs.
type RunSummary struct {
	RunID       uint64
	Outcome     importrun.Outcome
	Phase       importrun.Phase
	Source      string
	Counters    importrun.Counters
	AbortReason error
}

func (s RunSummary) Completed() bool {
	return s.Outcome == importrun.OutcomeCompleted
}

// RecurringImport claims the run slot, validates the configuration, streams every
// record for every language and finalizes the ledger. Refused and aborted runs are
// reported in the summary, not as errors; an error means the ledger could not be
// finalized.
func (s *Service) RecurringImport(ctx context.Context, input RunInput) (RunSummary, error) {
	if ctx == nil {
		return RunSummary{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return RunSummary{}, errs.Wrap(err, "check context")
	}
	if s.ledger == nil {
		return RunSummary{}, errors.New("run ledger is required")
	}

	executionType := importrun.NormalizeExecutionType(input.ExecutionType)
	baseCtx := logging.WithAttrs(ctx,
		slog.String("component", "usecase.recurringimport"),
		slog.String("execution_type", executionType),
	)
	summary := RunSummary{Phase: importrun.PhaseClaiming}

	startedAt := s.now()
	run, err := s.ledger.TryClaimRun(baseCtx, executionType, startedAt)
	if err != nil {
		summary.Phase = importrun.PhaseAborted
		summary.Outcome = importrun.OutcomeRefused
		summary.AbortReason = err
		if errors.Is(err, importrun.ErrRunAlreadyActive) {
			logging.Warn(baseCtx, "another recurring import is running, skipping")
		} else {
			logging.Error(baseCtx, "claim run failed, refusing to start", slog.Any("err", errs.Loggable(err)))
		}
		return summary, nil
	}

	summary.RunID = run.RunID
	baseCtx = logging.WithAttrs(baseCtx, slog.Uint64("run_id", run.RunID))
	runCtx := s.attachRunLog(baseCtx)
	logging.Info(runCtx, "recurring import started")

	counters, reason := s.execute(runCtx, run, startedAt, &summary)
	summary.Counters = counters
	if reason != nil {
		summary.Phase = importrun.PhaseAborted
		summary.Outcome = importrun.OutcomeAborted
		summary.AbortReason = reason
		logging.Error(runCtx, "recurring import aborted", slog.String("reason", reason.Error()))
	} else {
		summary.Phase = importrun.PhaseFinalizing
	}

	finishErr := s.finalize(runCtx, baseCtx, run.RunID, counters)
	if reason == nil {
		summary.Phase = importrun.PhaseDone
		summary.Outcome = importrun.OutcomeCompleted
	}
	return summary, finishErr
}

func (s *Service) execute(ctx context.Context, run ports.RunRecord, startedAt time.Time, summary *RunSummary) (importrun.Counters, error) {
	summary.Phase = importrun.PhaseValidating

	loginUser, err := s.loginUser(ctx)
	if err != nil {
		return importrun.Counters{}, err
	}

	languages := s.settings.NormalizedLanguages()
	if len(languages) == 0 {
		return importrun.Counters{}, importrun.ErrLanguagesMissing
	}

	source, err := s.openSource(ctx, run)
	if err != nil {
		return importrun.Counters{}, err
	}
	defer func() {
		if err := source.Close(); err != nil {
			logging.Warn(ctx, "close import source failed", slog.Any("err", errs.Loggable(err)))
		}
	}()

	summary.Phase = importrun.PhaseRunning
	summary.Source = source.Kind()

	counters := importrun.Counters{Total: int64(source.Count()) * int64(len(languages))}
	s.persist(ctx, run.RunID, ports.RunUpdate{Total: &counters.Total})
	logging.Info(ctx, "starting import",
		slog.String("source", source.Kind()),
		slog.Int64("total_records", counters.Total),
		slog.Any("languages", languages),
	)

	scope := &runScope{jobID: JobID(startedAt), loginUser: loginUser}
	mapping := source.Mapping()
	seen := 0
	for item, readErr := range source.Records(ctx) {
		seen++
		for _, language := range languages {
			counters.Processed++
			if readErr != nil {
				counters.Errors++
				logging.Error(ctx, "record could not be read",
					slog.String("record", item.label()),
					slog.String("language", language),
					slog.Any("err", errs.Loggable(readErr)),
				)
				continue
			}
			if s.processPair(ctx, scope, item, language, mapping) {
				counters.Success++
			} else {
				counters.Errors++
			}
		}

		s.persist(ctx, run.RunID, ports.RunUpdate{
			Processed: &counters.Processed,
			Success:   &counters.Success,
			Errors:    &counters.Errors,
		})
		if importrun.ShouldReclaim(seen) {
			s.reclaim()
		}
	}

	return counters, nil
}

// processPair handles one record in one language and reports whether it was stored.
func (s *Service) processPair(ctx context.Context, scope *runScope, item sourceItem, language string, mapping importrun.FieldMapping) bool {
	pairCtx := logging.WithAttrs(ctx,
		slog.String("record", item.label()),
		slog.String("language", language),
	)

	key, err := s.resolver.Resolve(ctx, item, language, mapping)
	if err != nil {
		logging.Error(pairCtx, "lookup key could not be resolved", slog.String("reason", err.Error()))
		return false
	}

	result := s.fetcher.Fetch(ctx, key, language, scope.loginUser)
	if !result.OK() {
		attrs := []slog.Attr{
			slog.String("kind", string(result.Kind)),
			slog.String("url", result.URL),
		}
		if result.Detail != "" {
			attrs = append(attrs, slog.String("detail", result.Detail))
		}
		logging.Error(pairCtx, result.Kind.Reason(), attrs...)
		return false
	}

	created, err := s.upserter.Upsert(ctx, scope, result, item)
	if err != nil {
		logging.Error(pairCtx, "processing failed",
			slog.String("catalog_id", result.CatalogID),
			slog.Any("err", errs.Loggable(err)),
		)
		return false
	}

	logging.Info(pairCtx, "processed successfully",
		slog.String("catalog_id", result.CatalogID),
		slog.Bool("created", created),
	)
	return true
}

func (s *Service) loginUser(ctx context.Context) (string, error) {
	if s.logins == nil {
		return "", importrun.ErrLoginUserMissing
	}
	userID, ok, err := s.logins.LatestLoginUser(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", importrun.ErrLoginUserMissing, err)
	}
	if !ok {
		return "", importrun.ErrLoginUserMissing
	}
	return userID, nil
}

// openSource prefers an existing asset file over the configured product class.
func (s *Service) openSource(ctx context.Context, run ports.RunRecord) (recordSource, error) {
	if path := strings.TrimSpace(s.settings.AssetFilePath); path != "" {
		if s.tables != nil && s.tables.Exists(path) {
			table, err := s.tables.Open(ctx, path)
			if err != nil {
				return nil, errs.Wrapf(err, "open asset file %s", path)
			}
			source, err := newSpreadsheetSource(table)
			if err != nil {
				_ = table.Close()
				return nil, err
			}
			return source, nil
		}
		logging.Warn(ctx, "asset file not found", slog.String("path", path))
	}

	if strings.TrimSpace(s.settings.ProductClass) != "" {
		return s.openCatalogSource(ctx, run)
	}
	return nil, importrun.ErrSourceMissing
}

func (s *Service) openCatalogSource(ctx context.Context, run ports.RunRecord) (recordSource, error) {
	mapping := s.settings.Mapping
	if err := mapping.Validate(); err != nil {
		return nil, err
	}
	if s.catalog == nil {
		return nil, errors.New("catalog store is required")
	}

	classID := strings.TrimSpace(s.settings.ProductClass)
	exists, err := s.catalog.ClassExists(ctx, classID)
	if err != nil {
		return nil, errs.Wrapf(err, "check class %s", classID)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", importrun.ErrUnknownClass, classID)
	}

	filter := ports.CatalogFilter{ClassID: classID}
	if s.settings.OnlyNewObjects {
		last, ok, err := s.ledger.LastFinishedRun(ctx, run.RunID)
		if err != nil {
			return nil, errs.Wrap(err, "load last finished run")
		}
		if ok {
			createdAfter := last.StartedAt
			filter.CreatedAfter = &createdAfter
			logging.Info(ctx, "importing objects created since last run", slog.Time("created_after", createdAfter))
		}
	}

	count, err := s.catalog.CountObjects(ctx, filter)
	if err != nil {
		return nil, errs.Wrapf(err, "count objects of class %s", classID)
	}
	if count == 0 {
		return nil, importrun.ErrNoMatchingRecords
	}

	ids, err := s.catalog.ListObjectIDs(ctx, filter)
	if err != nil {
		return nil, errs.Wrapf(err, "list objects of class %s", classID)
	}
	if len(ids) == 0 {
		return nil, importrun.ErrNoMatchingRecords
	}

	return &catalogSource{catalog: s.catalog, ids: ids, mapping: mapping}, nil
}

// finalize logs through runCtx until the run log is rotated, then through baseCtx.
func (s *Service) finalize(runCtx context.Context, baseCtx context.Context, runID uint64, counters importrun.Counters) error {
	var finishErr error
	if err := s.ledger.FinishRun(runCtx, runID, counters, s.now()); err != nil {
		finishErr = errs.Wrapf(err, "finish run %d", runID)
		logging.Error(runCtx, "finish run failed", slog.Any("err", errs.Loggable(err)))
	}

	if deleted, err := s.ledger.PruneFinished(runCtx, runID); err != nil {
		logging.Warn(runCtx, "prune finished runs failed", slog.Any("err", errs.Loggable(err)))
	} else {
		logging.Debug(runCtx, "finished runs pruned", slog.Int64("deleted", deleted))
	}

	logging.Info(runCtx, "recurring import finished",
		slog.Int64("total_records", counters.Total),
		slog.Int64("processed_records", counters.Processed),
		slog.Int64("success_records", counters.Success),
		slog.Int64("error_records", counters.Errors),
	)

	if s.runLog != nil {
		if err := s.runLog.Rotate(baseCtx); err != nil {
			logging.Warn(baseCtx, "rotate run log failed", slog.Any("err", errs.Loggable(err)))
		}
	}
	return finishErr
}

func (s *Service) persist(ctx context.Context, runID uint64, update ports.RunUpdate) {
	if err := s.ledger.UpdateRun(ctx, runID, update); err != nil {
		logging.Warn(ctx, "update run counters failed", slog.Any("err", errs.Loggable(err)))
	}
}

func (s *Service) attachRunLog(ctx context.Context) context.Context {
	if s.runLog == nil {
		return ctx
	}
	w, err := s.runLog.Open(ctx)
	if err != nil {
		logging.Warn(ctx, "open run log failed, logging to process output only", slog.Any("err", errs.Loggable(err)))
		return ctx
	}
	return logging.WithSink(ctx, w, s.settings.LogLevel)
}
