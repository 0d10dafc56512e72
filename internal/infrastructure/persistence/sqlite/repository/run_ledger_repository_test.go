package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"icecatimport/internal/domain/importrun"
	"icecatimport/internal/infrastructure/persistence/sqlite/model"
	"icecatimport/internal/ports"
)

func TestTryClaimRunRefusesSecondClaim(t *testing.T) {
	repo := NewRunLedgerRepository(setupDB(t))
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	run, err := repo.TryClaimRun(ctx, importrun.ExecutionManual, now)
	if err != nil {
		t.Fatalf("TryClaimRun() error = %v", err)
	}
	if run.RunID == 0 || run.Status != importrun.StatusRunning {
		t.Fatalf("claimed run = %+v", run)
	}
	if !run.StartedAt.Equal(now) || !run.EndedAt.Equal(now) {
		t.Fatalf("claimed run times = %v/%v, want %v", run.StartedAt, run.EndedAt, now)
	}
	if run.ExecutionType != importrun.ExecutionManual {
		t.Fatalf("execution type = %q", run.ExecutionType)
	}

	if _, err := repo.TryClaimRun(ctx, importrun.ExecutionAutomatic, now.Add(time.Minute)); !errors.Is(err, importrun.ErrRunAlreadyActive) {
		t.Fatalf("second TryClaimRun() error = %v, want ErrRunAlreadyActive", err)
	}

	runs, err := repo.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("ListRuns() len = %d, want 1", len(runs))
	}
}

func TestRunningIndexRejectsDirectInsert(t *testing.T) {
	db := setupDB(t)
	repo := NewRunLedgerRepository(db)
	ctx := context.Background()

	if _, err := repo.TryClaimRun(ctx, importrun.ExecutionAutomatic, time.Now()); err != nil {
		t.Fatalf("TryClaimRun() error = %v", err)
	}

	err := db.Create(&model.RecurringImport{Status: string(importrun.StatusRunning), ExecutionType: "x"}).Error
	if !isUniqueViolation(err) {
		t.Fatalf("direct insert error = %v, want unique violation", err)
	}
}

func TestClaimAfterFinishSucceeds(t *testing.T) {
	repo := NewRunLedgerRepository(setupDB(t))
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first, err := repo.TryClaimRun(ctx, importrun.ExecutionAutomatic, start)
	if err != nil {
		t.Fatalf("TryClaimRun() error = %v", err)
	}
	totals := importrun.Counters{Total: 4, Processed: 4, Success: 3, Errors: 1}
	if err := repo.FinishRun(ctx, first.RunID, totals, start.Add(time.Hour)); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	finished, err := repo.GetRun(ctx, first.RunID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if finished.Status != importrun.StatusFinished || finished.Total != 4 || finished.Success != 3 || finished.Errors != 1 {
		t.Fatalf("finished run = %+v", finished)
	}
	if !finished.EndedAt.Equal(start.Add(time.Hour)) {
		t.Fatalf("EndedAt = %v", finished.EndedAt)
	}

	if _, err := repo.TryClaimRun(ctx, importrun.ExecutionAutomatic, start.Add(2*time.Hour)); err != nil {
		t.Fatalf("TryClaimRun() after finish error = %v", err)
	}
}

func TestUpdateRunPartialFields(t *testing.T) {
	repo := NewRunLedgerRepository(setupDB(t))
	ctx := context.Background()

	run, err := repo.TryClaimRun(ctx, importrun.ExecutionAutomatic, time.Now())
	if err != nil {
		t.Fatalf("TryClaimRun() error = %v", err)
	}

	total := int64(10)
	if err := repo.UpdateRun(ctx, run.RunID, ports.RunUpdate{Total: &total}); err != nil {
		t.Fatalf("UpdateRun(total) error = %v", err)
	}
	processed, success := int64(2), int64(1)
	if err := repo.UpdateRun(ctx, run.RunID, ports.RunUpdate{Processed: &processed, Success: &success}); err != nil {
		t.Fatalf("UpdateRun(progress) error = %v", err)
	}
	if err := repo.UpdateRun(ctx, run.RunID, ports.RunUpdate{}); err != nil {
		t.Fatalf("UpdateRun(empty) error = %v", err)
	}

	got, err := repo.GetRun(ctx, run.RunID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got.Total != 10 || got.Processed != 2 || got.Success != 1 || got.Errors != 0 {
		t.Fatalf("run counters = %+v", got)
	}
	if got.Status != importrun.StatusRunning {
		t.Fatalf("status = %q, want running", got.Status)
	}

	if err := repo.UpdateRun(ctx, run.RunID+100, ports.RunUpdate{Total: &total}); !errors.Is(err, ports.ErrRunNotFound) {
		t.Fatalf("UpdateRun(missing) error = %v, want ErrRunNotFound", err)
	}
}

func TestPruneFinishedKeepsCurrentRun(t *testing.T) {
	repo := NewRunLedgerRepository(setupDB(t))
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	var last ports.RunRecord
	for i := 0; i < 3; i++ {
		run, err := repo.TryClaimRun(ctx, importrun.ExecutionAutomatic, start.Add(time.Duration(i)*time.Hour))
		if err != nil {
			t.Fatalf("TryClaimRun(%d) error = %v", i, err)
		}
		if err := repo.FinishRun(ctx, run.RunID, importrun.Counters{}, start.Add(time.Duration(i)*time.Hour+time.Minute)); err != nil {
			t.Fatalf("FinishRun(%d) error = %v", i, err)
		}
		last = run
	}

	deleted, err := repo.PruneFinished(ctx, last.RunID)
	if err != nil {
		t.Fatalf("PruneFinished() error = %v", err)
	}
	if deleted != 2 {
		t.Fatalf("PruneFinished() deleted = %d, want 2", deleted)
	}

	runs, err := repo.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != last.RunID {
		t.Fatalf("remaining runs = %+v, want only %d", runs, last.RunID)
	}
}

func TestLastFinishedRunSkipsCurrent(t *testing.T) {
	repo := NewRunLedgerRepository(setupDB(t))
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if _, ok, err := repo.LastFinishedRun(ctx, 0); err != nil || ok {
		t.Fatalf("LastFinishedRun() on empty ledger = %v, %v", ok, err)
	}

	first, err := repo.TryClaimRun(ctx, importrun.ExecutionAutomatic, start)
	if err != nil {
		t.Fatalf("TryClaimRun() error = %v", err)
	}
	if err := repo.FinishRun(ctx, first.RunID, importrun.Counters{}, start.Add(time.Minute)); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	current, err := repo.TryClaimRun(ctx, importrun.ExecutionAutomatic, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("TryClaimRun() error = %v", err)
	}

	last, ok, err := repo.LastFinishedRun(ctx, current.RunID)
	if err != nil || !ok {
		t.Fatalf("LastFinishedRun() = %v, %v", ok, err)
	}
	if last.RunID != first.RunID || !last.StartedAt.Equal(start) {
		t.Fatalf("LastFinishedRun() = %+v, want run %d", last, first.RunID)
	}

	running, ok, err := repo.CurrentRun(ctx)
	if err != nil || !ok || running.RunID != current.RunID {
		t.Fatalf("CurrentRun() = %+v, %v, %v", running, ok, err)
	}
}

func TestLedgerRequiresContext(t *testing.T) {
	repo := NewRunLedgerRepository(setupDB(t))
	if _, err := repo.TryClaimRun(nil, importrun.ExecutionAutomatic, time.Now()); err == nil {
		t.Fatalf("TryClaimRun(nil ctx) expected error")
	}
}
