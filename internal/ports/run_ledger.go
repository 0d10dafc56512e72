package ports

import (
	"context"
	"errors"
	"time"

	"icecatimport/internal/domain/importrun"
)

var ErrRunNotFound = errors.New("recurring import run not found")

type RunRecord struct {
	RunID         uint64
	StartedAt     time.Time
	EndedAt       time.Time
	Status        importrun.RunStatus
	Total         int64
	Processed     int64
	Success       int64
	Errors        int64
	ExecutionType string
}

// RunUpdate is a partial update: nil fields are left untouched.
type RunUpdate struct {
	EndedAt       *time.Time
	Status        *importrun.RunStatus
	Total         *int64
	Processed     *int64
	Success       *int64
	Errors        *int64
	ExecutionType *string
}

func (u RunUpdate) Empty() bool {
	return u.EndedAt == nil && u.Status == nil && u.Total == nil && u.Processed == nil &&
		u.Success == nil && u.Errors == nil && u.ExecutionType == nil
}

type RunLedger interface {
	// TryClaimRun inserts a running row unless one already exists. It returns
	// importrun.ErrRunAlreadyActive when refused.
	TryClaimRun(ctx context.Context, executionType string, now time.Time) (RunRecord, error)
	UpdateRun(ctx context.Context, runID uint64, update RunUpdate) error
	FinishRun(ctx context.Context, runID uint64, totals importrun.Counters, now time.Time) error
	PruneFinished(ctx context.Context, exceptRunID uint64) (int64, error)

	GetRun(ctx context.Context, runID uint64) (RunRecord, error)
	LastFinishedRun(ctx context.Context, exceptRunID uint64) (RunRecord, bool, error)
	CurrentRun(ctx context.Context) (RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]RunRecord, error)
}
