package recurringimport

import (
	"context"
	"errors"
	"time"

	"icecatimport/internal/domain/importrun"
	"icecatimport/internal/errs"
	"icecatimport/internal/ports"
)

// StatusView is the externally visible state of one ledger row.
type StatusView struct {
	RunID         uint64     `json:"run_id" yaml:"run_id"`
	Status        string     `json:"status" yaml:"status"`
	ExecutionType string     `json:"execution_type" yaml:"execution_type"`
	StartedAt     time.Time  `json:"started_at" yaml:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty" yaml:"ended_at,omitempty"`
	Total         int64      `json:"total_records" yaml:"total_records"`
	Processed     int64      `json:"processed_records" yaml:"processed_records"`
	Success       int64      `json:"success_records" yaml:"success_records"`
	Errors        int64      `json:"error_records" yaml:"error_records"`
	Progress      float64    `json:"progress" yaml:"progress"`
}

func NewStatusView(run ports.RunRecord) StatusView {
	view := StatusView{
		RunID:         run.RunID,
		Status:        string(run.Status),
		ExecutionType: run.ExecutionType,
		StartedAt:     run.StartedAt,
		Total:         run.Total,
		Processed:     run.Processed,
		Success:       run.Success,
		Errors:        run.Errors,
	}
	if run.Status == importrun.StatusFinished {
		ended := run.EndedAt
		view.EndedAt = &ended
	}
	if run.Total > 0 {
		view.Progress = float64(run.Processed) / float64(run.Total)
	}
	return view
}

func (s *Service) CurrentRun(ctx context.Context) (StatusView, bool, error) {
	if err := s.checkLedger(ctx); err != nil {
		return StatusView{}, false, err
	}
	run, ok, err := s.ledger.CurrentRun(ctx)
	if err != nil || !ok {
		return StatusView{}, false, err
	}
	return NewStatusView(run), true, nil
}

func (s *Service) LastRun(ctx context.Context) (StatusView, bool, error) {
	if err := s.checkLedger(ctx); err != nil {
		return StatusView{}, false, err
	}
	run, ok, err := s.ledger.LastFinishedRun(ctx, 0)
	if err != nil || !ok {
		return StatusView{}, false, err
	}
	return NewStatusView(run), true, nil
}

// Status prefers the running row and falls back to the last finished one.
func (s *Service) Status(ctx context.Context) (StatusView, bool, error) {
	view, ok, err := s.CurrentRun(ctx)
	if err != nil || ok {
		return view, ok, err
	}
	return s.LastRun(ctx)
}

func (s *Service) SetLoginUser(ctx context.Context, userID string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.logins == nil {
		return errors.New("login store is required")
	}
	return s.logins.SaveLoginUser(ctx, userID)
}

func (s *Service) checkLedger(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.ledger == nil {
		return errors.New("run ledger is required")
	}
	return nil
}
