package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"icecatimport/internal/domain/importrun"
	"icecatimport/internal/errs"
	"icecatimport/internal/infrastructure/persistence/sqlite/model"
	"icecatimport/internal/ports"
)

type RunLedgerRepository struct {
	db *gorm.DB
}

var _ ports.RunLedger = (*RunLedgerRepository)(nil)

func NewRunLedgerRepository(db *gorm.DB) *RunLedgerRepository {
	return &RunLedgerRepository{db: db}
}

const claimRunSQL = "INSERT INTO icecat_recurring_import " +
	"(start_datetime, end_datetime, status, total_records, processed_records, success_records, error_records, execution_type) " +
	"SELECT ?, ?, ?, 0, 0, 0, 0, ? " +
	"WHERE NOT EXISTS (SELECT 1 FROM icecat_recurring_import WHERE status = ?)"

// TryClaimRun is a conditional insert: the existence check and the insert are one statement.
func (r *RunLedgerRepository) TryClaimRun(ctx context.Context, executionType string, now time.Time) (ports.RunRecord, error) {
	started := now.Unix()
	running := string(importrun.StatusRunning)

	var claimed model.RecurringImport
	err := inTransaction(ctx, r.db, func(tx *gorm.DB) error {
		res := tx.Exec(claimRunSQL, started, started, running, executionType, running)
		if res.Error != nil {
			if isUniqueViolation(res.Error) {
				return importrun.ErrRunAlreadyActive
			}
			return errs.Wrap(res.Error, "insert running import row")
		}
		if res.RowsAffected == 0 {
			return importrun.ErrRunAlreadyActive
		}

		if err := tx.Where("status = ?", running).Order("id desc").Take(&claimed).Error; err != nil {
			return errs.Wrap(err, "load claimed import row")
		}
		return nil
	})
	if err != nil {
		return ports.RunRecord{}, err
	}

	return mapRun(claimed), nil
}

func (r *RunLedgerRepository) UpdateRun(ctx context.Context, runID uint64, update ports.RunUpdate) error {
	if update.Empty() {
		return nil
	}

	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	res := db.Model(&model.RecurringImport{}).Where("id = ?", runID).Updates(updateColumns(update))
	if res.Error != nil {
		return errs.Wrapf(res.Error, "update import row %d", runID)
	}
	if res.RowsAffected == 0 {
		return ports.ErrRunNotFound
	}
	return nil
}

func (r *RunLedgerRepository) FinishRun(ctx context.Context, runID uint64, totals importrun.Counters, now time.Time) error {
	status := importrun.StatusFinished
	return r.UpdateRun(ctx, runID, ports.RunUpdate{
		EndedAt:   &now,
		Status:    &status,
		Total:     &totals.Total,
		Processed: &totals.Processed,
		Success:   &totals.Success,
		Errors:    &totals.Errors,
	})
}

func (r *RunLedgerRepository) PruneFinished(ctx context.Context, exceptRunID uint64) (int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	res := db.Where("id <> ? AND status = ?", exceptRunID, string(importrun.StatusFinished)).
		Delete(&model.RecurringImport{})
	if res.Error != nil {
		return 0, errs.Wrap(res.Error, "delete finished import rows")
	}
	return res.RowsAffected, nil
}

func (r *RunLedgerRepository) GetRun(ctx context.Context, runID uint64) (ports.RunRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.RunRecord{}, err
	}

	var row model.RecurringImport
	if err := db.Where("id = ?", runID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.RunRecord{}, ports.ErrRunNotFound
		}
		return ports.RunRecord{}, errs.Wrapf(err, "query import row %d", runID)
	}
	return mapRun(row), nil
}

func (r *RunLedgerRepository) LastFinishedRun(ctx context.Context, exceptRunID uint64) (ports.RunRecord, bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.RunRecord{}, false, err
	}

	query := db.Where("id <> ? AND status = ?", exceptRunID, string(importrun.StatusFinished)).
		Order("start_datetime desc").
		Order("id desc")
	return takeRun(query, "query last finished import row")
}

func (r *RunLedgerRepository) CurrentRun(ctx context.Context) (ports.RunRecord, bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.RunRecord{}, false, err
	}

	query := db.Where("status = ?", string(importrun.StatusRunning)).Order("id desc")
	return takeRun(query, "query running import row")
}

func (r *RunLedgerRepository) ListRuns(ctx context.Context) ([]ports.RunRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.RecurringImport
	if err := db.Order("id desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query import rows")
	}

	items := make([]ports.RunRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapRun(row))
	}
	return items, nil
}

func takeRun(query *gorm.DB, msg string) (ports.RunRecord, bool, error) {
	var row model.RecurringImport
	if err := query.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.RunRecord{}, false, nil
		}
		return ports.RunRecord{}, false, errs.Wrap(err, msg)
	}
	return mapRun(row), true, nil
}

func updateColumns(update ports.RunUpdate) map[string]any {
	columns := make(map[string]any, 7)
	if update.EndedAt != nil {
		columns["end_datetime"] = update.EndedAt.Unix()
	}
	if update.Status != nil {
		columns["status"] = string(*update.Status)
	}
	if update.Total != nil {
		columns["total_records"] = *update.Total
	}
	if update.Processed != nil {
		columns["processed_records"] = *update.Processed
	}
	if update.Success != nil {
		columns["success_records"] = *update.Success
	}
	if update.Errors != nil {
		columns["error_records"] = *update.Errors
	}
	if update.ExecutionType != nil {
		columns["execution_type"] = *update.ExecutionType
	}
	return columns
}

func mapRun(row model.RecurringImport) ports.RunRecord {
	return ports.RunRecord{
		RunID:         row.ID,
		StartedAt:     time.Unix(row.StartDatetime, 0).UTC(),
		EndedAt:       time.Unix(row.EndDatetime, 0).UTC(),
		Status:        importrun.RunStatus(row.Status),
		Total:         row.TotalRecords,
		Processed:     row.ProcessedRecords,
		Success:       row.SuccessRecords,
		Errors:        row.ErrorRecords,
		ExecutionType: row.ExecutionType,
	}
}
