package recurringimport

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"icecatimport/internal/domain/importrun"
	"icecatimport/internal/errs"
	"icecatimport/internal/ports"
)

const jobIDLayout = "2006-01-02 15:04 PM"

// JobID tags every product write of the run started at startedAt.
func JobID(startedAt time.Time) string {
	return "RECURRING_IMPORT " + startedAt.Format(jobIDLayout)
}

// runScope is the per-run state shared by all upserts.
type runScope struct {
	jobID        string
	loginUser    string
	foldersReady bool
}

type UpsertService struct {
	catalog ports.CatalogStore
	uow     ports.UnitOfWork
	storeID string
}

// NewUpsertService builds the product writer. uow may be nil, in which case folder
// setup and the product write are not grouped in one transaction.
func NewUpsertService(catalog ports.CatalogStore, uow ports.UnitOfWork, storeID string) UpsertService {
	return UpsertService{catalog: catalog, uow: uow, storeID: storeID}
}

// Upsert writes a successful result. Folder setup runs until it succeeds once per run.
func (u UpsertService) Upsert(ctx context.Context, scope *runScope, result importrun.EnrichmentResult, rec sourceItem) (bool, error) {
	if u.catalog == nil {
		return false, errors.New("catalog store is required")
	}
	if !result.OK() {
		return false, errors.New("only successful results can be stored")
	}

	var created bool
	write := func(txCtx context.Context) error {
		if !scope.foldersReady {
			if err := u.catalog.EnsureFolders(txCtx, DataFolder, AssetFolder); err != nil {
				return errs.Wrap(err, "ensure catalog folders")
			}
		}

		var err error
		created, err = u.catalog.UpsertProduct(txCtx, u.productWrite(scope, result, rec))
		if err != nil {
			return errs.Wrapf(err, "upsert product %s", result.CatalogID)
		}
		return nil
	}

	var err error
	if u.uow != nil {
		err = u.uow.WithTx(ctx, write)
	} else {
		err = write(ctx)
	}
	if err != nil {
		return false, err
	}

	scope.foldersReady = true
	return created, nil
}

func (u UpsertService) productWrite(scope *runScope, result importrun.EnrichmentResult, rec sourceItem) ports.ProductWrite {
	return ports.ProductWrite{
		CatalogID:     result.CatalogID,
		Language:      result.Language,
		OriginalGTIN:  result.OriginalGTIN,
		DataEncoded:   base64.StdEncoding.EncodeToString(result.Payload),
		OwnerObjectID: rec.record.OwnerID,
		FolderPath:    DataFolder,
		UserID:        scope.loginUser,
		StoreID:       u.storeID,
		JobID:         scope.jobID,
	}
}
