package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"icecatimport/internal/ports"
)

// dbFromContext prefers the transaction carried by ctx over the root handle.
func dbFromContext(ctx context.Context, root *gorm.DB) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return root.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// inTransaction runs fn in the caller's transaction, or opens one when there is none.
func inTransaction(ctx context.Context, root *gorm.DB, fn func(tx *gorm.DB) error) error {
	db, err := dbFromContext(ctx, root)
	if err != nil {
		return err
	}
	if ports.InTx(ctx) {
		return fn(db)
	}
	return db.Transaction(fn)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToUpper(err.Error()), "UNIQUE CONSTRAINT FAILED")
}

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
