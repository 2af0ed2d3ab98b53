package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/nurpe/staffing-contracts/internal/workflow"
)

// Postgres codes that mean "try again against fresh state".
var retryableCodes = map[string]struct{}{
	"55P03": {}, // lock_not_available
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
}

func notFound(entity string, id fmt.Stringer) error {
	return fmt.Errorf("%w: %s %s", workflow.ErrNotFound, entity, id)
}

func duplicate(entity string, id fmt.Stringer) error {
	return fmt.Errorf("%w: %s %s already exists", workflow.ErrValidationFailed, entity, id)
}

// translateError maps driver failures onto workflow error kinds and leaves
// everything else untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", workflow.ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if _, ok := retryableCodes[pgErr.Code]; ok {
			return fmt.Errorf("%w: %s", workflow.ErrConcurrencyConflict, pgErr.Message)
		}
		if pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", workflow.ErrValidationFailed, pgErr.Detail)
		}
	}
	return err
}
