package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/nurpe/staffing-contracts/internal/workflow"
)

func TestTranslateError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"lock timeout", &pgconn.PgError{Code: "55P03", Message: "canceling statement due to lock timeout"}, workflow.ErrConcurrencyConflict},
		{"serialization", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}), workflow.ErrConcurrencyConflict},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, workflow.ErrConcurrencyConflict},
		{"unique violation", &pgconn.PgError{Code: "23505", Detail: "Key (contract_id, applicant_id) already exists."}, workflow.ErrValidationFailed},
		{"record not found", gorm.ErrRecordNotFound, workflow.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, translateError(tc.in), tc.want)
		})
	}

	assert.NoError(t, translateError(nil))
	other := errors.New("connection refused")
	assert.Equal(t, other, translateError(other))
	assert.False(t, workflow.Retryable(translateError(&pgconn.PgError{Code: "23503"})))
}
