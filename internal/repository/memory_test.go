package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/staffing-contracts/internal/model"
	"github.com/nurpe/staffing-contracts/internal/workflow"
)

func TestMemoryStoreDiscardsWritesOnError(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	contract := model.Contract{ID: uuid.New(), InstitutionID: uuid.New(), Status: model.ContractStatusOpen, CreatedAt: time.Now()}

	boom := errors.New("boom")
	err := store.Atomic(ctx, contract.ID, func(tx workflow.Tx) error {
		require.NoError(t, tx.InsertContract(ctx, &contract))
		got, err := tx.GetContract(ctx, contract.ID)
		require.NoError(t, err)
		assert.Equal(t, contract.ID, got.ID)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.GetContract(ctx, contract.ID)
	assert.ErrorIs(t, err, workflow.ErrNotFound)

	require.NoError(t, store.Atomic(ctx, contract.ID, func(tx workflow.Tx) error {
		return tx.InsertContract(ctx, &contract)
	}))
	err = store.Atomic(ctx, contract.ID, func(tx workflow.Tx) error {
		return tx.InsertContract(ctx, &contract)
	})
	assert.ErrorIs(t, err, workflow.ErrValidationFailed)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	contract := model.Contract{
		ID:              uuid.New(),
		InstitutionID:   uuid.New(),
		Status:          model.ContractStatusOpen,
		PositionsSought: []string{"pharmacist"},
		CreatedAt:       time.Now(),
	}
	app := model.Application{ID: uuid.New(), ContractID: contract.ID, ApplicantID: uuid.New(), Status: model.ApplicationStatusPending}

	require.NoError(t, store.Atomic(ctx, contract.ID, func(tx workflow.Tx) error {
		if err := tx.InsertContract(ctx, &contract); err != nil {
			return err
		}
		return tx.InsertApplication(ctx, &app)
	}))

	got, err := store.GetContract(ctx, contract.ID)
	require.NoError(t, err)
	got.PositionsSought[0] = "changed"

	again, err := store.GetContract(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, "pharmacist", again.PositionsSought[0])

	contractID, err := store.ContractIDForApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.ID, contractID)

	_, err = store.ContractIDForAgreement(ctx, uuid.New())
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestMemoryStoreRejectsOrphanApplication(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	app := model.Application{ID: uuid.New(), ContractID: uuid.New(), ApplicantID: uuid.New()}

	err := store.Atomic(ctx, app.ContractID, func(tx workflow.Tx) error {
		return tx.InsertApplication(ctx, &app)
	})
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}
