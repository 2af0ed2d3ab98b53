package workflow

import (
	"context"

	"github.com/google/uuid"

	"github.com/nurpe/staffing-contracts/internal/model"
)

// Reader exposes snapshots of workflow records. Missing ids yield ErrNotFound.
type Reader interface {
	GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	ListContractsByInstitution(ctx context.Context, institutionID uuid.UUID) ([]model.Contract, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*model.Application, error)
	ListApplications(ctx context.Context, contractID uuid.UUID) ([]model.Application, error)
	GetAgreement(ctx context.Context, id uuid.UUID) (*model.Agreement, error)
	GetAgreementByApplication(ctx context.Context, applicationID uuid.UUID) (*model.Agreement, error)
	ListEvents(ctx context.Context, contractID uuid.UUID) ([]model.Event, error)
}

// Tx is a read-modify-write unit scoped to one contract. Writes become
// visible only when the surrounding Atomic call returns nil.
type Tx interface {
	Reader
	InsertContract(ctx context.Context, contract *model.Contract) error
	UpdateContract(ctx context.Context, contract *model.Contract) error
	InsertApplication(ctx context.Context, application *model.Application) error
	UpdateApplication(ctx context.Context, application *model.Application) error
	InsertAgreement(ctx context.Context, agreement *model.Agreement) error
	UpdateAgreement(ctx context.Context, agreement *model.Agreement) error
	AppendEvent(ctx context.Context, event model.Event) error
}

// Store is the persistence collaborator. Atomic runs fn in one transaction
// keyed by the owning contract; an error from fn discards every write.
type Store interface {
	Reader
	Atomic(ctx context.Context, contractID uuid.UUID, fn func(tx Tx) error) error
	ContractIDForApplication(ctx context.Context, applicationID uuid.UUID) (uuid.UUID, error)
	ContractIDForAgreement(ctx context.Context, agreementID uuid.UUID) (uuid.UUID, error)
}
