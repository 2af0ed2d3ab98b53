// Package workflow implements the contract lifecycle: contract, application,
// candidate and agreement state machines over a transactional store.
//
// Every mutating operation runs inside a single-writer section keyed by the
// owning contract, and inside one store transaction. Operations return the
// updated snapshots plus the events they recorded; delivering those events
// (billing, notifications) is the caller's job.
package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/staffing-contracts/internal/model"
	"github.com/nurpe/staffing-contracts/internal/registry"
)

// Outcome is the result of a mutating operation. Fields not touched by the
// operation are nil.
type Outcome struct {
	Contract    *model.Contract    `json:"contract,omitempty"`
	Application *model.Application `json:"application,omitempty"`
	Agreement   *model.Agreement   `json:"agreement,omitempty"`
	FeeFlag     bool               `json:"fee_flag"`
	Events      []model.Event      `json:"events"`
}

type Engine struct {
	store    Store
	registry *registry.Registry
	locks    *Locker
	now      func() time.Time
	newID    func() uuid.UUID
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLockTimeout(timeout time.Duration) Option {
	return func(e *Engine) { e.locks = NewLocker(timeout) }
}

func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(e *Engine) { e.newID = newID }
}

func New(store Store, reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		registry: reg,
		locks:    NewLocker(DefaultLockTimeout),
		now:      time.Now,
		newID:    uuid.New,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) clock() time.Time {
	return e.now().UTC()
}

// inContract serializes fn with every other writer of the same contract.
func (e *Engine) inContract(ctx context.Context, contractID uuid.UUID, fn func(tx Tx) error) error {
	unlock, err := e.locks.Lock(ctx, contractID)
	if err != nil {
		return err
	}
	defer unlock()
	return e.store.Atomic(ctx, contractID, fn)
}

// recorder collects events appended during one transaction.
type recorder struct {
	engine *Engine
	tx     Tx
	actor  string
	events []model.Event
}

func (e *Engine) recorder(tx Tx, actor string) *recorder {
	return &recorder{engine: e, tx: tx, actor: actor}
}

func (r *recorder) record(ctx context.Context, event model.Event) error {
	event.ID = r.engine.newID()
	event.ActorRef = r.actor
	if event.At.IsZero() {
		event.At = r.engine.clock()
	}
	if err := r.tx.AppendEvent(ctx, event); err != nil {
		return err
	}
	r.events = append(r.events, event)
	return nil
}

func idPtr(id uuid.UUID) *uuid.UUID {
	return &id
}

func (e *Engine) ResolveContractType(contractTypeID string) (registry.Resolution, error) {
	return e.registry.Resolve(contractTypeID)
}

func (e *Engine) Contract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	return e.store.GetContract(ctx, id)
}

func (e *Engine) ContractsByInstitution(ctx context.Context, institutionID uuid.UUID) ([]model.Contract, error) {
	return e.store.ListContractsByInstitution(ctx, institutionID)
}

func (e *Engine) Application(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	return e.store.GetApplication(ctx, id)
}

func (e *Engine) Applications(ctx context.Context, contractID uuid.UUID) ([]model.Application, error) {
	if _, err := e.store.GetContract(ctx, contractID); err != nil {
		return nil, err
	}
	return e.store.ListApplications(ctx, contractID)
}

func (e *Engine) Agreement(ctx context.Context, id uuid.UUID) (*model.Agreement, error) {
	return e.store.GetAgreement(ctx, id)
}

func (e *Engine) Events(ctx context.Context, contractID uuid.UUID) ([]model.Event, error) {
	return e.store.ListEvents(ctx, contractID)
}

func (e *Engine) AgreementByApplication(ctx context.Context, applicationID uuid.UUID) (*model.Agreement, error) {
	return e.store.GetAgreementByApplication(ctx, applicationID)
}
