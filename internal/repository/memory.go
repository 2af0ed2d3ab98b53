package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nurpe/staffing-contracts/internal/model"
	"github.com/nurpe/staffing-contracts/internal/workflow"
)

// MemoryStore keeps workflow records in process memory. Transactions stage
// their writes and apply them only when the callback succeeds.
type MemoryStore struct {
	mu           sync.RWMutex
	contracts    map[uuid.UUID]model.Contract
	applications map[uuid.UUID]model.Application
	agreements   map[uuid.UUID]model.Agreement
	events       []model.Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contracts:    map[uuid.UUID]model.Contract{},
		applications: map[uuid.UUID]model.Application{},
		agreements:   map[uuid.UUID]model.Agreement{},
	}
}

func (s *MemoryStore) Atomic(ctx context.Context, contractID uuid.UUID, fn func(tx workflow.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		base:         s,
		contracts:    map[uuid.UUID]model.Contract{},
		applications: map[uuid.UUID]model.Application{},
		agreements:   map[uuid.UUID]model.Agreement{},
	}
	if err := fn(tx); err != nil {
		return err
	}
	for id, c := range tx.contracts {
		s.contracts[id] = c
	}
	for id, a := range tx.applications {
		s.applications[id] = a
	}
	for id, a := range tx.agreements {
		s.agreements[id] = a
	}
	s.events = append(s.events, tx.events...)
	return nil
}

func (s *MemoryStore) ContractIDForApplication(_ context.Context, applicationID uuid.UUID) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.applications[applicationID]
	if !ok {
		return uuid.Nil, notFound("application", applicationID)
	}
	return app.ContractID, nil
}

func (s *MemoryStore) ContractIDForAgreement(_ context.Context, agreementID uuid.UUID) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agreement, ok := s.agreements[agreementID]
	if !ok {
		return uuid.Nil, notFound("agreement", agreementID)
	}
	return agreement.ContractID, nil
}

func (s *MemoryStore) GetContract(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().contract(id)
}

func (s *MemoryStore) ListContractsByInstitution(_ context.Context, institutionID uuid.UUID) ([]model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().contractsByInstitution(institutionID), nil
}

func (s *MemoryStore) GetApplication(_ context.Context, id uuid.UUID) (*model.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().application(id)
}

func (s *MemoryStore) ListApplications(_ context.Context, contractID uuid.UUID) ([]model.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().applicationsOf(contractID), nil
}

func (s *MemoryStore) GetAgreement(_ context.Context, id uuid.UUID) (*model.Agreement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().agreement(id)
}

func (s *MemoryStore) GetAgreementByApplication(_ context.Context, applicationID uuid.UUID) (*model.Agreement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().agreementOf(applicationID)
}

func (s *MemoryStore) ListEvents(_ context.Context, contractID uuid.UUID) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().eventsOf(contractID), nil
}

func (s *MemoryStore) view() memoryView {
	return memoryView{layers: []*memoryLayer{{
		contracts:    s.contracts,
		applications: s.applications,
		agreements:   s.agreements,
		events:       s.events,
	}}}
}

type memoryLayer struct {
	contracts    map[uuid.UUID]model.Contract
	applications map[uuid.UUID]model.Application
	agreements   map[uuid.UUID]model.Agreement
	events       []model.Event
}

// memoryView reads through layers, the first layer winning.
type memoryView struct {
	layers []*memoryLayer
}

func (v memoryView) contract(id uuid.UUID) (*model.Contract, error) {
	for _, l := range v.layers {
		if c, ok := l.contracts[id]; ok {
			out := c.Clone()
			return &out, nil
		}
	}
	return nil, notFound("contract", id)
}

func (v memoryView) contractsByInstitution(institutionID uuid.UUID) []model.Contract {
	seen := map[uuid.UUID]struct{}{}
	var out []model.Contract
	for _, l := range v.layers {
		for id, c := range l.contracts {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if c.InstitutionID == institutionID {
				out = append(out, c.Clone())
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (v memoryView) application(id uuid.UUID) (*model.Application, error) {
	for _, l := range v.layers {
		if a, ok := l.applications[id]; ok {
			out := a.Clone()
			return &out, nil
		}
	}
	return nil, notFound("application", id)
}

func (v memoryView) applicationsOf(contractID uuid.UUID) []model.Application {
	seen := map[uuid.UUID]struct{}{}
	var out []model.Application
	for _, l := range v.layers {
		for id, a := range l.applications {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if a.ContractID == contractID {
				out = append(out, a.Clone())
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppliedAt.Equal(out[j].AppliedAt) {
			return out[i].AppliedAt.Before(out[j].AppliedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (v memoryView) agreement(id uuid.UUID) (*model.Agreement, error) {
	for _, l := range v.layers {
		if a, ok := l.agreements[id]; ok {
			out := a.Clone()
			return &out, nil
		}
	}
	return nil, notFound("agreement", id)
}

func (v memoryView) agreementOf(applicationID uuid.UUID) (*model.Agreement, error) {
	seen := map[uuid.UUID]struct{}{}
	for _, l := range v.layers {
		for id, a := range l.agreements {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if a.ApplicationID == applicationID {
				out := a.Clone()
				return &out, nil
			}
		}
	}
	return nil, notFound("agreement for application", applicationID)
}

func (v memoryView) eventsOf(contractID uuid.UUID) []model.Event {
	var out []model.Event
	for i := len(v.layers) - 1; i >= 0; i-- {
		for _, e := range v.layers[i].events {
			if e.ContractID == contractID {
				out = append(out, e)
			}
		}
	}
	return out
}

type memoryTx struct {
	base         *MemoryStore
	contracts    map[uuid.UUID]model.Contract
	applications map[uuid.UUID]model.Application
	agreements   map[uuid.UUID]model.Agreement
	events       []model.Event
}

func (t *memoryTx) view() memoryView {
	return memoryView{layers: []*memoryLayer{
		{contracts: t.contracts, applications: t.applications, agreements: t.agreements, events: t.events},
		{contracts: t.base.contracts, applications: t.base.applications, agreements: t.base.agreements, events: t.base.events},
	}}
}

func (t *memoryTx) GetContract(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	return t.view().contract(id)
}

func (t *memoryTx) ListContractsByInstitution(_ context.Context, institutionID uuid.UUID) ([]model.Contract, error) {
	return t.view().contractsByInstitution(institutionID), nil
}

func (t *memoryTx) GetApplication(_ context.Context, id uuid.UUID) (*model.Application, error) {
	return t.view().application(id)
}

func (t *memoryTx) ListApplications(_ context.Context, contractID uuid.UUID) ([]model.Application, error) {
	return t.view().applicationsOf(contractID), nil
}

func (t *memoryTx) GetAgreement(_ context.Context, id uuid.UUID) (*model.Agreement, error) {
	return t.view().agreement(id)
}

func (t *memoryTx) GetAgreementByApplication(_ context.Context, applicationID uuid.UUID) (*model.Agreement, error) {
	return t.view().agreementOf(applicationID)
}

func (t *memoryTx) ListEvents(_ context.Context, contractID uuid.UUID) ([]model.Event, error) {
	return t.view().eventsOf(contractID), nil
}

func (t *memoryTx) InsertContract(_ context.Context, contract *model.Contract) error {
	if _, err := t.view().contract(contract.ID); err == nil {
		return duplicate("contract", contract.ID)
	}
	t.contracts[contract.ID] = contract.Clone()
	return nil
}

func (t *memoryTx) UpdateContract(_ context.Context, contract *model.Contract) error {
	if _, err := t.view().contract(contract.ID); err != nil {
		return err
	}
	t.contracts[contract.ID] = contract.Clone()
	return nil
}

func (t *memoryTx) InsertApplication(_ context.Context, application *model.Application) error {
	if _, err := t.view().application(application.ID); err == nil {
		return duplicate("application", application.ID)
	}
	if _, err := t.view().contract(application.ContractID); err != nil {
		return err
	}
	t.applications[application.ID] = application.Clone()
	return nil
}

func (t *memoryTx) UpdateApplication(_ context.Context, application *model.Application) error {
	if _, err := t.view().application(application.ID); err != nil {
		return err
	}
	t.applications[application.ID] = application.Clone()
	return nil
}

func (t *memoryTx) InsertAgreement(_ context.Context, agreement *model.Agreement) error {
	if _, err := t.view().agreementOf(agreement.ApplicationID); err == nil {
		return duplicate("agreement for application", agreement.ApplicationID)
	}
	t.agreements[agreement.ID] = agreement.Clone()
	return nil
}

func (t *memoryTx) UpdateAgreement(_ context.Context, agreement *model.Agreement) error {
	if _, err := t.view().agreement(agreement.ID); err != nil {
		return err
	}
	t.agreements[agreement.ID] = agreement.Clone()
	return nil
}

func (t *memoryTx) AppendEvent(_ context.Context, event model.Event) error {
	t.events = append(t.events, event)
	return nil
}

func (s *MemoryStore) ListApplicantRows(_ context.Context, institutionID uuid.UUID) ([]model.ApplicantRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	view := s.view()
	var rows []model.ApplicantRow
	for _, contract := range view.contractsByInstitution(institutionID) {
		for _, app := range view.applicationsOf(contract.ID) {
			row := model.ApplicantRow{
				ContractID:        contract.ID,
				ContractTitle:     contract.Title,
				ContractTypeID:    contract.ContractTypeID,
				ContractStatus:    contract.Status,
				StartDate:         contract.StartDate,
				ApplicationID:     app.ID,
				ApplicantID:       app.ApplicantID,
				ApplicationStatus: app.Status,
				AppliedAt:         app.AppliedAt,
				CandidateCount:    len(app.Candidates),
			}
			for _, c := range app.Candidates {
				if c.IsAccepted {
					row.AcceptedCandidate = c.PersonRef
				}
			}
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].StartDate.Before(rows[j].StartDate)
	})
	return rows, nil
}
