package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/staffing-contracts/internal/model"
	"github.com/nurpe/staffing-contracts/internal/policy"
	"github.com/nurpe/staffing-contracts/internal/registry"
)

var contractTransitions = map[model.ContractStatus][]model.ContractStatus{
	model.ContractStatusPending:      {model.ContractStatusOpen},
	model.ContractStatusOpen:         {model.ContractStatusInDiscussion, model.ContractStatusCancelled},
	model.ContractStatusInDiscussion: {model.ContractStatusBooked, model.ContractStatusCancelled},
	model.ContractStatusBooked:       {model.ContractStatusCancelled, model.ContractStatusClosed},
}

func CanTransitionContract(from, to model.ContractStatus) bool {
	for _, next := range contractTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func contractTerminal(status model.ContractStatus) bool {
	return status == model.ContractStatusCancelled || status == model.ContractStatusClosed
}

func checkContractEdge(contract *model.Contract, target model.ContractStatus) error {
	if !target.Valid() {
		return fmt.Errorf("%w: unknown contract status %q", ErrValidationFailed, target)
	}
	if CanTransitionContract(contract.Status, target) {
		return nil
	}
	switch {
	case contractTerminal(contract.Status),
		contract.Status == model.ContractStatusBooked && target == model.ContractStatusBooked:
		return fmt.Errorf("%w: contract %s is %s", ErrContractLocked, contract.ID, contract.Status)
	case target == model.ContractStatusBooked:
		return fmt.Errorf("%w: contract %s cannot be booked from %s", ErrInvalidBookingState, contract.ID, contract.Status)
	default:
		return fmt.Errorf("%w: contract %s cannot move from %s to %s", ErrValidationFailed, contract.ID, contract.Status, target)
	}
}

// checkAcceptsApplications gates submission, proposals and acceptance.
func checkAcceptsApplications(contract *model.Contract) error {
	switch {
	case contract.Status.AcceptsApplications():
		return nil
	case contract.Status == model.ContractStatusPending:
		return fmt.Errorf("%w: contract %s is not published", ErrInvalidBookingState, contract.ID)
	default:
		return fmt.Errorf("%w: contract %s is %s", ErrContractLocked, contract.ID, contract.Status)
	}
}

type CreateContractInput struct {
	ContractTypeID  string
	InstitutionID   uuid.UUID
	Title           string
	StartDate       time.Time
	EndDate         *time.Time
	PositionsSought []string
	Fields          map[string]any
	Publish         bool
}

func (e *Engine) CreateContract(ctx context.Context, input CreateContractInput, actor string) (Outcome, error) {
	behavior, err := e.registry.Behavior(input.ContractTypeID)
	if err != nil {
		return Outcome{}, err
	}
	if input.InstitutionID == uuid.Nil {
		return Outcome{}, fmt.Errorf("%w: institution_id is required", ErrValidationFailed)
	}
	if strings.TrimSpace(input.Title) == "" {
		return Outcome{}, fmt.Errorf("%w: title is required", ErrValidationFailed)
	}
	if err := behavior.Validate(registry.ContractInput{
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		PositionsSought: input.PositionsSought,
		Fields:          input.Fields,
	}); err != nil {
		return Outcome{}, err
	}

	now := e.clock()
	contract := model.Contract{
		ID:              e.newID(),
		ContractTypeID:  input.ContractTypeID,
		InstitutionID:   input.InstitutionID,
		Title:           strings.TrimSpace(input.Title),
		Status:          model.ContractStatusPending,
		StartDate:       input.StartDate.UTC(),
		PositionsSought: append([]string(nil), input.PositionsSought...),
		Fields:          input.Fields,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.EndDate != nil {
		end := input.EndDate.UTC()
		contract.EndDate = &end
	}
	if input.Publish {
		contract.Status = model.ContractStatusOpen
	}

	var out Outcome
	err = e.inContract(ctx, contract.ID, func(tx Tx) error {
		rec := e.recorder(tx, actor)
		if err := tx.InsertContract(ctx, &contract); err != nil {
			return err
		}
		if err := rec.record(ctx, model.Event{Type: model.EventContractCreated, ContractID: contract.ID}); err != nil {
			return err
		}
		out = Outcome{Contract: &contract, Events: rec.events}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// UpdateContract applies owner edits. Edits are refused with ErrContractLocked
// once the contract is booked, cancelled or closed, whatever the field.
func (e *Engine) UpdateContract(ctx context.Context, contractID uuid.UUID, patch model.ContractPatch, actor string) (Outcome, error) {
	var out Outcome
	err := e.inContract(ctx, contractID, func(tx Tx) error {
		contract, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return err
		}
		if !contract.Status.Editable() {
			return fmt.Errorf("%w: contract %s is %s", ErrContractLocked, contract.ID, contract.Status)
		}
		if patch.Empty() {
			return fmt.Errorf("%w: nothing to update", ErrValidationFailed)
		}

		updated := contract.Clone()
		if patch.Title != nil {
			if strings.TrimSpace(*patch.Title) == "" {
				return fmt.Errorf("%w: title is required", ErrValidationFailed)
			}
			updated.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.StartDate != nil {
			updated.StartDate = patch.StartDate.UTC()
		}
		if patch.EndDate != nil {
			end := patch.EndDate.UTC()
			updated.EndDate = &end
		}
		if patch.PositionsSought != nil {
			updated.PositionsSought = append([]string(nil), patch.PositionsSought...)
		}
		if patch.Fields != nil {
			if updated.Fields == nil {
				updated.Fields = map[string]any{}
			}
			for k, v := range patch.Fields {
				updated.Fields[k] = v
			}
		}

		behavior, err := e.registry.Behavior(updated.ContractTypeID)
		if err != nil {
			return err
		}
		if err := behavior.Validate(registry.ContractInput{
			StartDate:       updated.StartDate,
			EndDate:         updated.EndDate,
			PositionsSought: updated.PositionsSought,
			Fields:          updated.Fields,
		}); err != nil {
			return err
		}

		updated.UpdatedAt = e.clock()
		if err := tx.UpdateContract(ctx, &updated); err != nil {
			return err
		}
		rec := e.recorder(tx, actor)
		if err := rec.record(ctx, model.Event{Type: model.EventContractUpdated, ContractID: updated.ID}); err != nil {
			return err
		}
		out = Outcome{Contract: &updated, Events: rec.events}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// TransitionContract moves a contract along its state machine on the owner's
// request. Moving to booked re-runs the booking evaluation; cancelling also
// reports whether the cancellation is fee-bearing and rejects the
// applications still pending.
func (e *Engine) TransitionContract(ctx context.Context, contractID uuid.UUID, target model.ContractStatus, reason string, actor string) (Outcome, error) {
	var out Outcome
	err := e.inContract(ctx, contractID, func(tx Tx) error {
		contract, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return err
		}
		rec := e.recorder(tx, actor)

		fee := false
		if target == model.ContractStatusCancelled {
			fee = policy.ContractCancellationMayIncurFee(*contract, e.clock())
		}
		agreement, err := e.moveContract(ctx, tx, rec, contract, target, reason, fee)
		if err != nil {
			return err
		}
		if target == model.ContractStatusCancelled {
			if err := e.rejectPending(ctx, tx, rec, contract.ID, "contract cancelled"); err != nil {
				return err
			}
		}
		out = Outcome{Contract: contract, Agreement: agreement, FeeFlag: fee, Events: rec.events}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

func (e *Engine) CancelContract(ctx context.Context, contractID uuid.UUID, reason string, actor string) (Outcome, error) {
	return e.TransitionContract(ctx, contractID, model.ContractStatusCancelled, reason, actor)
}

// ContractCancellationFeeFlag evaluates the cancellation fee rule against the
// current state without changing anything.
func (e *Engine) ContractCancellationFeeFlag(ctx context.Context, contractID uuid.UUID) (bool, error) {
	contract, err := e.store.GetContract(ctx, contractID)
	if err != nil {
		return false, err
	}
	return policy.ContractCancellationMayIncurFee(*contract, e.clock()), nil
}

// moveContract applies one edge to contract in place and persists it. The
// agreement is returned when the edge was into booked.
func (e *Engine) moveContract(ctx context.Context, tx Tx, rec *recorder, contract *model.Contract, target model.ContractStatus, reason string, fee bool) (*model.Agreement, error) {
	if err := checkContractEdge(contract, target); err != nil {
		return nil, err
	}

	var agreement *model.Agreement
	if target == model.ContractStatusBooked {
		accepted, err := e.acceptedApplication(ctx, tx, contract.ID)
		if err != nil {
			return nil, err
		}
		agreement, err = e.createAgreement(ctx, tx, rec, contract, accepted)
		if err != nil {
			return nil, err
		}
	}

	from := contract.Status
	contract.Status = target
	contract.UpdatedAt = e.clock()
	if target == model.ContractStatusCancelled && reason != "" {
		r := reason
		contract.CancellationReason = &r
	}
	if err := tx.UpdateContract(ctx, contract); err != nil {
		return nil, err
	}

	event := model.Event{
		Type:       model.EventContractStatus,
		ContractID: contract.ID,
		Reason:     fmt.Sprintf("%s -> %s", from, target),
	}
	switch target {
	case model.ContractStatusBooked:
		event.Type = model.EventContractBooked
		event.ApplicationID = idPtr(agreement.ApplicationID)
		event.AgreementID = idPtr(agreement.ID)
	case model.ContractStatusCancelled:
		event.Type = model.EventContractCancelled
		event.FeeFlag = fee
		if reason != "" {
			event.Reason = reason
		}
	}
	if err := rec.record(ctx, event); err != nil {
		return nil, err
	}
	return agreement, nil
}

// acceptedApplication returns the single accepted application of a contract
// or ErrInvalidBookingState when there are zero or several.
func (e *Engine) acceptedApplication(ctx context.Context, tx Tx, contractID uuid.UUID) (*model.Application, error) {
	apps, err := tx.ListApplications(ctx, contractID)
	if err != nil {
		return nil, err
	}
	var accepted []model.Application
	for _, app := range apps {
		if app.Status == model.ApplicationStatusAccepted {
			accepted = append(accepted, app)
		}
	}
	if len(accepted) != 1 {
		return nil, fmt.Errorf("%w: contract %s has %d accepted applications", ErrInvalidBookingState, contractID, len(accepted))
	}
	return &accepted[0], nil
}

// evaluateBooking runs after an application is accepted. An open contract
// first enters discussion; it is booked only when exactly one application is
// accepted contract-wide.
func (e *Engine) evaluateBooking(ctx context.Context, tx Tx, rec *recorder, contract *model.Contract) (*model.Agreement, error) {
	if contract.Status == model.ContractStatusOpen {
		if _, err := e.moveContract(ctx, tx, rec, contract, model.ContractStatusInDiscussion, "", false); err != nil {
			return nil, err
		}
	}
	if contract.Status != model.ContractStatusInDiscussion {
		return nil, nil
	}
	apps, err := tx.ListApplications(ctx, contract.ID)
	if err != nil {
		return nil, err
	}
	accepted := 0
	for _, app := range apps {
		if app.Status == model.ApplicationStatusAccepted {
			accepted++
		}
	}
	if accepted != 1 {
		return nil, nil
	}
	return e.moveContract(ctx, tx, rec, contract, model.ContractStatusBooked, "", false)
}

// enterDiscussion moves an open contract into discussion; other states are
// left alone.
func (e *Engine) enterDiscussion(ctx context.Context, tx Tx, rec *recorder, contract *model.Contract) error {
	if contract.Status != model.ContractStatusOpen {
		return nil
	}
	_, err := e.moveContract(ctx, tx, rec, contract, model.ContractStatusInDiscussion, "", false)
	return err
}

func (e *Engine) rejectPending(ctx context.Context, tx Tx, rec *recorder, contractID uuid.UUID, reason string) error {
	apps, err := tx.ListApplications(ctx, contractID)
	if err != nil {
		return err
	}
	now := e.clock()
	for i := range apps {
		app := apps[i]
		if app.Status != model.ApplicationStatusPending {
			continue
		}
		app.Status = model.ApplicationStatusRejected
		app.DecidedAt = &now
		app.UpdatedAt = now
		if err := tx.UpdateApplication(ctx, &app); err != nil {
			return err
		}
		if err := rec.record(ctx, model.Event{
			Type:          model.EventApplicationRejected,
			ContractID:    contractID,
			ApplicationID: idPtr(app.ID),
			Reason:        reason,
		}); err != nil {
			return err
		}
	}
	return nil
}
