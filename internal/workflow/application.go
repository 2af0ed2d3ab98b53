package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/staffing-contracts/internal/model"
	"github.com/nurpe/staffing-contracts/internal/policy"
)

func (e *Engine) SubmitApplication(ctx context.Context, contractID, applicantID uuid.UUID, actor string) (Outcome, error) {
	if applicantID == uuid.Nil {
		return Outcome{}, fmt.Errorf("%w: applicant_id is required", ErrValidationFailed)
	}
	var out Outcome
	err := e.inContract(ctx, contractID, func(tx Tx) error {
		contract, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return err
		}
		if err := checkAcceptsApplications(contract); err != nil {
			return err
		}
		existing, err := tx.ListApplications(ctx, contractID)
		if err != nil {
			return err
		}
		for _, app := range existing {
			if app.ApplicantID == applicantID && app.Status.Live() {
				return fmt.Errorf("%w: applicant %s already has application %s on this contract", ErrValidationFailed, applicantID, app.ID)
			}
		}

		now := e.clock()
		app := model.Application{
			ID:          e.newID(),
			ContractID:  contractID,
			ApplicantID: applicantID,
			Status:      model.ApplicationStatusPending,
			AppliedAt:   now,
			Candidates:  []model.Candidate{},
			UpdatedAt:   now,
		}
		if err := tx.InsertApplication(ctx, &app); err != nil {
			return err
		}
		rec := e.recorder(tx, actor)
		if err := rec.record(ctx, model.Event{
			Type:          model.EventApplicationSubmitted,
			ContractID:    contractID,
			ApplicationID: idPtr(app.ID),
		}); err != nil {
			return err
		}
		out = Outcome{Contract: contract, Application: &app, Events: rec.events}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// DecideApplication is the institution's accept/reject decision.
//
// Accepting directly is only possible for applications without proposed
// candidates; applications with candidates are accepted through
// AcceptCandidate.
func (e *Engine) DecideApplication(ctx context.Context, applicationID uuid.UUID, decision model.Decision, actor string) (Outcome, error) {
	if decision != model.DecisionAccept && decision != model.DecisionReject {
		return Outcome{}, fmt.Errorf("%w: unknown decision %q", ErrValidationFailed, decision)
	}
	contractID, err := e.store.ContractIDForApplication(ctx, applicationID)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	err = e.inContract(ctx, contractID, func(tx Tx) error {
		app, err := tx.GetApplication(ctx, applicationID)
		if err != nil {
			return err
		}
		contract, err := tx.GetContract(ctx, app.ContractID)
		if err != nil {
			return err
		}
		rec := e.recorder(tx, actor)

		if decision == model.DecisionReject {
			if err := e.reject(ctx, tx, rec, app); err != nil {
				return err
			}
			out = Outcome{Contract: contract, Application: app, Events: rec.events}
			return nil
		}

		switch app.Status {
		case model.ApplicationStatusAccepted:
			out = Outcome{Contract: contract, Application: app}
			if agreement, err := tx.GetAgreementByApplication(ctx, app.ID); err == nil {
				out.Agreement = agreement
			}
			return nil
		case model.ApplicationStatusRejected, model.ApplicationStatusWithdrawn:
			return fmt.Errorf("%w: application %s is %s", ErrAlreadyTerminal, app.ID, app.Status)
		}
		if app.DecisionUnit() == model.DecisionCandidateLevel {
			return fmt.Errorf("%w: application %s has proposed candidates; accept one of them", ErrValidationFailed, app.ID)
		}
		agreement, err := e.accept(ctx, tx, rec, contract, app)
		if err != nil {
			return err
		}
		out = Outcome{Contract: contract, Application: app, Agreement: agreement, Events: rec.events}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

func (e *Engine) reject(ctx context.Context, tx Tx, rec *recorder, app *model.Application) error {
	switch app.Status {
	case model.ApplicationStatusPending:
	case model.ApplicationStatusAccepted:
		return fmt.Errorf("%w: application %s is already accepted", ErrApplicationNotOpen, app.ID)
	default:
		return fmt.Errorf("%w: application %s is %s", ErrAlreadyTerminal, app.ID, app.Status)
	}
	now := e.clock()
	app.Status = model.ApplicationStatusRejected
	app.DecidedAt = &now
	app.UpdatedAt = now
	if err := tx.UpdateApplication(ctx, app); err != nil {
		return err
	}
	return rec.record(ctx, model.Event{
		Type:          model.EventApplicationRejected,
		ContractID:    app.ContractID,
		ApplicationID: idPtr(app.ID),
	})
}

// accept moves a pending application to accepted and lets the contract
// state machine decide whether the contract is now booked.
func (e *Engine) accept(ctx context.Context, tx Tx, rec *recorder, contract *model.Contract, app *model.Application) (*model.Agreement, error) {
	if app.Status != model.ApplicationStatusPending {
		return nil, fmt.Errorf("%w: application %s is %s", ErrApplicationNotOpen, app.ID, app.Status)
	}
	if err := checkAcceptsApplications(contract); err != nil {
		return nil, err
	}
	now := e.clock()
	app.Status = model.ApplicationStatusAccepted
	app.DecidedAt = &now
	app.UpdatedAt = now
	if err := tx.UpdateApplication(ctx, app); err != nil {
		return nil, err
	}
	if err := rec.record(ctx, model.Event{
		Type:          model.EventApplicationAccepted,
		ContractID:    contract.ID,
		ApplicationID: idPtr(app.ID),
	}); err != nil {
		return nil, err
	}
	return e.evaluateBooking(ctx, tx, rec, contract)
}

// WithdrawApplication withdraws a pending or accepted application. Whether the
// withdrawal is fee-bearing is decided on the state before the withdrawal and
// reported in Outcome.FeeFlag and on the withdrawal event; it never blocks.
func (e *Engine) WithdrawApplication(ctx context.Context, applicationID uuid.UUID, reason string, actor string) (Outcome, error) {
	contractID, err := e.store.ContractIDForApplication(ctx, applicationID)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	err = e.inContract(ctx, contractID, func(tx Tx) error {
		app, err := tx.GetApplication(ctx, applicationID)
		if err != nil {
			return err
		}
		if !app.Status.Live() {
			return fmt.Errorf("%w: application %s is %s", ErrAlreadyTerminal, app.ID, app.Status)
		}
		contract, err := tx.GetContract(ctx, app.ContractID)
		if err != nil {
			return err
		}

		now := e.clock()
		fee := policy.MayIncurFee(*app, *contract, now)
		wasAccepted := app.Status == model.ApplicationStatusAccepted

		app.Status = model.ApplicationStatusWithdrawn
		app.UpdatedAt = now
		if reason = strings.TrimSpace(reason); reason != "" {
			app.WithdrawalReason = &reason
		}
		if err := tx.UpdateApplication(ctx, app); err != nil {
			return err
		}
		rec := e.recorder(tx, actor)
		if err := rec.record(ctx, model.Event{
			Type:          model.EventApplicationWithdrawn,
			ContractID:    contract.ID,
			ApplicationID: idPtr(app.ID),
			FeeFlag:       fee,
			Reason:        reason,
		}); err != nil {
			return err
		}

		// A booked contract must keep exactly one accepted application, so
		// losing it cancels the booking.
		if wasAccepted && contract.Status == model.ContractStatusBooked {
			if _, err := e.moveContract(ctx, tx, rec, contract, model.ContractStatusCancelled, "accepted application withdrawn", false); err != nil {
				return err
			}
			if err := e.rejectPending(ctx, tx, rec, contract.ID, "contract cancelled"); err != nil {
				return err
			}
		}
		out = Outcome{Contract: contract, Application: app, FeeFlag: fee, Events: rec.events}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// ComputeCancellationFeeFlag tells an applicant whether withdrawing now would
// be fee-bearing, without withdrawing.
func (e *Engine) ComputeCancellationFeeFlag(ctx context.Context, applicationID uuid.UUID) (bool, error) {
	app, err := e.store.GetApplication(ctx, applicationID)
	if err != nil {
		return false, err
	}
	contract, err := e.store.GetContract(ctx, app.ContractID)
	if err != nil {
		return false, err
	}
	return policy.MayIncurFee(*app, *contract, e.clock()), nil
}
