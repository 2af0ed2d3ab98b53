package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nurpe/staffing-contracts/internal/model"
)

// DeriveAgreementStatus is the only source of an agreement's status.
func DeriveAgreementStatus(agencySigned, clientSigned, feesRequired, feesEntered bool) model.AgreementStatus {
	switch {
	case agencySigned && clientSigned:
		return model.AgreementStatusFullySigned
	case agencySigned || clientSigned:
		return model.AgreementStatusPendingSignature
	case feesRequired && !feesEntered:
		return model.AgreementStatusAwaitingFees
	default:
		return model.AgreementStatusPendingSignature
	}
}

func refreshAgreementStatus(a *model.Agreement) {
	a.Status = DeriveAgreementStatus(a.AgencySigned, a.ClientSigned, a.FeesRequired, a.FeesEntered)
}

// createAgreement anchors the agreement of an accepted application. It runs
// inside the booking transaction, so any failure here undoes the booking.
func (e *Engine) createAgreement(ctx context.Context, tx Tx, rec *recorder, contract *model.Contract, app *model.Application) (*model.Agreement, error) {
	existing, err := tx.GetAgreementByApplication(ctx, app.ID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: application %s already has agreement %s", ErrInvalidBookingState, app.ID, existing.ID)
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	behavior, err := e.registry.Behavior(contract.ContractTypeID)
	if err != nil {
		return nil, err
	}

	now := e.clock()
	agreement := model.Agreement{
		ID:            e.newID(),
		ApplicationID: app.ID,
		ContractID:    contract.ID,
		FeesRequired:  behavior.FeesRequired(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	refreshAgreementStatus(&agreement)
	if err := tx.InsertAgreement(ctx, &agreement); err != nil {
		return nil, err
	}
	if err := rec.record(ctx, model.Event{
		Type:          model.EventAgreementCreated,
		ContractID:    contract.ID,
		ApplicationID: idPtr(app.ID),
		AgreementID:   idPtr(agreement.ID),
	}); err != nil {
		return nil, err
	}
	return &agreement, nil
}

// agreementTx loads the agreement and checks that its application is still
// standing.
func agreementTx(ctx context.Context, tx Tx, agreementID uuid.UUID) (*model.Agreement, error) {
	agreement, err := tx.GetAgreement(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	app, err := tx.GetApplication(ctx, agreement.ApplicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != model.ApplicationStatusAccepted {
		return nil, fmt.Errorf("%w: application %s is %s", ErrAlreadyTerminal, app.ID, app.Status)
	}
	return agreement, nil
}

// EnterFees records the agency's negotiated fee. It is only possible on
// agreements that require fees and before the agency has signed.
func (e *Engine) EnterFees(ctx context.Context, agreementID uuid.UUID, amount float64, actor string) (Outcome, error) {
	if amount <= 0 {
		return Outcome{}, fmt.Errorf("%w: fee amount must be positive", ErrValidationFailed)
	}
	contractID, err := e.store.ContractIDForAgreement(ctx, agreementID)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	err = e.inContract(ctx, contractID, func(tx Tx) error {
		agreement, err := agreementTx(ctx, tx, agreementID)
		if err != nil {
			return err
		}
		if !agreement.FeesRequired {
			return fmt.Errorf("%w: agreement %s does not take fees", ErrValidationFailed, agreement.ID)
		}
		if agreement.AgencySigned {
			return fmt.Errorf("%w: fees of agreement %s are fixed once the agency signed", ErrValidationFailed, agreement.ID)
		}
		agreement.FeesEntered = true
		agreement.FeeAmount = &amount
		agreement.UpdatedAt = e.clock()
		refreshAgreementStatus(agreement)
		if err := tx.UpdateAgreement(ctx, agreement); err != nil {
			return err
		}
		rec := e.recorder(tx, actor)
		if err := rec.record(ctx, model.Event{
			Type:          model.EventAgreementFees,
			ContractID:    agreement.ContractID,
			ApplicationID: idPtr(agreement.ApplicationID),
			AgreementID:   idPtr(agreement.ID),
		}); err != nil {
			return err
		}
		out = Outcome{Agreement: agreement, Events: rec.events}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// SignAgreement records one party's signature. Signing twice is a no-op, and
// a signature only ever sets the signing party's own flag.
func (e *Engine) SignAgreement(ctx context.Context, agreementID uuid.UUID, party model.Party, actor string) (Outcome, error) {
	if !party.Valid() {
		return Outcome{}, fmt.Errorf("%w: unknown party %q", ErrValidationFailed, party)
	}
	contractID, err := e.store.ContractIDForAgreement(ctx, agreementID)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	err = e.inContract(ctx, contractID, func(tx Tx) error {
		agreement, err := agreementTx(ctx, tx, agreementID)
		if err != nil {
			return err
		}
		now := e.clock()
		switch party {
		case model.PartyAgency:
			if agreement.AgencySigned {
				out = Outcome{Agreement: agreement}
				return nil
			}
			if agreement.FeesRequired && !agreement.FeesEntered {
				return fmt.Errorf("%w: fees must be entered before the agency signs agreement %s", ErrValidationFailed, agreement.ID)
			}
			agreement.AgencySigned = true
			agreement.AgencySignedAt = &now
		case model.PartyClient:
			if agreement.ClientSigned {
				out = Outcome{Agreement: agreement}
				return nil
			}
			agreement.ClientSigned = true
			agreement.ClientSignedAt = &now
		}
		agreement.UpdatedAt = now
		refreshAgreementStatus(agreement)
		if err := tx.UpdateAgreement(ctx, agreement); err != nil {
			return err
		}
		rec := e.recorder(tx, actor)
		if err := rec.record(ctx, model.Event{
			Type:          model.EventAgreementSigned,
			ContractID:    agreement.ContractID,
			ApplicationID: idPtr(agreement.ApplicationID),
			AgreementID:   idPtr(agreement.ID),
			Reason:        string(party),
		}); err != nil {
			return err
		}
		out = Outcome{Agreement: agreement, Events: rec.events}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}
