package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/staffing-contracts/internal/model"
)

// ProposeCandidate adds a person to a pending application. Proposing on an
// open contract starts the discussion phase.
func (e *Engine) ProposeCandidate(ctx context.Context, applicationID uuid.UUID, personRef string, actor string) (Outcome, error) {
	personRef = strings.TrimSpace(personRef)
	if personRef == "" {
		return Outcome{}, fmt.Errorf("%w: person_ref is required", ErrValidationFailed)
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
		if app.Status != model.ApplicationStatusPending {
			return fmt.Errorf("%w: application %s is %s", ErrApplicationNotOpen, app.ID, app.Status)
		}
		contract, err := tx.GetContract(ctx, app.ContractID)
		if err != nil {
			return err
		}
		if err := checkAcceptsApplications(contract); err != nil {
			return err
		}
		for _, c := range app.Candidates {
			if strings.EqualFold(c.PersonRef, personRef) {
				return fmt.Errorf("%w: %s is already proposed on application %s", ErrValidationFailed, personRef, app.ID)
			}
		}

		now := e.clock()
		candidate := model.Candidate{
			ID:            e.newID(),
			ApplicationID: app.ID,
			PersonRef:     personRef,
			ProposedAt:    now,
		}
		app.Candidates = append(app.Candidates, candidate)
		app.UpdatedAt = now
		if err := tx.UpdateApplication(ctx, app); err != nil {
			return err
		}
		rec := e.recorder(tx, actor)
		if err := rec.record(ctx, model.Event{
			Type:          model.EventCandidateProposed,
			ContractID:    contract.ID,
			ApplicationID: idPtr(app.ID),
			Reason:        personRef,
		}); err != nil {
			return err
		}
		if err := e.enterDiscussion(ctx, tx, rec, contract); err != nil {
			return err
		}
		out = Outcome{Contract: contract, Application: app, Events: rec.events}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// AcceptCandidate selects one candidate of a pending application. The
// selection is exclusive: every other candidate of the application is
// unselected. Re-accepting the candidate of an accepted application is a
// no-op; any other acceptance on a non-pending application fails with
// ErrApplicationNotOpen. A successful selection accepts the application.
func (e *Engine) AcceptCandidate(ctx context.Context, applicationID, candidateID uuid.UUID, actor string) (Outcome, error) {
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
		candidate, ok := app.Candidate(candidateID)
		if !ok {
			return notFound("candidate", candidateID)
		}
		contract, err := tx.GetContract(ctx, app.ContractID)
		if err != nil {
			return err
		}

		if app.Status == model.ApplicationStatusAccepted && candidate.IsAccepted &&
			app.AcceptedCandidateID != nil && *app.AcceptedCandidateID == candidateID {
			out = Outcome{Contract: contract, Application: app}
			if agreement, err := tx.GetAgreementByApplication(ctx, app.ID); err == nil {
				out.Agreement = agreement
			}
			return nil
		}
		if app.Status != model.ApplicationStatusPending {
			return fmt.Errorf("%w: application %s is %s", ErrApplicationNotOpen, app.ID, app.Status)
		}
		if err := checkAcceptsApplications(contract); err != nil {
			return err
		}

		SelectCandidate(app, candidateID)
		rec := e.recorder(tx, actor)
		if err := rec.record(ctx, model.Event{
			Type:          model.EventCandidateAccepted,
			ContractID:    contract.ID,
			ApplicationID: idPtr(app.ID),
			Reason:        candidate.PersonRef,
		}); err != nil {
			return err
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

// SelectCandidate marks candidateID accepted and every sibling unaccepted.
func SelectCandidate(app *model.Application, candidateID uuid.UUID) {
	for i := range app.Candidates {
		app.Candidates[i].IsAccepted = app.Candidates[i].ID == candidateID
	}
	app.AcceptedCandidateID = idPtr(candidateID)
}

// AcceptedCandidates counts selected candidates; the workflow keeps it at
// most one.
func AcceptedCandidates(app model.Application) int {
	n := 0
	for _, c := range app.Candidates {
		if c.IsAccepted {
			n++
		}
	}
	return n
}
