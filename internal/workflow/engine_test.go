package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/nurpe/staffing-contracts/internal/model"
	"github.com/nurpe/staffing-contracts/internal/registry"
	"github.com/nurpe/staffing-contracts/internal/repository"
	"github.com/nurpe/staffing-contracts/internal/workflow"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	engine      *workflow.Engine
	store       *repository.MemoryStore
	institution uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	store := repository.NewMemoryStore()
	return fixture{
		engine:      workflow.New(store, reg, workflow.WithClock(func() time.Time { return now })),
		store:       store,
		institution: uuid.New(),
	}
}

func nursingInput(institution uuid.UUID, start time.Time) workflow.CreateContractInput {
	end := start.Add(72 * time.Hour)
	return workflow.CreateContractInput{
		ContractTypeID:  "nursing_temporary_contract",
		InstitutionID:   institution,
		Title:           "Night shifts, ICU",
		StartDate:       start,
		EndDate:         &end,
		PositionsSought: []string{"registered_nurse"},
		Fields: map[string]any{
			"facility_name":      "Riverside Care",
			"street_address":     "12 King St",
			"city":               "Toronto",
			"province":           "ON",
			"postal_code":        "M5H 1A1",
			"country":            "Canada",
			"minimum_experience": 2,
			"compensation_mode":  "hourly",
			"hourly_rate":        62.5,
		},
		Publish: true,
	}
}

func permanentInput(institution uuid.UUID) workflow.CreateContractInput {
	return workflow.CreateContractInput{
		ContractTypeID:  "general_practice_permanent_contract",
		InstitutionID:   institution,
		Title:           "Family physician",
		StartDate:       now.Add(30 * 24 * time.Hour),
		PositionsSought: []string{"family_physician"},
		Fields: map[string]any{
			"facility_name":      "Lakeside Clinic",
			"city":               "Halifax",
			"province":           "NS",
			"weekly_schedule":    "Mon-Fri",
			"minimum_experience": 3,
			"annual_salary":      185000,
		},
		Publish: true,
	}
}

func (f fixture) openContract(t *testing.T, start time.Time) model.Contract {
	t.Helper()
	out, err := f.engine.CreateContract(context.Background(), nursingInput(f.institution, start), "institution")
	require.NoError(t, err)
	return *out.Contract
}

func (f fixture) apply(t *testing.T, contractID uuid.UUID) model.Application {
	t.Helper()
	out, err := f.engine.SubmitApplication(context.Background(), contractID, uuid.New(), "agency")
	require.NoError(t, err)
	return *out.Application
}

func eventTypes(events []model.Event) []model.EventType {
	types := make([]model.EventType, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func (f fixture) acceptedCount(t *testing.T, contractID uuid.UUID) int {
	t.Helper()
	apps, err := f.engine.Applications(context.Background(), contractID)
	require.NoError(t, err)
	n := 0
	for _, app := range apps {
		if app.Status == model.ApplicationStatusAccepted {
			n++
		}
	}
	return n
}

func TestCreateContract(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown type is a hard stop", func(t *testing.T) {
		input := nursingInput(f.institution, now.Add(240*time.Hour))
		input.ContractTypeID = "veterinary_contract"
		_, err := f.engine.CreateContract(ctx, input, "institution")
		assert.True(t, errors.Is(err, workflow.ErrUnknownContractType))
	})

	t.Run("schema violations are reported", func(t *testing.T) {
		input := nursingInput(f.institution, now.Add(240*time.Hour))
		delete(input.Fields, "facility_name")
		_, err := f.engine.CreateContract(ctx, input, "institution")
		assert.True(t, errors.Is(err, workflow.ErrValidationFailed))
		assert.ErrorContains(t, err, "facility_name")
	})

	t.Run("draft stays pending until published", func(t *testing.T) {
		input := nursingInput(f.institution, now.Add(240*time.Hour))
		input.Publish = false
		out, err := f.engine.CreateContract(ctx, input, "institution")
		require.NoError(t, err)
		assert.Equal(t, model.ContractStatusPending, out.Contract.Status)
		assert.Equal(t, []model.EventType{model.EventContractCreated}, eventTypes(out.Events))

		_, err = f.engine.SubmitApplication(ctx, out.Contract.ID, uuid.New(), "agency")
		assert.True(t, errors.Is(err, workflow.ErrInvalidBookingState))

		moved, err := f.engine.TransitionContract(ctx, out.Contract.ID, model.ContractStatusOpen, "", "institution")
		require.NoError(t, err)
		assert.Equal(t, model.ContractStatusOpen, moved.Contract.Status)
	})
}

func TestApplicationLevelAcceptanceBooksContract(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract := f.openContract(t, now.Add(240*time.Hour))
	app := f.apply(t, contract.ID)
	other := f.apply(t, contract.ID)

	out, err := f.engine.DecideApplication(ctx, app.ID, model.DecisionAccept, "institution")
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusBooked, out.Contract.Status)
	assert.Equal(t, model.ApplicationStatusAccepted, out.Application.Status)
	require.NotNil(t, out.Agreement)
	assert.Equal(t, app.ID, out.Agreement.ApplicationID)
	assert.Equal(t, model.AgreementStatusPendingSignature, out.Agreement.Status)
	assert.Equal(t, []model.EventType{
		model.EventApplicationAccepted,
		model.EventContractStatus,
		model.EventAgreementCreated,
		model.EventContractBooked,
	}, eventTypes(out.Events))

	t.Run("repeat acceptance is a no-op", func(t *testing.T) {
		again, err := f.engine.DecideApplication(ctx, app.ID, model.DecisionAccept, "institution")
		require.NoError(t, err)
		assert.Empty(t, again.Events)
		assert.Equal(t, out.Agreement.ID, again.Agreement.ID)
	})

	t.Run("booked contract rejects further acceptance", func(t *testing.T) {
		_, err := f.engine.DecideApplication(ctx, other.ID, model.DecisionAccept, "institution")
		assert.True(t, errors.Is(err, workflow.ErrContractLocked))
		assert.Equal(t, 1, f.acceptedCount(t, contract.ID))
	})

	t.Run("booked contract refuses edits", func(t *testing.T) {
		title := "Day shifts"
		_, err := f.engine.UpdateContract(ctx, contract.ID, model.ContractPatch{Title: &title}, "institution")
		assert.True(t, errors.Is(err, workflow.ErrContractLocked))
	})

	t.Run("booked contract refuses new applications", func(t *testing.T) {
		_, err := f.engine.SubmitApplication(ctx, contract.ID, uuid.New(), "agency")
		assert.True(t, errors.Is(err, workflow.ErrContractLocked))
	})

	t.Run("rejecting the accepted application is refused", func(t *testing.T) {
		_, err := f.engine.DecideApplication(ctx, app.ID, model.DecisionReject, "institution")
		assert.True(t, errors.Is(err, workflow.ErrApplicationNotOpen))
	})
}

func TestCandidateLevelAcceptance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract := f.openContract(t, now.Add(240*time.Hour))
	app := f.apply(t, contract.ID)

	first, err := f.engine.ProposeCandidate(ctx, app.ID, "nurse-ana", "agency")
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusInDiscussion, first.Contract.Status)
	second, err := f.engine.ProposeCandidate(ctx, app.ID, "nurse-ben", "agency")
	require.NoError(t, err)

	_, err = f.engine.ProposeCandidate(ctx, app.ID, "NURSE-ANA", "agency")
	assert.True(t, errors.Is(err, workflow.ErrValidationFailed))

	_, err = f.engine.DecideApplication(ctx, app.ID, model.DecisionAccept, "institution")
	assert.True(t, errors.Is(err, workflow.ErrValidationFailed))

	ana := first.Application.Candidates[0]
	ben := second.Application.Candidates[1]

	out, err := f.engine.AcceptCandidate(ctx, app.ID, ana.ID, "institution")
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusBooked, out.Contract.Status)
	assert.Equal(t, 1, workflow.AcceptedCandidates(*out.Application))
	assert.Equal(t, ana.ID, *out.Application.AcceptedCandidateID)
	require.NotNil(t, out.Agreement)

	again, err := f.engine.AcceptCandidate(ctx, app.ID, ana.ID, "institution")
	require.NoError(t, err)
	assert.Empty(t, again.Events)

	_, err = f.engine.AcceptCandidate(ctx, app.ID, ben.ID, "institution")
	assert.True(t, errors.Is(err, workflow.ErrApplicationNotOpen))

	_, err = f.engine.AcceptCandidate(ctx, app.ID, uuid.New(), "institution")
	assert.True(t, errors.Is(err, workflow.ErrNotFound))

	stored, err := f.engine.Application(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, workflow.AcceptedCandidates(*stored))
}

func TestConcurrentAcceptanceBooksOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract := f.openContract(t, now.Add(240*time.Hour))

	var apps []model.Application
	for i := 0; i < 8; i++ {
		apps = append(apps, f.apply(t, contract.ID))
	}

	var (
		mu       sync.Mutex
		booked   int
		refusals []error
	)
	var g errgroup.Group
	for _, app := range apps {
		app := app
		g.Go(func() error {
			out, err := f.engine.DecideApplication(ctx, app.ID, model.DecisionAccept, "institution")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				refusals = append(refusals, err)
				return nil
			}
			if out.Agreement != nil {
				booked++
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 1, booked)
	assert.Len(t, refusals, len(apps)-1)
	for _, err := range refusals {
		assert.True(t, errors.Is(err, workflow.ErrContractLocked) || workflow.Retryable(err), "%v", err)
	}

	stored, err := f.engine.Contract(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusBooked, stored.Status)
	assert.Equal(t, 1, f.acceptedCount(t, contract.ID))
}

func TestConcurrentCandidateAcceptanceSelectsOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract := f.openContract(t, now.Add(240*time.Hour))
	app := f.apply(t, contract.ID)

	var candidates []uuid.UUID
	for _, ref := range []string{"a", "b", "c", "d"} {
		out, err := f.engine.ProposeCandidate(ctx, app.ID, ref, "agency")
		require.NoError(t, err)
		candidates = append(candidates, out.Application.Candidates[len(out.Application.Candidates)-1].ID)
	}

	errs := make([]error, len(candidates))
	var g errgroup.Group
	for i, id := range candidates {
		g.Go(func() error {
			_, errs[i] = f.engine.AcceptCandidate(ctx, app.ID, id, "institution")
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var winner uuid.UUID
	for i, err := range errs {
		if err == nil {
			assert.Equal(t, uuid.Nil, winner, "more than one acceptance succeeded")
			winner = candidates[i]
			continue
		}
		assert.True(t, errors.Is(err, workflow.ErrApplicationNotOpen), "%v", err)
	}
	require.NotEqual(t, uuid.Nil, winner)

	stored, err := f.engine.Application(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusAccepted, stored.Status)
	assert.Equal(t, 1, workflow.AcceptedCandidates(*stored))
	assert.Equal(t, winner, *stored.AcceptedCandidateID)
}

func TestReacceptAfterWithdrawalIsRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract := f.openContract(t, now.Add(240*time.Hour))
	app := f.apply(t, contract.ID)

	proposed, err := f.engine.ProposeCandidate(ctx, app.ID, "nurse-ana", "agency")
	require.NoError(t, err)
	candidateID := proposed.Application.Candidates[0].ID

	_, err = f.engine.AcceptCandidate(ctx, app.ID, candidateID, "institution")
	require.NoError(t, err)
	_, err = f.engine.WithdrawApplication(ctx, app.ID, "", "agency")
	require.NoError(t, err)

	_, err = f.engine.AcceptCandidate(ctx, app.ID, candidateID, "institution")
	assert.True(t, errors.Is(err, workflow.ErrApplicationNotOpen), "%v", err)

	stored, err := f.engine.Application(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusWithdrawn, stored.Status)
}

// checkInvariants asserts that no application holds more than one accepted
// candidate and that a booked contract has exactly one accepted application.
func (f fixture) checkInvariants(t *testing.T, contractID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	apps, err := f.engine.Applications(ctx, contractID)
	require.NoError(t, err)
	accepted := 0
	for _, app := range apps {
		n := workflow.AcceptedCandidates(app)
		assert.LessOrEqual(t, n, 1, "application %s", app.ID)
		if n == 1 {
			require.NotNil(t, app.AcceptedCandidateID)
			c, ok := app.Candidate(*app.AcceptedCandidateID)
			require.True(t, ok)
			assert.True(t, c.IsAccepted)
		}
		if app.Status == model.ApplicationStatusAccepted {
			accepted++
		}
	}
	contract, err := f.engine.Contract(ctx, contractID)
	require.NoError(t, err)
	if contract.Status == model.ContractStatusBooked {
		assert.Equal(t, 1, accepted, "booked contract %s", contractID)
	}
}

// randomStep runs one random operation against the contract's applications.
// Refusals are expected; only unclassified errors fail the test.
func (f fixture) randomStep(t *testing.T, rng *rand.Rand, appIDs []uuid.UUID) {
	ctx := context.Background()
	appID := appIDs[rng.IntN(len(appIDs))]
	var err error
	switch rng.IntN(5) {
	case 0:
		_, err = f.engine.ProposeCandidate(ctx, appID, fmt.Sprintf("person-%d", rng.IntN(4)), "agency")
	case 1:
		var app *model.Application
		if app, err = f.engine.Application(ctx, appID); err == nil && len(app.Candidates) > 0 {
			candidate := app.Candidates[rng.IntN(len(app.Candidates))]
			_, err = f.engine.AcceptCandidate(ctx, appID, candidate.ID, "institution")
		}
	case 2:
		_, err = f.engine.DecideApplication(ctx, appID, model.DecisionAccept, "institution")
	case 3:
		_, err = f.engine.DecideApplication(ctx, appID, model.DecisionReject, "institution")
	case 4:
		_, err = f.engine.WithdrawApplication(ctx, appID, "", "agency")
	}
	if err != nil {
		assert.NotEqual(t, "Internal", workflow.Kind(err), "%v", err)
	}
}

func TestRandomSequencesKeepInvariants(t *testing.T) {
	for seed := uint64(1); seed <= 40; seed++ {
		f := newFixture(t)
		contract := f.openContract(t, now.Add(240*time.Hour))
		appIDs := []uuid.UUID{f.apply(t, contract.ID).ID, f.apply(t, contract.ID).ID, f.apply(t, contract.ID).ID}

		rng := rand.New(rand.NewPCG(seed, 7))
		for step := 0; step < 30; step++ {
			f.randomStep(t, rng, appIDs)
			f.checkInvariants(t, contract.ID)
		}
	}
}

func TestConcurrentRandomSequencesKeepInvariants(t *testing.T) {
	for round := uint64(1); round <= 10; round++ {
		f := newFixture(t)
		contract := f.openContract(t, now.Add(240*time.Hour))
		appIDs := []uuid.UUID{f.apply(t, contract.ID).ID, f.apply(t, contract.ID).ID, f.apply(t, contract.ID).ID}

		var g errgroup.Group
		for worker := uint64(0); worker < 4; worker++ {
			rng := rand.New(rand.NewPCG(round, worker))
			g.Go(func() error {
				for step := 0; step < 15; step++ {
					f.randomStep(t, rng, appIDs)
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())
		f.checkInvariants(t, contract.ID)
	}
}

func TestRejectThenWithdrawIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract := f.openContract(t, now.Add(240*time.Hour))
	app := f.apply(t, contract.ID)

	out, err := f.engine.DecideApplication(ctx, app.ID, model.DecisionReject, "institution")
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusRejected, out.Application.Status)

	_, err = f.engine.WithdrawApplication(ctx, app.ID, "changed plans", "agency")
	assert.True(t, errors.Is(err, workflow.ErrAlreadyTerminal))

	_, err = f.engine.DecideApplication(ctx, app.ID, model.DecisionAccept, "institution")
	assert.True(t, errors.Is(err, workflow.ErrAlreadyTerminal))

	_, err = f.engine.ProposeCandidate(ctx, app.ID, "nurse", "agency")
	assert.True(t, errors.Is(err, workflow.ErrApplicationNotOpen))
}

func TestOneLiveApplicationPerApplicant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract := f.openContract(t, now.Add(240*time.Hour))
	applicant := uuid.New()

	first, err := f.engine.SubmitApplication(ctx, contract.ID, applicant, "agency")
	require.NoError(t, err)
	_, err = f.engine.SubmitApplication(ctx, contract.ID, applicant, "agency")
	assert.True(t, errors.Is(err, workflow.ErrValidationFailed))

	_, err = f.engine.WithdrawApplication(ctx, first.Application.ID, "", "agency")
	require.NoError(t, err)
	_, err = f.engine.SubmitApplication(ctx, contract.ID, applicant, "agency")
	assert.NoError(t, err)
}

func TestWithdrawalFeeFlag(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted on booked contract inside the window", func(t *testing.T) {
		f := newFixture(t)
		contract := f.openContract(t, now.Add(24*time.Hour))
		app := f.apply(t, contract.ID)
		pending := f.apply(t, contract.ID)
		_, err := f.engine.DecideApplication(ctx, app.ID, model.DecisionAccept, "institution")
		require.NoError(t, err)

		flag, err := f.engine.ComputeCancellationFeeFlag(ctx, app.ID)
		require.NoError(t, err)
		assert.True(t, flag)

		out, err := f.engine.WithdrawApplication(ctx, app.ID, "sick", "agency")
		require.NoError(t, err)
		assert.True(t, out.FeeFlag)
		assert.Equal(t, model.ApplicationStatusWithdrawn, out.Application.Status)
		assert.Equal(t, model.ContractStatusCancelled, out.Contract.Status)
		assert.True(t, out.Events[0].FeeFlag)

		stored, err := f.engine.Application(ctx, pending.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationStatusRejected, stored.Status)
	})

	t.Run("outside the window", func(t *testing.T) {
		f := newFixture(t)
		contract := f.openContract(t, now.Add(49*time.Hour))
		app := f.apply(t, contract.ID)
		_, err := f.engine.DecideApplication(ctx, app.ID, model.DecisionAccept, "institution")
		require.NoError(t, err)

		out, err := f.engine.WithdrawApplication(ctx, app.ID, "", "agency")
		require.NoError(t, err)
		assert.False(t, out.FeeFlag)
	})

	t.Run("pending application never carries a fee", func(t *testing.T) {
		f := newFixture(t)
		contract := f.openContract(t, now.Add(time.Hour))
		app := f.apply(t, contract.ID)

		out, err := f.engine.WithdrawApplication(ctx, app.ID, "", "agency")
		require.NoError(t, err)
		assert.False(t, out.FeeFlag)
		assert.Equal(t, model.ContractStatusOpen, out.Contract.Status)
	})
}

func TestCancelContract(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract := f.openContract(t, now.Add(12*time.Hour))
	app := f.apply(t, contract.ID)
	pending := f.apply(t, contract.ID)
	_, err := f.engine.DecideApplication(ctx, app.ID, model.DecisionAccept, "institution")
	require.NoError(t, err)

	flag, err := f.engine.ContractCancellationFeeFlag(ctx, contract.ID)
	require.NoError(t, err)
	assert.True(t, flag)

	out, err := f.engine.CancelContract(ctx, contract.ID, "ward closed", "institution")
	require.NoError(t, err)
	assert.True(t, out.FeeFlag)
	assert.Equal(t, model.ContractStatusCancelled, out.Contract.Status)
	require.NotNil(t, out.Contract.CancellationReason)
	assert.Equal(t, "ward closed", *out.Contract.CancellationReason)

	stored, err := f.engine.Application(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusRejected, stored.Status)

	_, err = f.engine.TransitionContract(ctx, contract.ID, model.ContractStatusOpen, "", "institution")
	assert.True(t, errors.Is(err, workflow.ErrContractLocked))
	_, err = f.engine.TransitionContract(ctx, contract.ID, model.ContractStatusBooked, "", "institution")
	assert.True(t, errors.Is(err, workflow.ErrContractLocked))
	_, err = f.engine.CancelContract(ctx, contract.ID, "", "institution")
	assert.True(t, errors.Is(err, workflow.ErrContractLocked))
}

func TestManualBookingNeedsExactlyOneAcceptance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract := f.openContract(t, now.Add(240*time.Hour))

	_, err := f.engine.TransitionContract(ctx, contract.ID, model.ContractStatusBooked, "", "institution")
	assert.True(t, errors.Is(err, workflow.ErrInvalidBookingState))

	_, err = f.engine.TransitionContract(ctx, contract.ID, model.ContractStatusInDiscussion, "", "institution")
	require.NoError(t, err)
	_, err = f.engine.TransitionContract(ctx, contract.ID, model.ContractStatusBooked, "", "institution")
	assert.True(t, errors.Is(err, workflow.ErrInvalidBookingState))
}

func TestAgreementCreationFailureRollsBackBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract := f.openContract(t, now.Add(240*time.Hour))
	app := f.apply(t, contract.ID)
	before, err := f.engine.Events(ctx, contract.ID)
	require.NoError(t, err)

	blind := workflow.New(f.store, registry.New(), workflow.WithClock(func() time.Time { return now }))
	_, err = blind.DecideApplication(ctx, app.ID, model.DecisionAccept, "institution")
	assert.True(t, errors.Is(err, workflow.ErrUnknownContractType))

	stored, err := f.engine.Contract(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusOpen, stored.Status)
	storedApp, err := f.engine.Application(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusPending, storedApp.Status)
	_, err = f.store.GetAgreementByApplication(ctx, app.ID)
	assert.True(t, errors.Is(err, workflow.ErrNotFound))
	after, err := f.engine.Events(ctx, contract.ID)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestAgreementFeesAndSigning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.engine.CreateContract(ctx, permanentInput(f.institution), "institution")
	require.NoError(t, err)
	app := f.apply(t, created.Contract.ID)

	booked, err := f.engine.DecideApplication(ctx, app.ID, model.DecisionAccept, "institution")
	require.NoError(t, err)
	agreement := booked.Agreement
	require.NotNil(t, agreement)
	assert.True(t, agreement.FeesRequired)
	assert.Equal(t, model.AgreementStatusAwaitingFees, agreement.Status)

	_, err = f.engine.SignAgreement(ctx, agreement.ID, model.PartyAgency, "agency")
	assert.True(t, errors.Is(err, workflow.ErrValidationFailed))

	_, err = f.engine.EnterFees(ctx, agreement.ID, 0, "agency")
	assert.True(t, errors.Is(err, workflow.ErrValidationFailed))

	withFees, err := f.engine.EnterFees(ctx, agreement.ID, 18500, "agency")
	require.NoError(t, err)
	assert.Equal(t, model.AgreementStatusPendingSignature, withFees.Agreement.Status)

	client, err := f.engine.SignAgreement(ctx, agreement.ID, model.PartyClient, "institution")
	require.NoError(t, err)
	assert.True(t, client.Agreement.ClientSigned)
	assert.False(t, client.Agreement.AgencySigned)
	assert.Equal(t, model.AgreementStatusPendingSignature, client.Agreement.Status)

	repeat, err := f.engine.SignAgreement(ctx, agreement.ID, model.PartyClient, "institution")
	require.NoError(t, err)
	assert.Empty(t, repeat.Events)

	full, err := f.engine.SignAgreement(ctx, agreement.ID, model.PartyAgency, "agency")
	require.NoError(t, err)
	assert.Equal(t, model.AgreementStatusFullySigned, full.Agreement.Status)

	_, err = f.engine.EnterFees(ctx, agreement.ID, 20000, "agency")
	assert.True(t, errors.Is(err, workflow.ErrValidationFailed))

	_, err = f.engine.SignAgreement(ctx, agreement.ID, "notary", "agency")
	assert.True(t, errors.Is(err, workflow.ErrValidationFailed))
}

func TestAgreementWithoutFees(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract := f.openContract(t, now.Add(240*time.Hour))
	app := f.apply(t, contract.ID)
	booked, err := f.engine.DecideApplication(ctx, app.ID, model.DecisionAccept, "institution")
	require.NoError(t, err)

	_, err = f.engine.EnterFees(ctx, booked.Agreement.ID, 100, "agency")
	assert.True(t, errors.Is(err, workflow.ErrValidationFailed))

	signed, err := f.engine.SignAgreement(ctx, booked.Agreement.ID, model.PartyAgency, "agency")
	require.NoError(t, err)
	assert.Equal(t, model.AgreementStatusPendingSignature, signed.Agreement.Status)

	_, err = f.engine.WithdrawApplication(ctx, app.ID, "", "agency")
	require.NoError(t, err)
	_, err = f.engine.SignAgreement(ctx, booked.Agreement.ID, model.PartyClient, "institution")
	assert.True(t, errors.Is(err, workflow.ErrAlreadyTerminal))
}

func TestMissingIdsAreValidationFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.DecideApplication(ctx, uuid.New(), model.DecisionAccept, "institution")
	assert.True(t, errors.Is(err, workflow.ErrNotFound))
	assert.True(t, errors.Is(err, workflow.ErrValidationFailed))

	_, err = f.engine.SubmitApplication(ctx, uuid.New(), uuid.New(), "agency")
	assert.True(t, errors.Is(err, workflow.ErrNotFound))

	_, err = f.engine.SignAgreement(ctx, uuid.New(), model.PartyClient, "institution")
	assert.True(t, errors.Is(err, workflow.ErrNotFound))

	_, err = f.engine.Applications(ctx, uuid.New())
	assert.True(t, errors.Is(err, workflow.ErrNotFound))
}

func TestUpdateContractRevalidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract := f.openContract(t, now.Add(240*time.Hour))

	before := now.Add(200 * time.Hour)
	_, err := f.engine.UpdateContract(ctx, contract.ID, model.ContractPatch{EndDate: &before}, "institution")
	assert.True(t, errors.Is(err, workflow.ErrValidationFailed))

	_, err = f.engine.UpdateContract(ctx, contract.ID, model.ContractPatch{}, "institution")
	assert.True(t, errors.Is(err, workflow.ErrValidationFailed))

	_, err = f.engine.UpdateContract(ctx, contract.ID, model.ContractPatch{
		Fields: map[string]any{"compensation_mode": "daily"},
	}, "institution")
	assert.ErrorContains(t, err, "daily_rate (required)")

	out, err := f.engine.UpdateContract(ctx, contract.ID, model.ContractPatch{
		Fields: map[string]any{"compensation_mode": "daily", "daily_rate": 480},
	}, "institution")
	require.NoError(t, err)
	assert.Equal(t, "daily", out.Contract.Fields["compensation_mode"])
	assert.Equal(t, "Riverside Care", out.Contract.Fields["facility_name"])

	events, err := f.engine.Events(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventContractUpdated, events[len(events)-1].Type)
	assert.Equal(t, "institution", events[len(events)-1].ActorRef)
}
