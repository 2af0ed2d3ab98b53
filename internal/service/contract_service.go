package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/staffing-contracts/internal/model"
	"github.com/nurpe/staffing-contracts/internal/registry"
	"github.com/nurpe/staffing-contracts/internal/workflow"
)

type ExcelGenerator interface {
	Generate(report model.ApplicantReport) ([]byte, error)
}

type PDFGenerator interface {
	Generate(summary model.ContractSummary) ([]byte, error)
}

// ApplicantSource lists an institution's applications for export.
type ApplicantSource interface {
	ListApplicantRows(ctx context.Context, institutionID uuid.UUID) ([]model.ApplicantRow, error)
}

type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
	Now          func() time.Time
}

// ContractService puts authorization, retries and logging around the
// workflow engine.
type ContractService struct {
	engine     *workflow.Engine
	registry   *registry.Registry
	applicants ApplicantSource
	excel      ExcelGenerator
	pdf        PDFGenerator
	log        zerolog.Logger

	maxRetries int
	backoff    time.Duration
	now        func() time.Time
}

func NewContractService(
	engine *workflow.Engine,
	reg *registry.Registry,
	applicants ApplicantSource,
	excel ExcelGenerator,
	pdf PDFGenerator,
	log zerolog.Logger,
	opts Options,
) *ContractService {
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 25 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ContractService{
		engine:     engine,
		registry:   reg,
		applicants: applicants,
		excel:      excel,
		pdf:        pdf,
		log:        log,
		maxRetries: opts.MaxRetries,
		backoff:    opts.RetryBackoff,
		now:        opts.Now,
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

func (s *ContractService) ContractType(id string) (registry.Resolution, error) {
	return s.registry.Resolve(id)
}

func (s *ContractService) CreateContract(ctx context.Context, p model.Principal, input CreateContractInput) (workflow.Outcome, error) {
	institutionID := input.InstitutionID
	switch {
	case p.IsInstitution():
		institutionID = p.ActorID()
	case p.IsAdmin():
		if institutionID == uuid.Nil {
			return workflow.Outcome{}, fmt.Errorf("%w: institution_id is required", ErrInvalidInput)
		}
	default:
		return workflow.Outcome{}, ErrPermissionDenied
	}
	return s.run(ctx, "create_contract", p, func() (workflow.Outcome, error) {
		return s.engine.CreateContract(ctx, workflow.CreateContractInput{
			ContractTypeID:  input.ContractTypeID,
			InstitutionID:   institutionID,
			Title:           input.Title,
			StartDate:       input.StartDate,
			EndDate:         input.EndDate,
			PositionsSought: input.PositionsSought,
			Fields:          input.Fields,
			Publish:         input.Publish,
		}, actorRef(p))
	})
}

// GetContract shows a contract to its owner, to admins and to the applicant
// side, which browses contracts to apply.
func (s *ContractService) GetContract(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Contract, error) {
	contract, err := s.engine.Contract(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsInstitution() && contract.InstitutionID != p.ActorID() {
		return nil, ErrPermissionDenied
	}
	return contract, nil
}

func (s *ContractService) ListContracts(ctx context.Context, p model.Principal) ([]model.Contract, error) {
	if !p.IsInstitution() {
		return nil, ErrPermissionDenied
	}
	return s.engine.ContractsByInstitution(ctx, p.ActorID())
}

func (s *ContractService) UpdateContract(ctx context.Context, p model.Principal, id uuid.UUID, patch model.ContractPatch) (workflow.Outcome, error) {
	if err := s.ownContract(ctx, p, id); err != nil {
		return workflow.Outcome{}, err
	}
	return s.run(ctx, "update_contract", p, func() (workflow.Outcome, error) {
		return s.engine.UpdateContract(ctx, id, patch, actorRef(p))
	})
}

func (s *ContractService) TransitionContract(ctx context.Context, p model.Principal, id uuid.UUID, target model.ContractStatus, reason string) (workflow.Outcome, error) {
	if err := s.ownContract(ctx, p, id); err != nil {
		return workflow.Outcome{}, err
	}
	return s.run(ctx, "transition_contract", p, func() (workflow.Outcome, error) {
		return s.engine.TransitionContract(ctx, id, target, reason, actorRef(p))
	})
}

func (s *ContractService) CancelContract(ctx context.Context, p model.Principal, id uuid.UUID, reason string) (workflow.Outcome, error) {
	return s.TransitionContract(ctx, p, id, model.ContractStatusCancelled, reason)
}

func (s *ContractService) ContractCancellationFee(ctx context.Context, p model.Principal, id uuid.UUID) (bool, error) {
	if err := s.ownContract(ctx, p, id); err != nil {
		return false, err
	}
	return s.engine.ContractCancellationFeeFlag(ctx, id)
}

func (s *ContractService) SubmitApplication(ctx context.Context, p model.Principal, contractID uuid.UUID) (workflow.Outcome, error) {
	if !p.IsApplicantSide() {
		return workflow.Outcome{}, ErrPermissionDenied
	}
	return s.run(ctx, "submit_application", p, func() (workflow.Outcome, error) {
		return s.engine.SubmitApplication(ctx, contractID, p.ActorID(), actorRef(p))
	})
}

// ListApplications returns every application to the contract owner and
// admins, and only their own to applicants.
func (s *ContractService) ListApplications(ctx context.Context, p model.Principal, contractID uuid.UUID) ([]model.Application, error) {
	contract, err := s.engine.Contract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	apps, err := s.engine.Applications(ctx, contractID)
	if err != nil {
		return nil, err
	}
	switch {
	case p.IsAdmin():
		return apps, nil
	case p.IsInstitution():
		if contract.InstitutionID != p.ActorID() {
			return nil, ErrPermissionDenied
		}
		return apps, nil
	case p.IsApplicantSide():
		own := make([]model.Application, 0, 1)
		for _, app := range apps {
			if app.ApplicantID == p.ActorID() {
				own = append(own, app)
			}
		}
		return own, nil
	default:
		return nil, ErrPermissionDenied
	}
}

func (s *ContractService) ProposeCandidate(ctx context.Context, p model.Principal, applicationID uuid.UUID, personRef string) (workflow.Outcome, error) {
	if _, err := s.ownApplication(ctx, p, applicationID); err != nil {
		return workflow.Outcome{}, err
	}
	return s.run(ctx, "propose_candidate", p, func() (workflow.Outcome, error) {
		return s.engine.ProposeCandidate(ctx, applicationID, personRef, actorRef(p))
	})
}

func (s *ContractService) AcceptCandidate(ctx context.Context, p model.Principal, applicationID, candidateID uuid.UUID) (workflow.Outcome, error) {
	if err := s.decidesApplication(ctx, p, applicationID); err != nil {
		return workflow.Outcome{}, err
	}
	return s.run(ctx, "accept_candidate", p, func() (workflow.Outcome, error) {
		return s.engine.AcceptCandidate(ctx, applicationID, candidateID, actorRef(p))
	})
}

func (s *ContractService) DecideApplication(ctx context.Context, p model.Principal, applicationID uuid.UUID, decision model.Decision) (workflow.Outcome, error) {
	if err := s.decidesApplication(ctx, p, applicationID); err != nil {
		return workflow.Outcome{}, err
	}
	return s.run(ctx, "decide_application", p, func() (workflow.Outcome, error) {
		return s.engine.DecideApplication(ctx, applicationID, decision, actorRef(p))
	})
}

func (s *ContractService) WithdrawApplication(ctx context.Context, p model.Principal, applicationID uuid.UUID, reason string) (workflow.Outcome, error) {
	if _, err := s.ownApplication(ctx, p, applicationID); err != nil {
		return workflow.Outcome{}, err
	}
	out, err := s.run(ctx, "withdraw_application", p, func() (workflow.Outcome, error) {
		return s.engine.WithdrawApplication(ctx, applicationID, reason, actorRef(p))
	})
	if err == nil && out.FeeFlag {
		s.log.Info().
			Str("application_id", applicationID.String()).
			Str("contract_id", out.Application.ContractID.String()).
			Msg("fee-bearing withdrawal")
	}
	return out, err
}

func (s *ContractService) WithdrawalFee(ctx context.Context, p model.Principal, applicationID uuid.UUID) (bool, error) {
	if _, err := s.ownApplication(ctx, p, applicationID); err != nil {
		return false, err
	}
	return s.engine.ComputeCancellationFeeFlag(ctx, applicationID)
}

func (s *ContractService) GetAgreement(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Agreement, error) {
	agreement, err := s.engine.Agreement(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsAdmin() {
		return agreement, nil
	}
	if _, err := s.agreementParty(ctx, p, agreement); err != nil {
		return nil, err
	}
	return agreement, nil
}

func (s *ContractService) EnterFees(ctx context.Context, p model.Principal, id uuid.UUID, amount float64) (workflow.Outcome, error) {
	agreement, err := s.engine.Agreement(ctx, id)
	if err != nil {
		return workflow.Outcome{}, err
	}
	if !p.IsAdmin() {
		party, err := s.agreementParty(ctx, p, agreement)
		if err != nil {
			return workflow.Outcome{}, err
		}
		if party != model.PartyAgency {
			return workflow.Outcome{}, ErrPermissionDenied
		}
	}
	return s.run(ctx, "enter_fees", p, func() (workflow.Outcome, error) {
		return s.engine.EnterFees(ctx, id, amount, actorRef(p))
	})
}

// SignAgreement signs for the side the principal belongs to. Admins cannot
// sign on anybody's behalf.
func (s *ContractService) SignAgreement(ctx context.Context, p model.Principal, id uuid.UUID) (workflow.Outcome, error) {
	agreement, err := s.engine.Agreement(ctx, id)
	if err != nil {
		return workflow.Outcome{}, err
	}
	party, err := s.agreementParty(ctx, p, agreement)
	if err != nil {
		return workflow.Outcome{}, err
	}
	return s.run(ctx, "sign_agreement", p, func() (workflow.Outcome, error) {
		return s.engine.SignAgreement(ctx, id, party, actorRef(p))
	})
}

// run executes op, re-running it on ConcurrencyConflict up to the retry
// budget. Every attempt reads fresh state.
func (s *ContractService) run(ctx context.Context, op string, p model.Principal, fn func() (workflow.Outcome, error)) (workflow.Outcome, error) {
	var (
		out workflow.Outcome
		err error
	)
	for attempt := 0; ; attempt++ {
		out, err = fn()
		if err == nil || !workflow.Retryable(err) || attempt >= s.maxRetries {
			break
		}
		s.log.Debug().Str("op", op).Int("attempt", attempt+1).Msg("retrying after concurrency conflict")
		select {
		case <-ctx.Done():
			return workflow.Outcome{}, ctx.Err()
		case <-time.After(s.backoff * time.Duration(attempt+1)):
		}
	}
	if err != nil {
		s.logFailure(op, p, err)
		return workflow.Outcome{}, err
	}
	for _, event := range out.Events {
		s.log.Info().
			Str("op", op).
			Str("event", string(event.Type)).
			Str("contract_id", event.ContractID.String()).
			Bool("fee_flag", event.FeeFlag).
			Msg("workflow event")
	}
	return out, nil
}

func (s *ContractService) logFailure(op string, p model.Principal, err error) {
	kind := workflow.Kind(err)
	entry := s.log.Warn()
	if kind == "Internal" {
		entry = s.log.Error()
	}
	entry.Err(err).
		Str("op", op).
		Str("kind", kind).
		Str("actor", actorRef(p)).
		Msg("workflow operation failed")
}

func (s *ContractService) ownContract(ctx context.Context, p model.Principal, id uuid.UUID) error {
	if p.IsAdmin() {
		return nil
	}
	if !p.IsInstitution() {
		return ErrPermissionDenied
	}
	contract, err := s.engine.Contract(ctx, id)
	if err != nil {
		return err
	}
	if contract.InstitutionID != p.ActorID() {
		return ErrPermissionDenied
	}
	return nil
}

func (s *ContractService) ownApplication(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Application, error) {
	app, err := s.engine.Application(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsAdmin() {
		return app, nil
	}
	if !p.IsApplicantSide() || app.ApplicantID != p.ActorID() {
		return nil, ErrPermissionDenied
	}
	return app, nil
}

func (s *ContractService) decidesApplication(ctx context.Context, p model.Principal, applicationID uuid.UUID) error {
	app, err := s.engine.Application(ctx, applicationID)
	if err != nil {
		return err
	}
	return s.ownContract(ctx, p, app.ContractID)
}

// agreementParty resolves which side of the agreement p may act for.
func (s *ContractService) agreementParty(ctx context.Context, p model.Principal, agreement *model.Agreement) (model.Party, error) {
	party, ok := p.Party()
	if !ok {
		return "", ErrPermissionDenied
	}
	switch party {
	case model.PartyAgency:
		app, err := s.engine.Application(ctx, agreement.ApplicationID)
		if err != nil {
			return "", err
		}
		if app.ApplicantID != p.ActorID() {
			return "", ErrPermissionDenied
		}
	case model.PartyClient:
		contract, err := s.engine.Contract(ctx, agreement.ContractID)
		if err != nil {
			return "", err
		}
		if contract.InstitutionID != p.ActorID() {
			return "", ErrPermissionDenied
		}
	}
	return party, nil
}

func actorRef(p model.Principal) string {
	return fmt.Sprintf("%s:%s", p.Role, p.UserID)
}

// IsPermissionDenied is used by the transport to pick 403.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}
