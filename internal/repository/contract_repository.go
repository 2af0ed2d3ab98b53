package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nurpe/staffing-contracts/internal/model"
	"github.com/nurpe/staffing-contracts/internal/workflow"
)

// ContractRepository is the postgres store. Atomic serializes writers of one
// contract with a transaction-scoped advisory lock.
type ContractRepository struct {
	queries
	lockTimeout time.Duration
}

func NewContractRepository(db *gorm.DB, lockTimeout time.Duration) *ContractRepository {
	if lockTimeout <= 0 {
		lockTimeout = workflow.DefaultLockTimeout
	}
	return &ContractRepository{queries: queries{db: db}, lockTimeout: lockTimeout}
}

func (r *ContractRepository) Atomic(ctx context.Context, contractID uuid.UUID, fn func(tx workflow.Tx) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())).Error; err != nil {
			return err
		}
		if err := tx.Exec(`SELECT pg_advisory_xact_lock(hashtextextended(?, 0))`, contractID.String()).Error; err != nil {
			return err
		}
		return fn(queries{db: tx})
	})
	return translateError(err)
}

func (r *ContractRepository) ContractIDForApplication(ctx context.Context, applicationID uuid.UUID) (uuid.UUID, error) {
	var contractID uuid.UUID
	if err := r.db.WithContext(ctx).Raw(`
		SELECT contract_id FROM contract_applications WHERE id = ?
	`, applicationID).Scan(&contractID).Error; err != nil {
		return uuid.Nil, translateError(err)
	}
	if contractID == uuid.Nil {
		return uuid.Nil, notFound("application", applicationID)
	}
	return contractID, nil
}

func (r *ContractRepository) ContractIDForAgreement(ctx context.Context, agreementID uuid.UUID) (uuid.UUID, error) {
	var contractID uuid.UUID
	if err := r.db.WithContext(ctx).Raw(`
		SELECT contract_id FROM agreements WHERE id = ?
	`, agreementID).Scan(&contractID).Error; err != nil {
		return uuid.Nil, translateError(err)
	}
	if contractID == uuid.Nil {
		return uuid.Nil, notFound("agreement", agreementID)
	}
	return contractID, nil
}

func (r *ContractRepository) ListApplicantRows(ctx context.Context, institutionID uuid.UUID) ([]model.ApplicantRow, error) {
	var rows []struct {
		ContractID        uuid.UUID
		ContractTitle     string
		ContractTypeID    string
		ContractStatus    string
		StartDate         time.Time
		ApplicationID     uuid.UUID
		ApplicantID       uuid.UUID
		ApplicationStatus string
		AppliedAt         time.Time
		CandidateCount    int
		AcceptedCandidate string
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			c.id AS contract_id,
			c.title AS contract_title,
			c.contract_type_id,
			c.status AS contract_status,
			c.start_date,
			a.id AS application_id,
			a.applicant_id,
			a.status AS application_status,
			a.applied_at,
			(SELECT COUNT(*) FROM application_candidates ac WHERE ac.application_id = a.id) AS candidate_count,
			COALESCE((
				SELECT ac.person_ref FROM application_candidates ac
				WHERE ac.application_id = a.id AND ac.is_accepted
			), '') AS accepted_candidate
		FROM contract_applications a
		JOIN contracts c ON c.id = a.contract_id
		WHERE c.institution_id = ?
		ORDER BY c.start_date ASC, a.applied_at ASC
	`, institutionID).Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}

	out := make([]model.ApplicantRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.ApplicantRow{
			ContractID:        row.ContractID,
			ContractTitle:     row.ContractTitle,
			ContractTypeID:    row.ContractTypeID,
			ContractStatus:    model.ContractStatus(row.ContractStatus),
			StartDate:         row.StartDate,
			ApplicationID:     row.ApplicationID,
			ApplicantID:       row.ApplicantID,
			ApplicationStatus: model.ApplicationStatus(row.ApplicationStatus),
			AppliedAt:         row.AppliedAt,
			CandidateCount:    row.CandidateCount,
			AcceptedCandidate: row.AcceptedCandidate,
		})
	}
	return out, nil
}

// queries runs against either the pool or an open transaction.
type queries struct {
	db *gorm.DB
}

type contractRow struct {
	ID                 uuid.UUID
	ContractTypeID     string
	InstitutionID      uuid.UUID
	Title              string
	Status             string
	StartDate          time.Time
	EndDate            *time.Time
	PositionsSought    pq.StringArray
	Fields             datatypes.JSON
	CancellationReason *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

const contractColumns = `
	id, contract_type_id, institution_id, title, status, start_date, end_date,
	positions_sought, fields, cancellation_reason, created_at, updated_at`

func (row contractRow) toModel() (model.Contract, error) {
	contract := model.Contract{
		ID:                 row.ID,
		ContractTypeID:     row.ContractTypeID,
		InstitutionID:      row.InstitutionID,
		Title:              row.Title,
		Status:             model.ContractStatus(row.Status),
		StartDate:          row.StartDate.UTC(),
		PositionsSought:    []string(row.PositionsSought),
		CancellationReason: row.CancellationReason,
		CreatedAt:          row.CreatedAt.UTC(),
		UpdatedAt:          row.UpdatedAt.UTC(),
	}
	if row.EndDate != nil {
		end := row.EndDate.UTC()
		contract.EndDate = &end
	}
	if len(row.Fields) > 0 {
		if err := json.Unmarshal(row.Fields, &contract.Fields); err != nil {
			return model.Contract{}, fmt.Errorf("decode fields of contract %s: %w", row.ID, err)
		}
	}
	return contract, nil
}

func encodeFields(fields map[string]any) (datatypes.JSON, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: fields: %v", workflow.ErrValidationFailed, err)
	}
	return datatypes.JSON(raw), nil
}

func (q queries) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var row contractRow
	if err := q.db.WithContext(ctx).Raw(`SELECT `+contractColumns+` FROM contracts WHERE id = ?`, id).Scan(&row).Error; err != nil {
		return nil, translateError(err)
	}
	if row.ID == uuid.Nil {
		return nil, notFound("contract", id)
	}
	contract, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (q queries) ListContractsByInstitution(ctx context.Context, institutionID uuid.UUID) ([]model.Contract, error) {
	var rows []contractRow
	if err := q.db.WithContext(ctx).Raw(`
		SELECT `+contractColumns+` FROM contracts
		WHERE institution_id = ?
		ORDER BY created_at ASC, id ASC
	`, institutionID).Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	out := make([]model.Contract, 0, len(rows))
	for _, row := range rows {
		contract, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, contract)
	}
	return out, nil
}

func (q queries) InsertContract(ctx context.Context, contract *model.Contract) error {
	fields, err := encodeFields(contract.Fields)
	if err != nil {
		return err
	}
	return translateError(q.db.WithContext(ctx).Exec(`
		INSERT INTO contracts (`+contractColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		contract.ID,
		contract.ContractTypeID,
		contract.InstitutionID,
		contract.Title,
		contract.Status,
		contract.StartDate,
		contract.EndDate,
		pq.StringArray(contract.PositionsSought),
		fields,
		contract.CancellationReason,
		contract.CreatedAt,
		contract.UpdatedAt,
	).Error)
}

func (q queries) UpdateContract(ctx context.Context, contract *model.Contract) error {
	fields, err := encodeFields(contract.Fields)
	if err != nil {
		return err
	}
	res := q.db.WithContext(ctx).Exec(`
		UPDATE contracts
		SET
			title = ?,
			status = ?,
			start_date = ?,
			end_date = ?,
			positions_sought = ?,
			fields = ?,
			cancellation_reason = ?,
			updated_at = ?
		WHERE id = ?
	`,
		contract.Title,
		contract.Status,
		contract.StartDate,
		contract.EndDate,
		pq.StringArray(contract.PositionsSought),
		fields,
		contract.CancellationReason,
		contract.UpdatedAt,
		contract.ID,
	)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("contract", contract.ID)
	}
	return nil
}

type applicationRow struct {
	ID                  uuid.UUID
	ContractID          uuid.UUID
	ApplicantID         uuid.UUID
	Status              string
	AppliedAt           time.Time
	AcceptedCandidateID *uuid.UUID
	WithdrawalReason    *string
	DecidedAt           *time.Time
	UpdatedAt           time.Time
}

const applicationColumns = `
	id, contract_id, applicant_id, status, applied_at, accepted_candidate_id,
	withdrawal_reason, decided_at, updated_at`

type candidateRow struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	PersonRef     string
	IsAccepted    bool
	ProposedAt    time.Time
}

func (row applicationRow) toModel(candidates []candidateRow) model.Application {
	app := model.Application{
		ID:                  row.ID,
		ContractID:          row.ContractID,
		ApplicantID:         row.ApplicantID,
		Status:              model.ApplicationStatus(row.Status),
		AppliedAt:           row.AppliedAt.UTC(),
		AcceptedCandidateID: row.AcceptedCandidateID,
		WithdrawalReason:    row.WithdrawalReason,
		DecidedAt:           row.DecidedAt,
		UpdatedAt:           row.UpdatedAt.UTC(),
		Candidates:          make([]model.Candidate, 0, len(candidates)),
	}
	for _, c := range candidates {
		app.Candidates = append(app.Candidates, model.Candidate{
			ID:            c.ID,
			ApplicationID: c.ApplicationID,
			PersonRef:     c.PersonRef,
			IsAccepted:    c.IsAccepted,
			ProposedAt:    c.ProposedAt.UTC(),
		})
	}
	return app
}

func (q queries) candidatesOf(ctx context.Context, applicationIDs []uuid.UUID) (map[uuid.UUID][]candidateRow, error) {
	out := map[uuid.UUID][]candidateRow{}
	if len(applicationIDs) == 0 {
		return out, nil
	}
	var rows []candidateRow
	if err := q.db.WithContext(ctx).Raw(`
		SELECT id, application_id, person_ref, is_accepted, proposed_at
		FROM application_candidates
		WHERE application_id IN ?
		ORDER BY proposed_at ASC, id ASC
	`, applicationIDs).Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	for _, row := range rows {
		out[row.ApplicationID] = append(out[row.ApplicationID], row)
	}
	return out, nil
}

func (q queries) GetApplication(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	var row applicationRow
	if err := q.db.WithContext(ctx).Raw(`SELECT `+applicationColumns+` FROM contract_applications WHERE id = ?`, id).Scan(&row).Error; err != nil {
		return nil, translateError(err)
	}
	if row.ID == uuid.Nil {
		return nil, notFound("application", id)
	}
	candidates, err := q.candidatesOf(ctx, []uuid.UUID{row.ID})
	if err != nil {
		return nil, err
	}
	app := row.toModel(candidates[row.ID])
	return &app, nil
}

func (q queries) ListApplications(ctx context.Context, contractID uuid.UUID) ([]model.Application, error) {
	var rows []applicationRow
	if err := q.db.WithContext(ctx).Raw(`
		SELECT `+applicationColumns+` FROM contract_applications
		WHERE contract_id = ?
		ORDER BY applied_at ASC, id ASC
	`, contractID).Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	candidates, err := q.candidatesOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]model.Application, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel(candidates[row.ID]))
	}
	return out, nil
}

func (q queries) InsertApplication(ctx context.Context, app *model.Application) error {
	if err := q.db.WithContext(ctx).Exec(`
		INSERT INTO contract_applications (`+applicationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		app.ID,
		app.ContractID,
		app.ApplicantID,
		app.Status,
		app.AppliedAt,
		app.AcceptedCandidateID,
		app.WithdrawalReason,
		app.DecidedAt,
		app.UpdatedAt,
	).Error; err != nil {
		return translateError(err)
	}
	return q.saveCandidates(ctx, app)
}

func (q queries) UpdateApplication(ctx context.Context, app *model.Application) error {
	res := q.db.WithContext(ctx).Exec(`
		UPDATE contract_applications
		SET
			status = ?,
			accepted_candidate_id = ?,
			withdrawal_reason = ?,
			decided_at = ?,
			updated_at = ?
		WHERE id = ?
	`,
		app.Status,
		app.AcceptedCandidateID,
		app.WithdrawalReason,
		app.DecidedAt,
		app.UpdatedAt,
		app.ID,
	)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("application", app.ID)
	}
	return q.saveCandidates(ctx, app)
}

// saveCandidates upserts candidates. Unselected ones are written first so the
// one-accepted-per-application index never sees two selections.
func (q queries) saveCandidates(ctx context.Context, app *model.Application) error {
	candidates := append([]model.Candidate(nil), app.Candidates...)
	sort.SliceStable(candidates, func(i, j int) bool {
		return !candidates[i].IsAccepted && candidates[j].IsAccepted
	})
	for _, c := range candidates {
		if err := q.db.WithContext(ctx).Exec(`
			INSERT INTO application_candidates (id, application_id, person_ref, is_accepted, proposed_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET is_accepted = EXCLUDED.is_accepted
		`, c.ID, app.ID, c.PersonRef, c.IsAccepted, c.ProposedAt).Error; err != nil {
			return translateError(err)
		}
	}
	return nil
}

const agreementColumns = `
	id, application_id, contract_id, agency_signed, client_signed, fees_required,
	fees_entered, fee_amount, status, agency_signed_at, client_signed_at,
	created_at, updated_at`

type agreementRow struct {
	ID             uuid.UUID
	ApplicationID  uuid.UUID
	ContractID     uuid.UUID
	AgencySigned   bool
	ClientSigned   bool
	FeesRequired   bool
	FeesEntered    bool
	FeeAmount      *float64
	Status         string
	AgencySignedAt *time.Time
	ClientSignedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (row agreementRow) toModel() *model.Agreement {
	return &model.Agreement{
		ID:             row.ID,
		ApplicationID:  row.ApplicationID,
		ContractID:     row.ContractID,
		AgencySigned:   row.AgencySigned,
		ClientSigned:   row.ClientSigned,
		FeesRequired:   row.FeesRequired,
		FeesEntered:    row.FeesEntered,
		FeeAmount:      row.FeeAmount,
		Status:         model.AgreementStatus(row.Status),
		AgencySignedAt: row.AgencySignedAt,
		ClientSignedAt: row.ClientSignedAt,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}

func (q queries) GetAgreement(ctx context.Context, id uuid.UUID) (*model.Agreement, error) {
	var row agreementRow
	if err := q.db.WithContext(ctx).Raw(`SELECT `+agreementColumns+` FROM agreements WHERE id = ?`, id).Scan(&row).Error; err != nil {
		return nil, translateError(err)
	}
	if row.ID == uuid.Nil {
		return nil, notFound("agreement", id)
	}
	return row.toModel(), nil
}

func (q queries) GetAgreementByApplication(ctx context.Context, applicationID uuid.UUID) (*model.Agreement, error) {
	var row agreementRow
	if err := q.db.WithContext(ctx).Raw(`SELECT `+agreementColumns+` FROM agreements WHERE application_id = ?`, applicationID).Scan(&row).Error; err != nil {
		return nil, translateError(err)
	}
	if row.ID == uuid.Nil {
		return nil, notFound("agreement for application", applicationID)
	}
	return row.toModel(), nil
}

func (q queries) InsertAgreement(ctx context.Context, a *model.Agreement) error {
	return translateError(q.db.WithContext(ctx).Exec(`
		INSERT INTO agreements (`+agreementColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID,
		a.ApplicationID,
		a.ContractID,
		a.AgencySigned,
		a.ClientSigned,
		a.FeesRequired,
		a.FeesEntered,
		a.FeeAmount,
		a.Status,
		a.AgencySignedAt,
		a.ClientSignedAt,
		a.CreatedAt,
		a.UpdatedAt,
	).Error)
}

func (q queries) UpdateAgreement(ctx context.Context, a *model.Agreement) error {
	res := q.db.WithContext(ctx).Exec(`
		UPDATE agreements
		SET
			agency_signed = ?,
			client_signed = ?,
			fees_entered = ?,
			fee_amount = ?,
			status = ?,
			agency_signed_at = ?,
			client_signed_at = ?,
			updated_at = ?
		WHERE id = ?
	`,
		a.AgencySigned,
		a.ClientSigned,
		a.FeesEntered,
		a.FeeAmount,
		a.Status,
		a.AgencySignedAt,
		a.ClientSignedAt,
		a.UpdatedAt,
		a.ID,
	)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("agreement", a.ID)
	}
	return nil
}

func (q queries) ListEvents(ctx context.Context, contractID uuid.UUID) ([]model.Event, error) {
	var events []model.Event
	if err := q.db.WithContext(ctx).Raw(`
		SELECT id, type, contract_id, application_id, agreement_id, actor_ref, fee_flag, reason, at
		FROM contract_events
		WHERE contract_id = ?
		ORDER BY seq ASC
	`, contractID).Scan(&events).Error; err != nil {
		return nil, translateError(err)
	}
	return events, nil
}

func (q queries) AppendEvent(ctx context.Context, event model.Event) error {
	return translateError(q.db.WithContext(ctx).Exec(`
		INSERT INTO contract_events (id, type, contract_id, application_id, agreement_id, actor_ref, fee_flag, reason, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID,
		event.Type,
		event.ContractID,
		event.ApplicationID,
		event.AgreementID,
		event.ActorRef,
		event.FeeFlag,
		event.Reason,
		event.At,
	).Error)
}
