package model

import (
	"time"

	"github.com/google/uuid"
)

// ApplicantRow is one application flattened for the institution's
// applicant export.
type ApplicantRow struct {
	ContractID        uuid.UUID
	ContractTitle     string
	ContractTypeID    string
	ContractStatus    ContractStatus
	StartDate         time.Time
	Industry          string
	ApplicationID     uuid.UUID
	ApplicantID       uuid.UUID
	ApplicationStatus ApplicationStatus
	AppliedAt         time.Time
	CandidateCount    int
	AcceptedCandidate string
}

// IndustryGroup is one sheet of the applicant workbook.
type IndustryGroup struct {
	Industry string
	Label    string
	Rows     []ApplicantRow
}

type ApplicantReport struct {
	InstitutionID uuid.UUID
	GeneratedAt   time.Time
	Groups        []IndustryGroup
}

// ContractSummary feeds the one-page contract sheet.
type ContractSummary struct {
	Contract        Contract
	TypeName        string
	IndustryLabel   string
	PresentationKey string
	FeesRequired    bool
	RequiredFields  []string
	Applications    map[ApplicationStatus]int
	Agreement       *Agreement
	GeneratedAt     time.Time
}
