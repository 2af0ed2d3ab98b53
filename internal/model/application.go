package model

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusAccepted  ApplicationStatus = "accepted"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"
)

// Live reports whether the application still competes for the contract.
func (s ApplicationStatus) Live() bool {
	return s == ApplicationStatusPending || s == ApplicationStatusAccepted
}

// DecisionUnit tells whether acceptance is decided per candidate or for the
// application as a whole.
type DecisionUnit string

const (
	DecisionCandidateLevel   DecisionUnit = "candidate_level"
	DecisionApplicationLevel DecisionUnit = "application_level"
)

type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

type Candidate struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"application_id"`
	PersonRef     string    `json:"person_ref"`
	IsAccepted    bool      `json:"is_accepted"`
	ProposedAt    time.Time `json:"proposed_at"`
}

type Application struct {
	ID                  uuid.UUID         `json:"id"`
	ContractID          uuid.UUID         `json:"contract_id"`
	ApplicantID         uuid.UUID         `json:"applicant_id"`
	Status              ApplicationStatus `json:"status"`
	AppliedAt           time.Time         `json:"applied_at"`
	Candidates          []Candidate       `json:"candidates"`
	AcceptedCandidateID *uuid.UUID        `json:"accepted_candidate_id,omitempty"`
	WithdrawalReason    *string           `json:"withdrawal_reason,omitempty"`
	DecidedAt           *time.Time        `json:"decided_at,omitempty"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

func (a Application) DecisionUnit() DecisionUnit {
	if len(a.Candidates) > 0 {
		return DecisionCandidateLevel
	}
	return DecisionApplicationLevel
}

func (a Application) Candidate(id uuid.UUID) (Candidate, bool) {
	for _, c := range a.Candidates {
		if c.ID == id {
			return c, true
		}
	}
	return Candidate{}, false
}

func (a Application) Clone() Application {
	out := a
	if a.Candidates != nil {
		out.Candidates = append([]Candidate(nil), a.Candidates...)
	}
	if a.AcceptedCandidateID != nil {
		id := *a.AcceptedCandidateID
		out.AcceptedCandidateID = &id
	}
	if a.WithdrawalReason != nil {
		reason := *a.WithdrawalReason
		out.WithdrawalReason = &reason
	}
	if a.DecidedAt != nil {
		at := *a.DecidedAt
		out.DecidedAt = &at
	}
	return out
}
