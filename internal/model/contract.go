package model

import (
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractStatusPending      ContractStatus = "pending"
	ContractStatusOpen         ContractStatus = "open"
	ContractStatusInDiscussion ContractStatus = "in_discussion"
	ContractStatusBooked       ContractStatus = "booked"
	ContractStatusCancelled    ContractStatus = "cancelled"
	ContractStatusClosed       ContractStatus = "closed"
)

// Editable reports whether the contract body may still change.
func (s ContractStatus) Editable() bool {
	switch s {
	case ContractStatusPending, ContractStatusOpen, ContractStatusInDiscussion:
		return true
	default:
		return false
	}
}

// AcceptsApplications reports whether applications may be submitted or accepted.
func (s ContractStatus) AcceptsApplications() bool {
	return s == ContractStatusOpen || s == ContractStatusInDiscussion
}

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractStatusPending, ContractStatusOpen, ContractStatusInDiscussion,
		ContractStatusBooked, ContractStatusCancelled, ContractStatusClosed:
		return true
	default:
		return false
	}
}

type Contract struct {
	ID                 uuid.UUID      `json:"id"`
	ContractTypeID     string         `json:"contract_type_id"`
	InstitutionID      uuid.UUID      `json:"institution_id"`
	Title              string         `json:"title"`
	Status             ContractStatus `json:"status"`
	StartDate          time.Time      `json:"start_date"`
	EndDate            *time.Time     `json:"end_date,omitempty"`
	PositionsSought    []string       `json:"positions_sought"`
	Fields             map[string]any `json:"fields,omitempty"`
	CancellationReason *string        `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (c Contract) Clone() Contract {
	out := c
	if c.EndDate != nil {
		end := *c.EndDate
		out.EndDate = &end
	}
	if c.PositionsSought != nil {
		out.PositionsSought = append([]string(nil), c.PositionsSought...)
	}
	if c.Fields != nil {
		out.Fields = make(map[string]any, len(c.Fields))
		for k, v := range c.Fields {
			out.Fields[k] = v
		}
	}
	if c.CancellationReason != nil {
		reason := *c.CancellationReason
		out.CancellationReason = &reason
	}
	return out
}

// ContractPatch carries owner edits. Nil fields are left untouched.
type ContractPatch struct {
	Title           *string
	StartDate       *time.Time
	EndDate         *time.Time
	PositionsSought []string
	Fields          map[string]any
}

func (p ContractPatch) Empty() bool {
	return p.Title == nil && p.StartDate == nil && p.EndDate == nil &&
		p.PositionsSought == nil && p.Fields == nil
}
