package model

import (
	"time"

	"github.com/google/uuid"
)

type AgreementStatus string

const (
	AgreementStatusAwaitingFees     AgreementStatus = "awaiting_fees"
	AgreementStatusPendingSignature AgreementStatus = "pending_signature"
	AgreementStatusFullySigned      AgreementStatus = "fully_signed"
)

// Party is a signing side of an agreement. The agency side is the applicant,
// the client side is the institution that published the contract.
type Party string

const (
	PartyAgency Party = "agency"
	PartyClient Party = "client"
)

func (p Party) Valid() bool {
	return p == PartyAgency || p == PartyClient
}

type Agreement struct {
	ID             uuid.UUID       `json:"id"`
	ApplicationID  uuid.UUID       `json:"application_id"`
	ContractID     uuid.UUID       `json:"contract_id"`
	AgencySigned   bool            `json:"agency_signed"`
	ClientSigned   bool            `json:"client_signed"`
	FeesRequired   bool            `json:"fees_required"`
	FeesEntered    bool            `json:"fees_entered"`
	FeeAmount      *float64        `json:"fee_amount,omitempty"`
	Status         AgreementStatus `json:"status"`
	AgencySignedAt *time.Time      `json:"agency_signed_at,omitempty"`
	ClientSignedAt *time.Time      `json:"client_signed_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (a Agreement) Clone() Agreement {
	out := a
	if a.FeeAmount != nil {
		amount := *a.FeeAmount
		out.FeeAmount = &amount
	}
	if a.AgencySignedAt != nil {
		at := *a.AgencySignedAt
		out.AgencySignedAt = &at
	}
	if a.ClientSignedAt != nil {
		at := *a.ClientSignedAt
		out.ClientSignedAt = &at
	}
	return out
}
