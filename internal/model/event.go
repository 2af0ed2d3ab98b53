package model

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventContractCreated      EventType = "contract.created"
	EventContractUpdated      EventType = "contract.updated"
	EventContractStatus       EventType = "contract.status_changed"
	EventContractBooked       EventType = "contract.booked"
	EventContractCancelled    EventType = "contract.cancelled"
	EventApplicationSubmitted EventType = "application.submitted"
	EventCandidateProposed    EventType = "application.candidate_proposed"
	EventCandidateAccepted    EventType = "application.candidate_accepted"
	EventApplicationAccepted  EventType = "application.accepted"
	EventApplicationRejected  EventType = "application.rejected"
	EventApplicationWithdrawn EventType = "application.withdrawn"
	EventAgreementCreated     EventType = "agreement.created"
	EventAgreementFees        EventType = "agreement.fees_entered"
	EventAgreementSigned      EventType = "agreement.signed"
)

// Event records one state change. Callers act on returned events (billing,
// notifications); the workflow itself performs no delivery.
type Event struct {
	ID            uuid.UUID  `json:"id"`
	Type          EventType  `json:"type"`
	ContractID    uuid.UUID  `json:"contract_id"`
	ApplicationID *uuid.UUID `json:"application_id,omitempty"`
	AgreementID   *uuid.UUID `json:"agreement_id,omitempty"`
	ActorRef      string     `json:"actor_ref,omitempty"`
	FeeFlag       bool       `json:"fee_flag"`
	Reason        string     `json:"reason,omitempty"`
	At            time.Time  `json:"at"`
}
