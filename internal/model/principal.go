package model

import "github.com/google/uuid"

type Role string

const (
	RoleInstitution  Role = "institution"
	RoleProfessional Role = "professional"
	RoleAgency       Role = "agency"
	RoleAdmin        Role = "admin"
)

type Principal struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
	Role   Role
}

func (p Principal) IsInstitution() bool { return p.Role == RoleInstitution }
func (p Principal) IsAdmin() bool       { return p.Role == RoleAdmin }

// IsApplicantSide covers everyone who bids on contracts.
func (p Principal) IsApplicantSide() bool {
	return p.Role == RoleProfessional || p.Role == RoleAgency
}

// ActorID is the identity that owns contracts or applications: the
// organization when there is one, otherwise the user.
func (p Principal) ActorID() uuid.UUID {
	if p.OrgID != uuid.Nil {
		return p.OrgID
	}
	return p.UserID
}

// Party maps the principal onto the signing side it may act for.
func (p Principal) Party() (Party, bool) {
	switch {
	case p.IsApplicantSide():
		return PartyAgency, true
	case p.IsInstitution():
		return PartyClient, true
	default:
		return "", false
	}
}
