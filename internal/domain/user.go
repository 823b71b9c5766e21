package domain

import "time"

type Role string

const (
	RoleParticipant Role = "participant"
	RoleOrganizer   Role = "organizer"
	RoleAdmin       Role = "admin"
)

type ParticipantType string

const (
	ParticipantTypeIIIT    ParticipantType = "IIIT"
	ParticipantTypeNonIIIT ParticipantType = "Non-IIIT"
)

// User is the read model supplied by the identity provider. This service
// never creates or mutates accounts.
type User struct {
	ID              uint            `json:"id"`
	Email           string          `json:"email"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	Role            Role            `json:"role"`
	ParticipantType ParticipantType `json:"participantType"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
