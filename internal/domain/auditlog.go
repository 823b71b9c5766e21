package domain

import "time"

// AuditLog records a manual attendance override. Entries are append-only.
type AuditLog struct {
	ID             uint      `json:"id"`
	EventID        uint      `json:"eventId"`
	RegistrationID uint      `json:"registrationId"`
	PerformedBy    uint      `json:"performedBy"`
	Action         string    `json:"action"`
	Reason         string    `json:"reason"`
	PreviousValue  string    `json:"previousValue"`
	NewValue       string    `json:"newValue"`
	Timestamp      time.Time `json:"timestamp"`
}
