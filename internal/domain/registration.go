package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RegistrationStatus string

const (
	RegistrationStatusPending   RegistrationStatus = "Pending"
	RegistrationStatusApproved  RegistrationStatus = "Approved"
	RegistrationStatusRejected  RegistrationStatus = "Rejected"
	RegistrationStatusCompleted RegistrationStatus = "Completed"
	RegistrationStatusCancelled RegistrationStatus = "Cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
)

type MerchandiseDetails struct {
	Size     string `json:"size,omitempty"`
	Color    string `json:"color,omitempty"`
	Variant  string `json:"variant,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

type Registration struct {
	ID                 uint                `json:"id"`
	EventID            uint                `json:"eventId"`
	ParticipantID      uint                `json:"participantId"`
	RegistrationType   EventType           `json:"registrationType"`
	Status             RegistrationStatus  `json:"status"`
	FormResponses      map[string]any      `json:"formResponses,omitempty"`
	MerchandiseDetails *MerchandiseDetails `json:"merchandiseDetails,omitempty"`
	TeamID             *uint               `json:"teamId,omitempty"`
	PaymentStatus      PaymentStatus       `json:"paymentStatus"`
	AmountPaid         decimal.Decimal     `json:"amountPaid"`
	TicketID           string              `json:"ticketId"`
	QRCode             string              `json:"qrCode,omitempty"`
	Attended           bool                `json:"attended"`
	AttendanceTime     *time.Time          `json:"attendanceTime,omitempty"`
	RegistrationDate   time.Time           `json:"registrationDate"`
}
