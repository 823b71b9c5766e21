package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventTypeNormal      EventType = "Normal"
	EventTypeMerchandise EventType = "Merchandise"
	EventTypeHackathon   EventType = "Hackathon"
)

type Eligibility string

const (
	EligibilityIIITOnly    Eligibility = "IIIT Only"
	EligibilityAll         Eligibility = "All"
	EligibilityNonIIITOnly Eligibility = "Non-IIIT Only"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "Draft"
	EventStatusPublished EventStatus = "Published"
	EventStatusOngoing   EventStatus = "Ongoing"
	EventStatusCompleted EventStatus = "Completed"
	EventStatusClosed    EventStatus = "Closed"
)

// CanAdvanceTo reports whether the status machine allows moving to next.
// Transitions only go forward: Draft → Published → {Ongoing, Closed} → Completed.
func (s EventStatus) CanAdvanceTo(next EventStatus) bool {
	switch s {
	case EventStatusDraft:
		return next == EventStatusPublished
	case EventStatusPublished:
		return next == EventStatusOngoing || next == EventStatusClosed
	case EventStatusOngoing, EventStatusClosed:
		return next == EventStatusCompleted
	default:
		return false
	}
}

type CustomFormField struct {
	FieldName   string   `json:"fieldName"`
	FieldType   string   `json:"fieldType"`
	IsRequired  bool     `json:"isRequired"`
	Options     []string `json:"options,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Order       int      `json:"order"`
}

// ItemDetails declares the merchandise option sets. Empty slices accept any
// value for that option.
type ItemDetails struct {
	Sizes    []string `json:"sizes,omitempty"`
	Colors   []string `json:"colors,omitempty"`
	Variants []string `json:"variants,omitempty"`
}

type TeamSizeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Required is the accepted-member count a team needs before it completes.
func (r TeamSizeRange) Required() int {
	if r.Max > 0 {
		return r.Max
	}
	return r.Min
}

type Event struct {
	ID                   uint              `json:"id"`
	EventName            string            `json:"eventName"`
	EventDescription     string            `json:"eventDescription"`
	EventType            EventType         `json:"eventType"`
	Eligibility          Eligibility       `json:"eligibility"`
	RegistrationDeadline time.Time         `json:"registrationDeadline"`
	EventStartDate       time.Time         `json:"eventStartDate"`
	EventEndDate         time.Time         `json:"eventEndDate"`
	RegistrationLimit    int               `json:"registrationLimit"`
	RegistrationFee      decimal.Decimal   `json:"registrationFee"`
	OrganizerID          uint              `json:"organizerId"`
	EventTags            []string          `json:"eventTags,omitempty"`
	Status               EventStatus       `json:"status"`
	CustomFormFields     []CustomFormField `json:"customFormFields,omitempty"`
	FormLocked           bool              `json:"formLocked"`
	ItemDetails          ItemDetails       `json:"itemDetails"`
	StockQuantity        int               `json:"stockQuantity"`
	PurchaseLimit        int               `json:"purchaseLimit"`
	TeamSize             *TeamSizeRange    `json:"teamSize,omitempty"`
	TotalRegistrations   int               `json:"totalRegistrations"`
	TotalRevenue         decimal.Decimal   `json:"totalRevenue"`
	TotalAttendance      int               `json:"totalAttendance"`
	CreatedAt            time.Time         `json:"createdAt"`
	UpdatedAt            time.Time         `json:"updatedAt"`
}

// IsTeamBased reports whether the event supports team registration.
func (e *Event) IsTeamBased() bool {
	return e.EventType == EventTypeHackathon && e.TeamSize != nil && e.TeamSize.Min > 0
}

// AvailableSlots never goes negative even if counters drift.
func (e *Event) AvailableSlots() int {
	slots := e.RegistrationLimit - e.TotalRegistrations
	if slots < 0 {
		return 0
	}
	return slots
}

// EligibilityAllows checks the participant category against the event's
// eligibility rule.
func (e *Event) EligibilityAllows(participantType ParticipantType) bool {
	switch e.Eligibility {
	case EligibilityIIITOnly:
		return participantType == ParticipantTypeIIIT
	case EligibilityNonIIITOnly:
		return participantType != ParticipantTypeIIIT
	default:
		return true
	}
}

// Phase is a derived, read-only view of where the event sits relative to
// time. Status itself only changes by explicit organizer action.
func (e *Event) Phase(now time.Time) string {
	switch e.Status {
	case EventStatusPublished:
		if now.After(e.RegistrationDeadline) {
			return "RegistrationClosed"
		}
		return "RegistrationOpen"
	default:
		return string(e.Status)
	}
}

// EventUpdate carries the fields an update request wants to change. Nil
// means "leave unchanged".
type EventUpdate struct {
	EventName            *string
	EventDescription     *string
	EventType            *EventType
	Eligibility          *Eligibility
	RegistrationDeadline *time.Time
	EventStartDate       *time.Time
	EventEndDate         *time.Time
	RegistrationLimit    *int
	RegistrationFee      *decimal.Decimal
	EventTags            []string
	CustomFormFields     []CustomFormField
	ItemDetails          *ItemDetails
	StockQuantity        *int
	PurchaseLimit        *int
	TeamSize             *TeamSizeRange
	Status               *EventStatus
}
