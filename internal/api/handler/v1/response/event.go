package response

import (
	"github.com/festhub/festhub-api/internal/domain"
)

// EventDetail decorates an event with the derived fields a participant's
// detail page needs.
type EventDetail struct {
	domain.Event

	Phase          string `json:"phase"`
	AvailableSlots int    `json:"availableSlots"`
	IsRegistered   bool   `json:"isRegistered"`
	MyTicket       string `json:"myTicket,omitempty"`
}
