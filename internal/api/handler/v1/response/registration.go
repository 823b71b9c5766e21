package response

import (
	"github.com/festhub/festhub-api/internal/domain"
)

// MyRegistrations is the participant dashboard view: registrations still in
// play versus ones already settled.
type MyRegistrations struct {
	Active []domain.Registration `json:"active"`
	Past   []domain.Registration `json:"past"`
}
