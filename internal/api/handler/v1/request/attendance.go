package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type ScanTicketRequest struct {
	TicketID string `json:"ticketId"`
}

func (req *ScanTicketRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TicketID, validation.Required, validation.Length(4, 64)),
	)
}

// OverrideAttendanceRequest corrects a check-in by hand. Attended is a
// pointer so "set to false" and "missing" stay distinguishable.
type OverrideAttendanceRequest struct {
	Attended *bool  `json:"attended"`
	Reason   string `json:"reason"`
}

func (req *OverrideAttendanceRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Attended, validation.NotNil),
		validation.Field(&req.Reason, validation.Required, validation.Length(3, 500)),
	)
}
