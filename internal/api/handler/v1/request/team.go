package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateTeamRequest struct {
	TeamName string `json:"teamName"`
}

func (req *CreateTeamRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TeamName, validation.Required, validation.Length(2, 50)),
	)
}

type JoinTeamRequest struct {
	InviteCode string `json:"inviteCode"`
}

func (req *JoinTeamRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.InviteCode, validation.Required, validation.Length(12, 12)),
	)
}
