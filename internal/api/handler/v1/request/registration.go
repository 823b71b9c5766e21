package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/festhub/festhub-api/internal/domain"
)

type MerchandiseRequest struct {
	Size     string `json:"size"`
	Color    string `json:"color"`
	Variant  string `json:"variant"`
	Quantity int    `json:"quantity"`
}

type RegisterRequest struct {
	FormResponses map[string]any      `json:"formResponses"`
	Merchandise   *MerchandiseRequest `json:"merchandise"`
}

func (req *RegisterRequest) Validate() error {
	if req.Merchandise == nil {
		return nil
	}

	return validation.ValidateStruct(
		req.Merchandise,
		validation.Field(&req.Merchandise.Quantity, validation.Min(0)),
	)
}

func (req *RegisterRequest) ToMerchandise() *domain.MerchandiseDetails {
	if req.Merchandise == nil {
		return nil
	}

	return &domain.MerchandiseDetails{
		Size:     req.Merchandise.Size,
		Color:    req.Merchandise.Color,
		Variant:  req.Merchandise.Variant,
		Quantity: req.Merchandise.Quantity,
	}
}

type ChangeRegistrationStatusRequest struct {
	Status string `json:"status"`
}

func (req *ChangeRegistrationStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required, validation.In(
			string(domain.RegistrationStatusApproved),
			string(domain.RegistrationStatusRejected),
			string(domain.RegistrationStatusCompleted),
			string(domain.RegistrationStatusCancelled),
		)),
	)
}
