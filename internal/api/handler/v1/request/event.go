package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/festhub/festhub-api/internal/domain"
)

const defaultRegistrationLimit = 100000

type FormFieldRequest struct {
	FieldName   string   `json:"fieldName"`
	FieldType   string   `json:"fieldType"`
	IsRequired  bool     `json:"isRequired"`
	Options     []string `json:"options"`
	Placeholder string   `json:"placeholder"`
	Order       int      `json:"order"`
}

type ItemDetailsRequest struct {
	Sizes    []string `json:"sizes"`
	Colors   []string `json:"colors"`
	Variants []string `json:"variants"`
}

// TeamSizeRequest accepts the three shapes clients send: an object
// {"min":3,"max":5} where a missing bound falls back to the other, a
// "3-5" range string, or a bare number.
type TeamSizeRequest struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r *TeamSizeRequest) UnmarshalJSON(data []byte) error {
	var obj struct {
		Min *int `json:"min"`
		Max *int `json:"max"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		if obj.Min == nil && obj.Max == nil {
			return nil
		}
		if obj.Min != nil {
			r.Min = *obj.Min
		} else {
			r.Min = *obj.Max
		}
		if obj.Max != nil {
			r.Max = *obj.Max
		} else {
			r.Max = *obj.Min
		}
		return nil
	}

	var single int
	if err := json.Unmarshal(data, &single); err == nil {
		r.Min, r.Max = single, single
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.New(`teamSize must be an object, a number or a "min-max" string`)
	}

	minSize, maxSize, ok := parseTeamSizeRange(raw)
	if !ok {
		return fmt.Errorf("invalid team size %q", raw)
	}
	r.Min, r.Max = minSize, maxSize

	return nil
}

func parseTeamSizeRange(raw string) (int, int, bool) {
	raw = strings.TrimSpace(raw)
	for _, sep := range []string{"-", "–"} {
		if lo, hi, found := strings.Cut(raw, sep); found {
			minSize, errLo := strconv.Atoi(strings.TrimSpace(lo))
			maxSize, errHi := strconv.Atoi(strings.TrimSpace(hi))
			if errLo != nil || errHi != nil {
				return 0, 0, false
			}
			return minSize, maxSize, true
		}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, 0, false
	}
	return n, n, true
}

// TagList accepts either a JSON array of tags or one comma separated
// string.
type TagList []string

func (l *TagList) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err == nil {
		*l = tags
		return nil
	}

	var csv string
	if err := json.Unmarshal(data, &csv); err != nil {
		return errors.New("tags must be an array or a comma separated string")
	}
	for _, tag := range strings.Split(csv, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			*l = append(*l, tag)
		}
	}

	return nil
}

// CreateEventRequest accepts both the canonical field names and the legacy
// aliases older clients still send (name, description, price, stock,
// maxParticipants, date/time, endDate/endTime, category, venue, CSV tags).
type CreateEventRequest struct {
	EventName            string              `json:"eventName"`
	Name                 string              `json:"name"`
	EventDescription     string              `json:"eventDescription"`
	Description          string              `json:"description"`
	EventType            string              `json:"eventType"`
	Eligibility          string              `json:"eligibility"`
	RegistrationDeadline *time.Time          `json:"registrationDeadline"`
	EventStartDate       time.Time           `json:"eventStartDate"`
	EventEndDate         *time.Time          `json:"eventEndDate"`
	Date                 string              `json:"date"`
	Time                 string              `json:"time"`
	EndDate              string              `json:"endDate"`
	EndTime              string              `json:"endTime"`
	RegistrationLimit    *int                `json:"registrationLimit"`
	MaxParticipants      *int                `json:"maxParticipants"`
	RegistrationFee      *float64            `json:"registrationFee"`
	Price                *float64            `json:"price"`
	EventTags            TagList             `json:"eventTags"`
	Category             string              `json:"category"`
	Venue                string              `json:"venue"`
	CustomFormFields     []FormFieldRequest  `json:"customFormFields"`
	ItemDetails          *ItemDetailsRequest `json:"itemDetails"`
	StockQuantity        *int                `json:"stockQuantity"`
	Stock                *int                `json:"stock"`
	PurchaseLimit        *int                `json:"purchaseLimit"`
	TeamSize             *TeamSizeRequest    `json:"teamSize"`
}

// Normalize folds the aliases into the canonical fields and fills the
// derived defaults: deadline 24h before start, end 2h after start, and an
// effectively-unlimited registration limit.
func (req *CreateEventRequest) Normalize() {
	if req.EventName == "" {
		req.EventName = req.Name
	}
	if req.EventDescription == "" {
		req.EventDescription = req.Description
	}
	if req.RegistrationFee == nil {
		req.RegistrationFee = req.Price
	}
	if req.RegistrationLimit == nil {
		req.RegistrationLimit = req.MaxParticipants
	}
	if req.StockQuantity == nil {
		req.StockQuantity = req.Stock
	}

	switch req.Eligibility {
	case "IIIT-H Only":
		req.Eligibility = string(domain.EligibilityIIITOnly)
	case "All Students", "":
		req.Eligibility = string(domain.EligibilityAll)
	}
	if req.EventType == "" {
		req.EventType = string(domain.EventTypeNormal)
	}

	if req.EventStartDate.IsZero() && req.Date != "" {
		if start, err := parseDateAndClock(req.Date, req.Time, "00:00"); err == nil {
			req.EventStartDate = start
		}
	}
	if req.EventEndDate == nil && req.EndDate != "" {
		if end, err := parseDateAndClock(req.EndDate, req.EndTime, "23:59"); err == nil {
			req.EventEndDate = &end
		}
	}

	if category := strings.TrimSpace(req.Category); category != "" && !slices.Contains(req.EventTags, category) {
		req.EventTags = append(req.EventTags, category)
	}
	if venue := strings.TrimSpace(req.Venue); venue != "" {
		tag := "venue:" + venue
		if !slices.Contains(req.EventTags, tag) {
			req.EventTags = append(req.EventTags, tag)
		}
	}

	if req.RegistrationDeadline == nil && !req.EventStartDate.IsZero() {
		deadline := req.EventStartDate.Add(-24 * time.Hour)
		req.RegistrationDeadline = &deadline
	}
	if req.EventEndDate == nil && !req.EventStartDate.IsZero() {
		end := req.EventStartDate.Add(2 * time.Hour)
		req.EventEndDate = &end
	}
	if req.RegistrationLimit == nil {
		limit := defaultRegistrationLimit
		req.RegistrationLimit = &limit
	}
}

func parseDateAndClock(date, clock, defaultClock string) (time.Time, error) {
	if strings.TrimSpace(clock) == "" {
		clock = defaultClock
	}
	return time.Parse("2006-01-02 15:04", strings.TrimSpace(date)+" "+strings.TrimSpace(clock))
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventName, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.EventDescription, validation.Length(0, 5000)),
		validation.Field(&req.EventType, validation.Required, validation.In(
			string(domain.EventTypeNormal),
			string(domain.EventTypeMerchandise),
			string(domain.EventTypeHackathon),
		)),
		validation.Field(&req.Eligibility, validation.Required, validation.In(
			string(domain.EligibilityIIITOnly),
			string(domain.EligibilityAll),
			string(domain.EligibilityNonIIITOnly),
		)),
		validation.Field(&req.EventStartDate, validation.Required),
		validation.Field(&req.RegistrationLimit, validation.Min(1)),
		validation.Field(&req.RegistrationFee, validation.Min(0.0)),
		validation.Field(&req.StockQuantity, validation.Min(0)),
		validation.Field(&req.PurchaseLimit, validation.Min(0)),
	)
}

func (req *CreateEventRequest) ToDomain() domain.Event {
	event := domain.Event{
		EventName:            req.EventName,
		EventDescription:     req.EventDescription,
		EventType:            domain.EventType(req.EventType),
		Eligibility:          domain.Eligibility(req.Eligibility),
		EventStartDate:       req.EventStartDate,
		EventTags:            []string(req.EventTags),
		CustomFormFields:     formFieldsToDomain(req.CustomFormFields),
		RegistrationFee:      decimal.Zero,
	}
	if req.RegistrationDeadline != nil {
		event.RegistrationDeadline = *req.RegistrationDeadline
	}
	if req.EventEndDate != nil {
		event.EventEndDate = *req.EventEndDate
	}
	if req.RegistrationLimit != nil {
		event.RegistrationLimit = *req.RegistrationLimit
	}
	if req.RegistrationFee != nil {
		event.RegistrationFee = decimal.NewFromFloat(*req.RegistrationFee)
	}
	if req.ItemDetails != nil {
		event.ItemDetails = domain.ItemDetails{
			Sizes:    req.ItemDetails.Sizes,
			Colors:   req.ItemDetails.Colors,
			Variants: req.ItemDetails.Variants,
		}
	}
	if req.StockQuantity != nil {
		event.StockQuantity = *req.StockQuantity
	}
	if req.PurchaseLimit != nil {
		event.PurchaseLimit = *req.PurchaseLimit
	}
	if req.TeamSize != nil {
		event.TeamSize = &domain.TeamSizeRange{
			Min: req.TeamSize.Min,
			Max: req.TeamSize.Max,
		}
	}

	return event
}

// UpdateEventRequest carries partial changes; absent fields stay untouched.
type UpdateEventRequest struct {
	EventName            *string             `json:"eventName"`
	EventDescription     *string             `json:"eventDescription"`
	EventType            *string             `json:"eventType"`
	Eligibility          *string             `json:"eligibility"`
	RegistrationDeadline *time.Time          `json:"registrationDeadline"`
	EventStartDate       *time.Time          `json:"eventStartDate"`
	EventEndDate         *time.Time          `json:"eventEndDate"`
	RegistrationLimit    *int                `json:"registrationLimit"`
	RegistrationFee      *float64            `json:"registrationFee"`
	EventTags            TagList             `json:"eventTags"`
	CustomFormFields     []FormFieldRequest  `json:"customFormFields"`
	ItemDetails          *ItemDetailsRequest `json:"itemDetails"`
	StockQuantity        *int                `json:"stockQuantity"`
	PurchaseLimit        *int                `json:"purchaseLimit"`
	TeamSize             *TeamSizeRequest    `json:"teamSize"`
	Status               *string             `json:"status"`
}

func (req *UpdateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventName, validation.Length(2, 100)),
		validation.Field(&req.EventType, validation.In(
			string(domain.EventTypeNormal),
			string(domain.EventTypeMerchandise),
			string(domain.EventTypeHackathon),
		)),
		validation.Field(&req.Eligibility, validation.In(
			string(domain.EligibilityIIITOnly),
			string(domain.EligibilityAll),
			string(domain.EligibilityNonIIITOnly),
		)),
		validation.Field(&req.Status, validation.In(
			string(domain.EventStatusPublished),
			string(domain.EventStatusOngoing),
			string(domain.EventStatusClosed),
			string(domain.EventStatusCompleted),
		)),
		validation.Field(&req.RegistrationLimit, validation.Min(1)),
		validation.Field(&req.RegistrationFee, validation.Min(0.0)),
		validation.Field(&req.StockQuantity, validation.Min(0)),
	)
}

func (req *UpdateEventRequest) ToUpdate() domain.EventUpdate {
	update := domain.EventUpdate{
		EventName:            req.EventName,
		EventDescription:     req.EventDescription,
		RegistrationDeadline: req.RegistrationDeadline,
		EventStartDate:       req.EventStartDate,
		EventEndDate:         req.EventEndDate,
		RegistrationLimit:    req.RegistrationLimit,
		EventTags:            []string(req.EventTags),
		StockQuantity:        req.StockQuantity,
		PurchaseLimit:        req.PurchaseLimit,
	}
	if req.EventType != nil {
		eventType := domain.EventType(*req.EventType)
		update.EventType = &eventType
	}
	if req.Eligibility != nil {
		eligibility := domain.Eligibility(*req.Eligibility)
		update.Eligibility = &eligibility
	}
	if req.RegistrationFee != nil {
		fee := decimal.NewFromFloat(*req.RegistrationFee)
		update.RegistrationFee = &fee
	}
	if req.CustomFormFields != nil {
		update.CustomFormFields = formFieldsToDomain(req.CustomFormFields)
	}
	if req.ItemDetails != nil {
		update.ItemDetails = &domain.ItemDetails{
			Sizes:    req.ItemDetails.Sizes,
			Colors:   req.ItemDetails.Colors,
			Variants: req.ItemDetails.Variants,
		}
	}
	if req.TeamSize != nil {
		update.TeamSize = &domain.TeamSizeRange{
			Min: req.TeamSize.Min,
			Max: req.TeamSize.Max,
		}
	}
	if req.Status != nil {
		status := domain.EventStatus(*req.Status)
		update.Status = &status
	}

	return update
}

func formFieldsToDomain(fields []FormFieldRequest) []domain.CustomFormField {
	if fields == nil {
		return nil
	}

	result := make([]domain.CustomFormField, len(fields))
	for i, f := range fields {
		result[i] = domain.CustomFormField{
			FieldName:   f.FieldName,
			FieldType:   f.FieldType,
			IsRequired:  f.IsRequired,
			Options:     f.Options,
			Placeholder: f.Placeholder,
			Order:       f.Order,
		}
	}

	return result
}
