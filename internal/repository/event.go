package repository

import (
	"context"
	"time"

	"github.com/festhub/festhub-api/internal/domain"
	"github.com/festhub/festhub-api/internal/repository/dao"
)

var (
	ErrEventNotFound           = dao.ErrEventNotFound
	ErrEventNotDraft           = dao.ErrEventNotDraft
	ErrInvalidStatusTransition = dao.ErrInvalidStatusTransition
	ErrPublishedUpdateRejected = dao.ErrPublishedUpdateRejected
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	FindPublished(ctx context.Context, filter dao.EventFilter) ([]dao.Event, error)
	FindByOrganizer(ctx context.Context, organizerID uint) ([]dao.Event, error)
	UpdateDraft(ctx context.Context, event dao.Event) (dao.Event, error)
	ApplyPublishedUpdate(ctx context.Context, id uint, update dao.PublishedUpdate) (dao.Event, error)
	AdvanceStatus(ctx context.Context, id uint, from, to string) error
	DeleteDraft(ctx context.Context, id uint) error
}

// EventFilter narrows published-event listings.
type EventFilter struct {
	Search      string
	EventType   domain.EventType
	Eligibility domain.Eligibility
	Tag         string
	StartAfter  *time.Time
	StartBefore *time.Time
	OrganizerID uint
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) domainToDao(e domain.Event) dao.Event {
	event := dao.Event{
		ID:                   e.ID,
		EventName:            e.EventName,
		EventDescription:     e.EventDescription,
		EventType:            string(e.EventType),
		Eligibility:          string(e.Eligibility),
		RegistrationDeadline: e.RegistrationDeadline,
		EventStartDate:       e.EventStartDate,
		EventEndDate:         e.EventEndDate,
		RegistrationLimit:    e.RegistrationLimit,
		RegistrationFee:      e.RegistrationFee,
		OrganizerID:          e.OrganizerID,
		EventTags:            dao.StringSlice(e.EventTags),
		Status:               string(e.Status),
		CustomFormFields:     formFieldsToDao(e.CustomFormFields),
		FormLocked:           e.FormLocked,
		ItemDetails: dao.ItemOptions{
			Sizes:    e.ItemDetails.Sizes,
			Colors:   e.ItemDetails.Colors,
			Variants: e.ItemDetails.Variants,
		},
		StockQuantity:      e.StockQuantity,
		PurchaseLimit:      e.PurchaseLimit,
		TotalRegistrations: e.TotalRegistrations,
		TotalRevenue:       e.TotalRevenue,
		TotalAttendance:    e.TotalAttendance,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
	if e.TeamSize != nil {
		event.TeamSizeMin = e.TeamSize.Min
		event.TeamSizeMax = e.TeamSize.Max
	}

	return event
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	event := domain.Event{
		ID:                   e.ID,
		EventName:            e.EventName,
		EventDescription:     e.EventDescription,
		EventType:            domain.EventType(e.EventType),
		Eligibility:          domain.Eligibility(e.Eligibility),
		RegistrationDeadline: e.RegistrationDeadline,
		EventStartDate:       e.EventStartDate,
		EventEndDate:         e.EventEndDate,
		RegistrationLimit:    e.RegistrationLimit,
		RegistrationFee:      e.RegistrationFee,
		OrganizerID:          e.OrganizerID,
		EventTags:            e.EventTags,
		Status:               domain.EventStatus(e.Status),
		CustomFormFields:     formFieldsToDomain(e.CustomFormFields),
		FormLocked:           e.FormLocked,
		ItemDetails: domain.ItemDetails{
			Sizes:    e.ItemDetails.Sizes,
			Colors:   e.ItemDetails.Colors,
			Variants: e.ItemDetails.Variants,
		},
		StockQuantity:      e.StockQuantity,
		PurchaseLimit:      e.PurchaseLimit,
		TotalRegistrations: e.TotalRegistrations,
		TotalRevenue:       e.TotalRevenue,
		TotalAttendance:    e.TotalAttendance,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
	if e.TeamSizeMin > 0 || e.TeamSizeMax > 0 {
		event.TeamSize = &domain.TeamSizeRange{
			Min: e.TeamSizeMin,
			Max: e.TeamSizeMax,
		}
	}

	return event
}

func (r *EventRepository) daosToDomain(events []dao.Event) []domain.Event {
	result := make([]domain.Event, len(events))
	for i, e := range events {
		result[i] = r.daoToDomain(e)
	}

	return result
}

func formFieldsToDao(fields []domain.CustomFormField) dao.FormFields {
	if fields == nil {
		return nil
	}

	result := make(dao.FormFields, len(fields))
	for i, f := range fields {
		result[i] = dao.FormField{
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

func formFieldsToDomain(fields dao.FormFields) []domain.CustomFormField {
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

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, err
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) GetByID(ctx context.Context, id uint) (domain.Event, error) {
	event, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}

	return r.daoToDomain(event), nil
}

func (r *EventRepository) FindPublished(ctx context.Context, filter EventFilter) ([]domain.Event, error) {
	events, err := r.dao.FindPublished(ctx, dao.EventFilter{
		Search:      filter.Search,
		EventType:   string(filter.EventType),
		Eligibility: string(filter.Eligibility),
		Tag:         filter.Tag,
		StartAfter:  filter.StartAfter,
		StartBefore: filter.StartBefore,
		OrganizerID: filter.OrganizerID,
	})
	if err != nil {
		return nil, err
	}

	return r.daosToDomain(events), nil
}

func (r *EventRepository) FindByOrganizer(ctx context.Context, organizerID uint) ([]domain.Event, error) {
	events, err := r.dao.FindByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, err
	}

	return r.daosToDomain(events), nil
}

func (r *EventRepository) UpdateDraft(ctx context.Context, event domain.Event) (domain.Event, error) {
	updated, err := r.dao.UpdateDraft(ctx, r.domainToDao(event))
	if err != nil {
		return domain.Event{}, err
	}

	return r.daoToDomain(updated), nil
}

func (r *EventRepository) ApplyPublishedUpdate(ctx context.Context, id uint, description *string, deadline *time.Time, limit *int, formFields []domain.CustomFormField) (domain.Event, error) {
	updated, err := r.dao.ApplyPublishedUpdate(ctx, id, dao.PublishedUpdate{
		EventDescription:     description,
		RegistrationDeadline: deadline,
		RegistrationLimit:    limit,
		CustomFormFields:     formFieldsToDao(formFields),
	})
	if err != nil {
		return domain.Event{}, err
	}

	return r.daoToDomain(updated), nil
}

func (r *EventRepository) AdvanceStatus(ctx context.Context, id uint, from, to domain.EventStatus) error {
	return r.dao.AdvanceStatus(ctx, id, string(from), string(to))
}

func (r *EventRepository) DeleteDraft(ctx context.Context, id uint) error {
	return r.dao.DeleteDraft(ctx, id)
}
