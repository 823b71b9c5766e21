package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/festhub/festhub-api/internal/domain"
	"github.com/festhub/festhub-api/internal/repository"
)

var (
	ErrEventNotFound           = repository.ErrEventNotFound
	ErrNotEventOwner           = errors.New("not authorized for this event")
	ErrEventNotDraft           = errors.New("only draft events allow this operation")
	ErrInvalidStatusTransition = errors.New("event status can only move forward")
	ErrDeadlineNotLater        = errors.New("registration deadline can only be extended for published events")
	ErrLimitNotIncreased       = errors.New("registration limit can only be increased for published events")
	ErrFormLocked              = errors.New("registration form is locked")
	ErrFieldNotUpdatable       = errors.New("field cannot change in the event's current state")
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	GetByID(ctx context.Context, id uint) (domain.Event, error)
	FindPublished(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error)
	FindByOrganizer(ctx context.Context, organizerID uint) ([]domain.Event, error)
	UpdateDraft(ctx context.Context, event domain.Event) (domain.Event, error)
	ApplyPublishedUpdate(ctx context.Context, id uint, description *string, deadline *time.Time, limit *int, formFields []domain.CustomFormField) (domain.Event, error)
	AdvanceStatus(ctx context.Context, id uint, from, to domain.EventStatus) error
	DeleteDraft(ctx context.Context, id uint) error
}

// EventService owns the event lifecycle: Draft → Published → {Ongoing,
// Closed} → Completed, never backward. Once published, commitments that
// participants may already rely on (capacity, deadline) can only be
// strengthened.
type EventService struct {
	repo EventRepository
}

func NewEventService(repo EventRepository) *EventService {
	return &EventService{
		repo: repo,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, event domain.Event, organizerID uint) (domain.Event, error) {
	event.OrganizerID = organizerID
	event.Status = domain.EventStatusDraft
	event.FormLocked = false
	event.TotalRegistrations = 0
	event.TotalAttendance = 0

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Event{}, ErrEventNotFound
		}

		return domain.Event{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	return event, nil
}

func (s *EventService) ListPublished(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	events, err := s.repo.FindPublished(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindPublished -> %w", err)
	}

	return events, nil
}

func (s *EventService) ListByOrganizer(ctx context.Context, organizerID uint) ([]domain.Event, error) {
	events, err := s.repo.FindByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByOrganizer -> %w", err)
	}

	return events, nil
}

// UpdateEvent applies the update allowed by the event's current state.
// Draft events mutate freely. Published events only accept a later
// deadline, a higher limit, a new description, form fields while the form
// is unlocked, and a forward status move. Ongoing/Closed/Completed events
// only advance status.
func (s *EventService) UpdateEvent(ctx context.Context, id uint, update domain.EventUpdate, organizerID uint) (domain.Event, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}
	if event.OrganizerID != organizerID {
		return domain.Event{}, ErrNotEventOwner
	}

	switch event.Status {
	case domain.EventStatusDraft:
		return s.updateDraft(ctx, event, update)
	case domain.EventStatusPublished:
		return s.updatePublished(ctx, event, update)
	default:
		if update.Status == nil || !onlyStatus(update) {
			return domain.Event{}, ErrFieldNotUpdatable
		}

		return s.advance(ctx, event, *update.Status)
	}
}

func (s *EventService) updateDraft(ctx context.Context, event domain.Event, update domain.EventUpdate) (domain.Event, error) {
	if update.Status != nil {
		return domain.Event{}, ErrFieldNotUpdatable
	}

	applyUpdate(&event, update)

	updated, err := s.repo.UpdateDraft(ctx, event)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotDraft) {
			return domain.Event{}, ErrEventNotDraft
		}

		return domain.Event{}, fmt.Errorf("s.repo.UpdateDraft -> %w", err)
	}

	return updated, nil
}

func (s *EventService) updatePublished(ctx context.Context, event domain.Event, update domain.EventUpdate) (domain.Event, error) {
	if update.Status != nil {
		if !onlyStatus(update) {
			return domain.Event{}, ErrFieldNotUpdatable
		}

		return s.advance(ctx, event, *update.Status)
	}

	if restricted := publishedRejects(update); restricted != nil {
		return domain.Event{}, restricted
	}
	if update.RegistrationDeadline != nil && update.RegistrationDeadline.Before(event.RegistrationDeadline) {
		return domain.Event{}, ErrDeadlineNotLater
	}
	if update.RegistrationLimit != nil && *update.RegistrationLimit < event.RegistrationLimit {
		return domain.Event{}, ErrLimitNotIncreased
	}
	if update.CustomFormFields != nil && event.FormLocked {
		return domain.Event{}, ErrFormLocked
	}

	updated, err := s.repo.ApplyPublishedUpdate(ctx, event.ID,
		update.EventDescription, update.RegistrationDeadline,
		update.RegistrationLimit, update.CustomFormFields)
	if err != nil {
		// The guards re-check in the WHERE clause; a concurrent update
		// may have already moved the goalposts.
		if errors.Is(err, repository.ErrPublishedUpdateRejected) {
			return domain.Event{}, ErrFieldNotUpdatable
		}

		return domain.Event{}, fmt.Errorf("s.repo.ApplyPublishedUpdate -> %w", err)
	}

	return updated, nil
}

// publishedRejects reports the first field that cannot change after
// publishing.
func publishedRejects(update domain.EventUpdate) error {
	if update.EventName != nil || update.EventType != nil ||
		update.Eligibility != nil || update.EventStartDate != nil ||
		update.EventEndDate != nil || update.RegistrationFee != nil ||
		update.EventTags != nil || update.ItemDetails != nil ||
		update.StockQuantity != nil || update.PurchaseLimit != nil ||
		update.TeamSize != nil {
		return ErrFieldNotUpdatable
	}

	return nil
}

func onlyStatus(update domain.EventUpdate) bool {
	u := update
	u.Status = nil

	return u.EventName == nil && u.EventDescription == nil && u.EventType == nil &&
		u.Eligibility == nil && u.RegistrationDeadline == nil && u.EventStartDate == nil &&
		u.EventEndDate == nil && u.RegistrationLimit == nil && u.RegistrationFee == nil &&
		u.EventTags == nil && u.CustomFormFields == nil && u.ItemDetails == nil &&
		u.StockQuantity == nil && u.PurchaseLimit == nil && u.TeamSize == nil
}

func applyUpdate(event *domain.Event, update domain.EventUpdate) {
	if update.EventName != nil {
		event.EventName = *update.EventName
	}
	if update.EventDescription != nil {
		event.EventDescription = *update.EventDescription
	}
	if update.EventType != nil {
		event.EventType = *update.EventType
	}
	if update.Eligibility != nil {
		event.Eligibility = *update.Eligibility
	}
	if update.RegistrationDeadline != nil {
		event.RegistrationDeadline = *update.RegistrationDeadline
	}
	if update.EventStartDate != nil {
		event.EventStartDate = *update.EventStartDate
	}
	if update.EventEndDate != nil {
		event.EventEndDate = *update.EventEndDate
	}
	if update.RegistrationLimit != nil {
		event.RegistrationLimit = *update.RegistrationLimit
	}
	if update.RegistrationFee != nil {
		event.RegistrationFee = *update.RegistrationFee
	}
	if update.EventTags != nil {
		event.EventTags = update.EventTags
	}
	if update.CustomFormFields != nil {
		event.CustomFormFields = update.CustomFormFields
	}
	if update.ItemDetails != nil {
		event.ItemDetails = *update.ItemDetails
	}
	if update.StockQuantity != nil {
		event.StockQuantity = *update.StockQuantity
	}
	if update.PurchaseLimit != nil {
		event.PurchaseLimit = *update.PurchaseLimit
	}
	if update.TeamSize != nil {
		event.TeamSize = update.TeamSize
	}
}

// PublishEvent moves Draft → Published. Publishing is irreversible and is
// what makes the event visible to participants.
func (s *EventService) PublishEvent(ctx context.Context, id, organizerID uint) (domain.Event, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}
	if event.OrganizerID != organizerID {
		return domain.Event{}, ErrNotEventOwner
	}

	return s.advance(ctx, event, domain.EventStatusPublished)
}

// AdvanceEventStatus moves the event forward along the lifecycle.
func (s *EventService) AdvanceEventStatus(ctx context.Context, id uint, to domain.EventStatus, organizerID uint) (domain.Event, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}
	if event.OrganizerID != organizerID {
		return domain.Event{}, ErrNotEventOwner
	}

	return s.advance(ctx, event, to)
}

func (s *EventService) advance(ctx context.Context, event domain.Event, to domain.EventStatus) (domain.Event, error) {
	if !event.Status.CanAdvanceTo(to) {
		return domain.Event{}, ErrInvalidStatusTransition
	}

	if err := s.repo.AdvanceStatus(ctx, event.ID, event.Status, to); err != nil {
		if errors.Is(err, repository.ErrInvalidStatusTransition) {
			return domain.Event{}, ErrInvalidStatusTransition
		}

		return domain.Event{}, fmt.Errorf("s.repo.AdvanceStatus -> %w", err)
	}

	event.Status = to

	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id, organizerID uint) error {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if event.OrganizerID != organizerID {
		return ErrNotEventOwner
	}

	if err := s.repo.DeleteDraft(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEventNotDraft) {
			return ErrEventNotDraft
		}

		return fmt.Errorf("s.repo.DeleteDraft -> %w", err)
	}

	return nil
}
