package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound           = errors.New("event not found")
	ErrEventNotDraft           = errors.New("event is not a draft")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrPublishedUpdateRejected = errors.New("update rejected for published event")
)

type Event struct {
	ID uint `gorm:"primaryKey"`

	EventName        string `gorm:"not null"`
	EventDescription string `gorm:"not null"`
	EventType        string `gorm:"not null;index"`
	Eligibility      string `gorm:"not null"`

	RegistrationDeadline time.Time `gorm:"not null"`
	EventStartDate       time.Time `gorm:"not null;index"`
	EventEndDate         time.Time `gorm:"not null"`

	RegistrationLimit int             `gorm:"not null"`
	RegistrationFee   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	OrganizerID       uint            `gorm:"not null;index"`
	EventTags         StringSlice     `gorm:"type:jsonb"`
	Status            string          `gorm:"not null;default:'Draft';index"`

	CustomFormFields FormFields `gorm:"type:jsonb"`
	FormLocked       bool       `gorm:"not null;default:false"`

	ItemDetails   ItemOptions `gorm:"type:jsonb"`
	StockQuantity int         `gorm:"not null;default:0"`
	PurchaseLimit int         `gorm:"not null;default:1"`

	TeamSizeMin int `gorm:"not null;default:0"`
	TeamSizeMax int `gorm:"not null;default:0"`

	TotalRegistrations int             `gorm:"not null;default:0"`
	TotalRevenue       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	TotalAttendance    int             `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// EventFilter narrows FindPublished results. Zero values are skipped.
type EventFilter struct {
	Search      string
	EventType   string
	Eligibility string
	Tag         string
	StartAfter  *time.Time
	StartBefore *time.Time
	OrganizerID uint
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	if result := d.db.WithContext(ctx).Create(&event); result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event
	result := d.db.WithContext(ctx).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindPublished(ctx context.Context, filter EventFilter) ([]Event, error) {
	query := d.db.WithContext(ctx).Where("status = ?", "Published")

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("event_name ILIKE ? OR event_description ILIKE ?", like, like)
	}
	if filter.EventType != "" {
		query = query.Where("event_type = ?", filter.EventType)
	}
	if filter.Eligibility != "" {
		query = query.Where("eligibility = ?", filter.Eligibility)
	}
	if filter.Tag != "" {
		// jsonb containment against the tags array.
		query = query.Where("event_tags @> ?", StringSlice{filter.Tag})
	}
	if filter.StartAfter != nil {
		query = query.Where("event_start_date >= ?", *filter.StartAfter)
	}
	if filter.StartBefore != nil {
		query = query.Where("event_start_date <= ?", *filter.StartBefore)
	}
	if filter.OrganizerID != 0 {
		query = query.Where("organizer_id = ?", filter.OrganizerID)
	}

	var events []Event
	if result := query.Order("event_start_date ASC").Find(&events); result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

func (d *EventDAO) FindByOrganizer(ctx context.Context, organizerID uint) ([]Event, error) {
	var events []Event
	result := d.db.WithContext(ctx).
		Where("organizer_id = ?", organizerID).
		Order("created_at DESC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// UpdateDraft replaces every mutable field. The status guard makes it a
// no-op once the event leaves Draft, however the update raced.
func (d *EventDAO) UpdateDraft(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ? AND status = ?", event.ID, "Draft").
		Select(
			"event_name", "event_description", "event_type", "eligibility",
			"registration_deadline", "event_start_date", "event_end_date",
			"registration_limit", "registration_fee", "event_tags",
			"custom_form_fields", "item_details", "stock_quantity",
			"purchase_limit", "team_size_min", "team_size_max",
		).
		Updates(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Event{}, ErrEventNotDraft
	}

	return d.FindByID(ctx, event.ID)
}

// PublishedUpdate is the restricted mutation allowed after publishing.
// Monotonicity is enforced in the WHERE clause: the deadline may only move
// later and the limit may only grow, so two racing updates cannot weaken
// commitments participants already hold.
type PublishedUpdate struct {
	EventDescription     *string
	RegistrationDeadline *time.Time
	RegistrationLimit    *int
	CustomFormFields     FormFields
}

func (d *EventDAO) ApplyPublishedUpdate(ctx context.Context, id uint, update PublishedUpdate) (Event, error) {
	updates := map[string]any{}
	query := d.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ? AND status = ?", id, "Published")

	if update.EventDescription != nil {
		updates["event_description"] = *update.EventDescription
	}
	if update.RegistrationDeadline != nil {
		updates["registration_deadline"] = *update.RegistrationDeadline
		query = query.Where("registration_deadline <= ?", *update.RegistrationDeadline)
	}
	if update.RegistrationLimit != nil {
		updates["registration_limit"] = *update.RegistrationLimit
		query = query.Where("registration_limit <= ?", *update.RegistrationLimit)
	}
	if update.CustomFormFields != nil {
		updates["custom_form_fields"] = update.CustomFormFields
		query = query.Where("form_locked = ?", false)
	}

	if len(updates) == 0 {
		return d.FindByID(ctx, id)
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return Event{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Event{}, ErrPublishedUpdateRejected
	}

	return d.FindByID(ctx, id)
}

// AdvanceStatus moves the event from exactly `from` to `to`. The guard on
// the source status keeps the machine forward-only under concurrent calls.
func (d *EventDAO) AdvanceStatus(ctx context.Context, id uint, from, to string) error {
	result := d.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvalidStatusTransition
	}

	return nil
}

func (d *EventDAO) DeleteDraft(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, "Draft").
		Delete(&Event{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotDraft
	}

	return nil
}
