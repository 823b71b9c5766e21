package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrRegistrationNotFound     = errors.New("registration not found")
	ErrAlreadyRegistered        = errors.New("participant already registered for this event")
	ErrRegistrationLimitReached = errors.New("registration limit reached")
	ErrStockInsufficient        = errors.New("not enough stock available")
	ErrEventNotOpen             = errors.New("event is not open for registration")
	ErrAlreadyAttended          = errors.New("attendance already marked")
	ErrAttendanceUnchanged      = errors.New("attendance already in requested state")
	ErrTicketNotFound           = errors.New("invalid ticket or event mismatch")
)

type Registration struct {
	ID uint `gorm:"primaryKey"`

	EventID       uint `gorm:"not null;uniqueIndex:idx_registrations_event_participant,priority:1"`
	ParticipantID uint `gorm:"not null;uniqueIndex:idx_registrations_event_participant,priority:2;index"`

	RegistrationType string `gorm:"not null"`
	Status           string `gorm:"not null;default:'Approved';index"`

	FormResponses      JSONMap      `gorm:"type:jsonb"`
	MerchandiseDetails MerchDetails `gorm:"type:jsonb"`

	TeamID *uint `gorm:"index"`

	PaymentStatus string          `gorm:"not null;default:'Completed'"`
	AmountPaid    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`

	TicketID string `gorm:"not null;uniqueIndex"`
	QRCode   string `gorm:"type:text"`

	Attended       bool `gorm:"not null;default:false"`
	AttendanceTime *time.Time

	RegistrationDate time.Time `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// SlotClaim is the conditional claim a new registration takes against the
// event's counters. It succeeds only if the event is still Published, the
// deadline has not passed, capacity remains, and (for merchandise) stock
// covers the quantity.
type SlotClaim struct {
	EventID     uint
	Now         time.Time
	Amount      decimal.Decimal
	Quantity    int
	Merchandise bool
	LockForm    bool
}

type RegistrationDAO struct {
	db *gorm.DB
}

func NewRegistrationDAO(db *gorm.DB) *RegistrationDAO {
	return &RegistrationDAO{
		db: db,
	}
}

// CreateApproved inserts the registration and applies the slot claim in one
// transaction. The claim is a single guarded UPDATE, so two concurrent
// callers contending for the last slot serialize at the database: one
// increments the counter, the other sees zero rows affected and the whole
// transaction (insert included) rolls back.
func (d *RegistrationDAO) CreateApproved(ctx context.Context, registration Registration, claim SlotClaim) (Registration, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&registration); result.Error != nil {
			if isUniqueViolation(result.Error, "idx_registrations_event_participant") {
				return ErrAlreadyRegistered
			}

			return result.Error
		}

		updates := map[string]any{
			"total_registrations": gorm.Expr("total_registrations + 1"),
			"total_revenue":       gorm.Expr("total_revenue + ?", claim.Amount),
		}
		if claim.LockForm {
			updates["form_locked"] = gorm.Expr("CASE WHEN total_registrations = 0 THEN TRUE ELSE form_locked END")
		}

		query := tx.Model(&Event{}).
			Where("id = ? AND status = ?", claim.EventID, "Published").
			Where("registration_deadline >= ?", claim.Now).
			Where("total_registrations < registration_limit")
		if claim.Merchandise {
			updates["stock_quantity"] = gorm.Expr("stock_quantity - ?", claim.Quantity)
			query = query.Where("stock_quantity >= ?", claim.Quantity)
		}

		result := query.Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return d.classifyClaimFailure(tx, claim)
		}

		return nil
	})
	if err != nil {
		return Registration{}, err
	}

	return registration, nil
}

// classifyClaimFailure re-reads the event inside the same transaction to
// report which guard rejected the claim.
func (d *RegistrationDAO) classifyClaimFailure(tx *gorm.DB, claim SlotClaim) error {
	var event Event
	if result := tx.First(&event, claim.EventID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}

		return result.Error
	}

	switch {
	case event.Status != "Published" || event.RegistrationDeadline.Before(claim.Now):
		return ErrEventNotOpen
	case event.TotalRegistrations >= event.RegistrationLimit:
		return ErrRegistrationLimitReached
	case claim.Merchandise && event.StockQuantity < claim.Quantity:
		return ErrStockInsufficient
	default:
		return ErrEventNotOpen
	}
}

// CreateForTeamMember inserts a cascade registration and bumps the event's
// registration counter. Capacity is not re-checked here: the team already
// holds its places, mirroring how completions have always been applied.
func (d *RegistrationDAO) CreateForTeamMember(ctx context.Context, registration Registration) (Registration, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&registration); result.Error != nil {
			if isUniqueViolation(result.Error, "idx_registrations_event_participant") {
				return ErrAlreadyRegistered
			}

			return result.Error
		}

		result := tx.Model(&Event{}).
			Where("id = ?", registration.EventID).
			Update("total_registrations", gorm.Expr("total_registrations + 1"))

		return result.Error
	})
	if err != nil {
		return Registration{}, err
	}

	return registration, nil
}

// LinkTeam retro-links an existing registration to a team. Registrations
// already carrying a team keep it; re-runs are no-ops.
func (d *RegistrationDAO) LinkTeam(ctx context.Context, registrationID, teamID uint) error {
	result := d.db.WithContext(ctx).
		Model(&Registration{}).
		Where("id = ? AND team_id IS NULL", registrationID).
		Update("team_id", teamID)

	return result.Error
}

func (d *RegistrationDAO) FindByID(ctx context.Context, id uint) (Registration, error) {
	var registration Registration
	result := d.db.WithContext(ctx).First(&registration, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return registration, nil
}

func (d *RegistrationDAO) FindByEventAndParticipant(ctx context.Context, eventID, participantID uint) (Registration, error) {
	var registration Registration
	result := d.db.WithContext(ctx).
		Where("event_id = ? AND participant_id = ?", eventID, participantID).
		First(&registration)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrRegistrationNotFound
		}

		return Registration{}, result.Error
	}

	return registration, nil
}

func (d *RegistrationDAO) FindByTicketAndEvent(ctx context.Context, ticketID string, eventID uint) (Registration, error) {
	var registration Registration
	result := d.db.WithContext(ctx).
		Where("ticket_id = ? AND event_id = ?", ticketID, eventID).
		First(&registration)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Registration{}, ErrTicketNotFound
		}

		return Registration{}, result.Error
	}

	return registration, nil
}

func (d *RegistrationDAO) FindByParticipant(ctx context.Context, participantID uint) ([]Registration, error) {
	var registrations []Registration
	result := d.db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Order("created_at DESC").
		Find(&registrations)
	if result.Error != nil {
		return nil, result.Error
	}

	return registrations, nil
}

func (d *RegistrationDAO) FindByEvent(ctx context.Context, eventID uint) ([]Registration, error) {
	var registrations []Registration
	result := d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("attendance_time DESC NULLS LAST").
		Find(&registrations)
	if result.Error != nil {
		return nil, result.Error
	}

	return registrations, nil
}

func (d *RegistrationDAO) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := d.db.WithContext(ctx).
		Model(&Registration{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}

// MarkAttendance latches attended false→true and bumps the event counter in
// one transaction. A ticket scanned twice loses the race on the guard and
// reports ErrAlreadyAttended with nothing mutated.
func (d *RegistrationDAO) MarkAttendance(ctx context.Context, registrationID, eventID uint, now time.Time) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Registration{}).
			Where("id = ? AND attended = ?", registrationID, false).
			Updates(map[string]any{
				"attended":        true,
				"attendance_time": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyAttended
		}

		result = tx.Model(&Event{}).
			Where("id = ?", eventID).
			Update("total_attendance", gorm.Expr("total_attendance + 1"))

		return result.Error
	})
}

// OverrideAttendance flips attended to the requested value, adjusts the
// event counter by ±1 in the matching direction and appends the audit row,
// all in one transaction. The guard on the current value keeps every audit
// row paired with exactly one counter adjustment.
func (d *RegistrationDAO) OverrideAttendance(ctx context.Context, registrationID, eventID uint, desired bool, now time.Time, audit AuditLog) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"attended": desired}
		if desired {
			updates["attendance_time"] = now
		} else {
			updates["attendance_time"] = nil
		}

		result := tx.Model(&Registration{}).
			Where("id = ? AND attended = ?", registrationID, !desired).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAttendanceUnchanged
		}

		counter := "total_attendance + 1"
		if !desired {
			counter = "GREATEST(total_attendance - 1, 0)"
		}
		result = tx.Model(&Event{}).
			Where("id = ?", eventID).
			Update("total_attendance", gorm.Expr(counter))
		if result.Error != nil {
			return result.Error
		}

		return tx.Create(&audit).Error
	})
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		pgErr.ConstraintName == constraint
}
