package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/festhub/festhub-api/internal/domain"
	"github.com/festhub/festhub-api/internal/repository/dao"
)

var (
	ErrRegistrationNotFound     = dao.ErrRegistrationNotFound
	ErrAlreadyRegistered        = dao.ErrAlreadyRegistered
	ErrRegistrationLimitReached = dao.ErrRegistrationLimitReached
	ErrStockInsufficient        = dao.ErrStockInsufficient
	ErrEventNotOpen             = dao.ErrEventNotOpen
	ErrAlreadyAttended          = dao.ErrAlreadyAttended
	ErrAttendanceUnchanged      = dao.ErrAttendanceUnchanged
	ErrTicketNotFound           = dao.ErrTicketNotFound
)

type RegistrationDAO interface {
	CreateApproved(ctx context.Context, registration dao.Registration, claim dao.SlotClaim) (dao.Registration, error)
	CreateForTeamMember(ctx context.Context, registration dao.Registration) (dao.Registration, error)
	LinkTeam(ctx context.Context, registrationID, teamID uint) error
	FindByID(ctx context.Context, id uint) (dao.Registration, error)
	FindByEventAndParticipant(ctx context.Context, eventID, participantID uint) (dao.Registration, error)
	FindByTicketAndEvent(ctx context.Context, ticketID string, eventID uint) (dao.Registration, error)
	FindByParticipant(ctx context.Context, participantID uint) ([]dao.Registration, error)
	FindByEvent(ctx context.Context, eventID uint) ([]dao.Registration, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	MarkAttendance(ctx context.Context, registrationID, eventID uint, now time.Time) error
	OverrideAttendance(ctx context.Context, registrationID, eventID uint, desired bool, now time.Time, audit dao.AuditLog) error
}

// SlotClaim mirrors dao.SlotClaim at the domain boundary.
type SlotClaim struct {
	EventID     uint
	Now         time.Time
	Amount      decimal.Decimal
	Quantity    int
	Merchandise bool
	LockForm    bool
}

type RegistrationRepository struct {
	dao RegistrationDAO
}

func NewRegistrationRepository(dao RegistrationDAO) *RegistrationRepository {
	return &RegistrationRepository{
		dao: dao,
	}
}

func (r *RegistrationRepository) domainToDao(reg domain.Registration) dao.Registration {
	registration := dao.Registration{
		ID:               reg.ID,
		EventID:          reg.EventID,
		ParticipantID:    reg.ParticipantID,
		RegistrationType: string(reg.RegistrationType),
		Status:           string(reg.Status),
		FormResponses:    dao.JSONMap(reg.FormResponses),
		TeamID:           reg.TeamID,
		PaymentStatus:    string(reg.PaymentStatus),
		AmountPaid:       reg.AmountPaid,
		TicketID:         reg.TicketID,
		QRCode:           reg.QRCode,
		Attended:         reg.Attended,
		AttendanceTime:   reg.AttendanceTime,
		RegistrationDate: reg.RegistrationDate,
	}
	if reg.MerchandiseDetails != nil {
		registration.MerchandiseDetails = dao.MerchDetails{
			Size:     reg.MerchandiseDetails.Size,
			Color:    reg.MerchandiseDetails.Color,
			Variant:  reg.MerchandiseDetails.Variant,
			Quantity: reg.MerchandiseDetails.Quantity,
		}
	}

	return registration
}

func (r *RegistrationRepository) daoToDomain(reg dao.Registration) domain.Registration {
	registration := domain.Registration{
		ID:               reg.ID,
		EventID:          reg.EventID,
		ParticipantID:    reg.ParticipantID,
		RegistrationType: domain.EventType(reg.RegistrationType),
		Status:           domain.RegistrationStatus(reg.Status),
		FormResponses:    reg.FormResponses,
		TeamID:           reg.TeamID,
		PaymentStatus:    domain.PaymentStatus(reg.PaymentStatus),
		AmountPaid:       reg.AmountPaid,
		TicketID:         reg.TicketID,
		QRCode:           reg.QRCode,
		Attended:         reg.Attended,
		AttendanceTime:   reg.AttendanceTime,
		RegistrationDate: reg.RegistrationDate,
	}
	if reg.MerchandiseDetails != (dao.MerchDetails{}) {
		registration.MerchandiseDetails = &domain.MerchandiseDetails{
			Size:     reg.MerchandiseDetails.Size,
			Color:    reg.MerchandiseDetails.Color,
			Variant:  reg.MerchandiseDetails.Variant,
			Quantity: reg.MerchandiseDetails.Quantity,
		}
	}

	return registration
}

func (r *RegistrationRepository) daosToDomain(regs []dao.Registration) []domain.Registration {
	result := make([]domain.Registration, len(regs))
	for i, reg := range regs {
		result[i] = r.daoToDomain(reg)
	}

	return result
}

func (r *RegistrationRepository) CreateApproved(ctx context.Context, registration domain.Registration, claim SlotClaim) (domain.Registration, error) {
	created, err := r.dao.CreateApproved(ctx, r.domainToDao(registration), dao.SlotClaim{
		EventID:     claim.EventID,
		Now:         claim.Now,
		Amount:      claim.Amount,
		Quantity:    claim.Quantity,
		Merchandise: claim.Merchandise,
		LockForm:    claim.LockForm,
	})
	if err != nil {
		return domain.Registration{}, err
	}

	return r.daoToDomain(created), nil
}

func (r *RegistrationRepository) CreateForTeamMember(ctx context.Context, registration domain.Registration) (domain.Registration, error) {
	created, err := r.dao.CreateForTeamMember(ctx, r.domainToDao(registration))
	if err != nil {
		return domain.Registration{}, err
	}

	return r.daoToDomain(created), nil
}

func (r *RegistrationRepository) LinkTeam(ctx context.Context, registrationID, teamID uint) error {
	return r.dao.LinkTeam(ctx, registrationID, teamID)
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id uint) (domain.Registration, error) {
	registration, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Registration{}, err
	}

	return r.daoToDomain(registration), nil
}

func (r *RegistrationRepository) FindByEventAndParticipant(ctx context.Context, eventID, participantID uint) (domain.Registration, error) {
	registration, err := r.dao.FindByEventAndParticipant(ctx, eventID, participantID)
	if err != nil {
		return domain.Registration{}, err
	}

	return r.daoToDomain(registration), nil
}

func (r *RegistrationRepository) FindByTicketAndEvent(ctx context.Context, ticketID string, eventID uint) (domain.Registration, error) {
	registration, err := r.dao.FindByTicketAndEvent(ctx, ticketID, eventID)
	if err != nil {
		return domain.Registration{}, err
	}

	return r.daoToDomain(registration), nil
}

func (r *RegistrationRepository) FindByParticipant(ctx context.Context, participantID uint) ([]domain.Registration, error) {
	registrations, err := r.dao.FindByParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}

	return r.daosToDomain(registrations), nil
}

func (r *RegistrationRepository) FindByEvent(ctx context.Context, eventID uint) ([]domain.Registration, error) {
	registrations, err := r.dao.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return r.daosToDomain(registrations), nil
}

func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id uint, status domain.RegistrationStatus) error {
	return r.dao.UpdateStatus(ctx, id, string(status))
}

func (r *RegistrationRepository) MarkAttendance(ctx context.Context, registrationID, eventID uint, now time.Time) error {
	return r.dao.MarkAttendance(ctx, registrationID, eventID, now)
}

func (r *RegistrationRepository) OverrideAttendance(ctx context.Context, registrationID, eventID uint, desired bool, now time.Time, audit domain.AuditLog) error {
	return r.dao.OverrideAttendance(ctx, registrationID, eventID, desired, now, dao.AuditLog{
		EventID:        audit.EventID,
		RegistrationID: audit.RegistrationID,
		PerformedBy:    audit.PerformedBy,
		Action:         audit.Action,
		Reason:         audit.Reason,
		PreviousValue:  audit.PreviousValue,
		NewValue:       audit.NewValue,
		Timestamp:      audit.Timestamp,
	})
}
