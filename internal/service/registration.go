package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/festhub/festhub-api/internal/domain"
	"github.com/festhub/festhub-api/internal/monitoring"
	"github.com/festhub/festhub-api/internal/notification"
	"github.com/festhub/festhub-api/internal/repository"
	"github.com/festhub/festhub-api/internal/ticket"
)

var (
	ErrRegistrationNotFound  = repository.ErrRegistrationNotFound
	ErrAlreadyRegistered     = repository.ErrAlreadyRegistered
	ErrEventFull             = repository.ErrRegistrationLimitReached
	ErrStockInsufficient     = repository.ErrStockInsufficient
	ErrEventNotOpen          = repository.ErrEventNotOpen
	ErrUserNotFound          = repository.ErrUserNotFound
	ErrDeadlinePassed        = errors.New("registration deadline has passed")
	ErrNotEligible           = errors.New("participant does not meet the event's eligibility")
	ErrTeamEventRegistration = errors.New("team events register through team formation")
	ErrInvalidQuantity       = errors.New("quantity must be at least 1")
	ErrPurchaseLimitExceeded = errors.New("quantity exceeds the per-participant purchase limit")
	ErrInvalidMerchOption    = errors.New("merchandise option is not offered for this item")
	ErrMissingFormField      = errors.New("required form field is missing")
)

type RegistrationRepository interface {
	CreateApproved(ctx context.Context, registration domain.Registration, claim repository.SlotClaim) (domain.Registration, error)
	CreateForTeamMember(ctx context.Context, registration domain.Registration) (domain.Registration, error)
	LinkTeam(ctx context.Context, registrationID, teamID uint) error
	GetByID(ctx context.Context, id uint) (domain.Registration, error)
	FindByEventAndParticipant(ctx context.Context, eventID, participantID uint) (domain.Registration, error)
	FindByTicketAndEvent(ctx context.Context, ticketID string, eventID uint) (domain.Registration, error)
	FindByParticipant(ctx context.Context, participantID uint) ([]domain.Registration, error)
	FindByEvent(ctx context.Context, eventID uint) ([]domain.Registration, error)
	UpdateStatus(ctx context.Context, id uint, status domain.RegistrationStatus) error
	MarkAttendance(ctx context.Context, registrationID, eventID uint, now time.Time) error
	OverrideAttendance(ctx context.Context, registrationID, eventID uint, desired bool, now time.Time, audit domain.AuditLog) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

// TicketNotifier dispatches the ticket email after a registration commits.
// Failures are logged, never surfaced: the registration already exists and
// must not be undone by a slow broker.
type TicketNotifier interface {
	SendTicketEmail(ctx context.Context, msg notification.TicketEmailMessage) error
}

type RegisterInput struct {
	FormResponses map[string]any
	Merchandise   *domain.MerchandiseDetails
}

// RegistrationService admits participants into events. Every admission
// happens through a single conditional write, so capacity and stock hold
// under concurrent requests without application-level locking.
type RegistrationService struct {
	repo      RegistrationRepository
	eventRepo EventRepository
	userRepo  UserRepository
	notifier  TicketNotifier
	now       func() time.Time
}

func NewRegistrationService(repo RegistrationRepository, eventRepo EventRepository, userRepo UserRepository, notifier TicketNotifier) *RegistrationService {
	return &RegistrationService{
		repo:      repo,
		eventRepo: eventRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Register checks the preconditions in order (open event, deadline,
// capacity, eligibility, no duplicate, merchandise constraints), then
// claims a slot atomically. The pre-checks give precise errors; the claim
// itself is what makes the result correct under contention.
func (s *RegistrationService) Register(ctx context.Context, eventID, participantID uint, input RegisterInput) (domain.Registration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Registration{}, ErrEventNotFound
		}

		return domain.Registration{}, fmt.Errorf("s.eventRepo.GetByID -> %w", err)
	}

	now := s.now()

	if event.Status != domain.EventStatusPublished {
		return domain.Registration{}, ErrEventNotOpen
	}
	if now.After(event.RegistrationDeadline) {
		return domain.Registration{}, ErrDeadlinePassed
	}
	if event.AvailableSlots() == 0 {
		s.countRejected(event)
		return domain.Registration{}, ErrEventFull
	}
	if event.IsTeamBased() {
		return domain.Registration{}, ErrTeamEventRegistration
	}

	user, err := s.userRepo.FindByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.Registration{}, ErrUserNotFound
		}

		return domain.Registration{}, fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}
	if !event.EligibilityAllows(user.ParticipantType) {
		s.countRejected(event)
		return domain.Registration{}, ErrNotEligible
	}

	if _, err := s.repo.FindByEventAndParticipant(ctx, eventID, participantID); err == nil {
		return domain.Registration{}, ErrAlreadyRegistered
	} else if !errors.Is(err, repository.ErrRegistrationNotFound) {
		return domain.Registration{}, fmt.Errorf("s.repo.FindByEventAndParticipant -> %w", err)
	}

	quantity := 1
	if event.EventType == domain.EventTypeMerchandise {
		quantity, err = s.checkMerchandise(event, input.Merchandise)
		if err != nil {
			s.countRejected(event)
			return domain.Registration{}, err
		}
	}

	if err := validateFormResponses(event.CustomFormFields, input.FormResponses); err != nil {
		return domain.Registration{}, err
	}

	ticketID, err := ticket.GenerateTicketID()
	if err != nil {
		return domain.Registration{}, fmt.Errorf("ticket.GenerateTicketID -> %w", err)
	}
	qr, err := ticket.EncodeQR(ticket.QRPayload{
		TicketID:        ticketID,
		EventID:         event.ID,
		ParticipantID:   participantID,
		EventName:       event.EventName,
		ParticipantName: user.FullName(),
	})
	if err != nil {
		return domain.Registration{}, fmt.Errorf("ticket.EncodeQR -> %w", err)
	}

	amount := event.RegistrationFee.Mul(decimal.NewFromInt(int64(quantity)))
	registration := domain.Registration{
		EventID:          eventID,
		ParticipantID:    participantID,
		RegistrationType: event.EventType,
		Status:           domain.RegistrationStatusApproved,
		FormResponses:    input.FormResponses,
		PaymentStatus:    domain.PaymentStatusCompleted,
		AmountPaid:       amount,
		TicketID:         ticketID,
		QRCode:           qr,
		RegistrationDate: now,
	}
	if event.EventType == domain.EventTypeMerchandise {
		merch := *input.Merchandise
		merch.Quantity = quantity
		registration.MerchandiseDetails = &merch
	}
	created, err := s.repo.CreateApproved(ctx, registration, repository.SlotClaim{
		EventID:     eventID,
		Now:         now,
		Amount:      amount,
		Quantity:    quantity,
		Merchandise: event.EventType == domain.EventTypeMerchandise,
		LockForm:    len(event.CustomFormFields) > 0,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyRegistered):
			return domain.Registration{}, ErrAlreadyRegistered
		case errors.Is(err, repository.ErrRegistrationLimitReached):
			s.countRejected(event)
			return domain.Registration{}, ErrEventFull
		case errors.Is(err, repository.ErrStockInsufficient):
			s.countRejected(event)
			return domain.Registration{}, ErrStockInsufficient
		case errors.Is(err, repository.ErrEventNotOpen):
			return domain.Registration{}, ErrEventNotOpen
		}

		return domain.Registration{}, fmt.Errorf("s.repo.CreateApproved -> %w", err)
	}

	monitoring.RegistrationsTotal.WithLabelValues(string(event.EventType), "approved").Inc()

	s.dispatchTicket(ctx, user, event, created)

	return created, nil
}

func (s *RegistrationService) countRejected(event domain.Event) {
	monitoring.RegistrationsTotal.WithLabelValues(string(event.EventType), "rejected").Inc()
}

// dispatchTicket is fire-and-forget: the registration is already durable.
func (s *RegistrationService) dispatchTicket(ctx context.Context, user domain.User, event domain.Event, reg domain.Registration) {
	err := s.notifier.SendTicketEmail(ctx, notification.TicketEmailMessage{
		ToEmail:         user.Email,
		ParticipantName: user.FullName(),
		EventName:       event.EventName,
		TicketID:        reg.TicketID,
		QRCode:          reg.QRCode,
	})
	if err != nil {
		zap.L().Warn("failed to queue ticket email",
			zap.Uint("registration_id", reg.ID),
			zap.String("ticket_id", reg.TicketID),
			zap.Error(err))
	}
}

func (s *RegistrationService) checkMerchandise(event domain.Event, merch *domain.MerchandiseDetails) (int, error) {
	if merch == nil {
		merch = &domain.MerchandiseDetails{}
	}

	quantity := merch.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return 0, ErrInvalidQuantity
	}
	if event.PurchaseLimit > 0 && quantity > event.PurchaseLimit {
		return 0, ErrPurchaseLimitExceeded
	}
	if event.StockQuantity < quantity {
		return 0, ErrStockInsufficient
	}

	// Option sets only constrain when declared. An item without sizes
	// accepts any (or no) size.
	if !optionAllowed(event.ItemDetails.Sizes, merch.Size) ||
		!optionAllowed(event.ItemDetails.Colors, merch.Color) ||
		!optionAllowed(event.ItemDetails.Variants, merch.Variant) {
		return 0, ErrInvalidMerchOption
	}

	return quantity, nil
}

func optionAllowed(options []string, value string) bool {
	if len(options) == 0 {
		return true
	}
	for _, o := range options {
		if o == value {
			return true
		}
	}

	return false
}

func validateFormResponses(fields []domain.CustomFormField, responses map[string]any) error {
	for _, f := range fields {
		if !f.IsRequired {
			continue
		}
		v, ok := responses[f.FieldName]
		if !ok || v == nil || v == "" {
			return fmt.Errorf("%w: %s", ErrMissingFormField, f.FieldName)
		}
	}

	return nil
}

func (s *RegistrationService) GetRegistration(ctx context.Context, id uint) (domain.Registration, error) {
	registration, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return domain.Registration{}, ErrRegistrationNotFound
		}

		return domain.Registration{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	return registration, nil
}

func (s *RegistrationService) ListForParticipant(ctx context.Context, participantID uint) ([]domain.Registration, error) {
	registrations, err := s.repo.FindByParticipant(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByParticipant -> %w", err)
	}

	return registrations, nil
}

// GetForParticipantEvent returns the caller's own registration for an
// event, if one exists. Event detail pages use it to show the caller's
// ticket alongside the event.
func (s *RegistrationService) GetForParticipantEvent(ctx context.Context, eventID, participantID uint) (domain.Registration, error) {
	registration, err := s.repo.FindByEventAndParticipant(ctx, eventID, participantID)
	if err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return domain.Registration{}, ErrRegistrationNotFound
		}

		return domain.Registration{}, fmt.Errorf("s.repo.FindByEventAndParticipant -> %w", err)
	}

	return registration, nil
}

// ListForEvent is organizer-facing: it returns every registration for an
// event the caller owns.
func (s *RegistrationService) ListForEvent(ctx context.Context, eventID, organizerID uint) ([]domain.Registration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}

		return nil, fmt.Errorf("s.eventRepo.GetByID -> %w", err)
	}
	if event.OrganizerID != organizerID {
		return nil, ErrNotEventOwner
	}

	registrations, err := s.repo.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByEvent -> %w", err)
	}

	return registrations, nil
}

// ChangeStatus lets the owning organizer move a registration to Completed,
// Rejected or Cancelled.
func (s *RegistrationService) ChangeStatus(ctx context.Context, registrationID uint, status domain.RegistrationStatus, organizerID uint) error {
	registration, err := s.GetRegistration(ctx, registrationID)
	if err != nil {
		return err
	}

	event, err := s.eventRepo.GetByID(ctx, registration.EventID)
	if err != nil {
		return fmt.Errorf("s.eventRepo.GetByID -> %w", err)
	}
	if event.OrganizerID != organizerID {
		return ErrNotEventOwner
	}

	if err := s.repo.UpdateStatus(ctx, registrationID, status); err != nil {
		return fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	return nil
}
