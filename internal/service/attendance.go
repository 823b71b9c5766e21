package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/festhub/festhub-api/internal/domain"
	"github.com/festhub/festhub-api/internal/monitoring"
	"github.com/festhub/festhub-api/internal/repository"
)

var (
	ErrTicketNotFound        = repository.ErrTicketNotFound
	ErrAttendanceUnchanged   = repository.ErrAttendanceUnchanged
	ErrReasonRequired        = errors.New("override reason is required")
	ErrRegistrationNotActive = errors.New("registration is not active")
)

// AlreadyAttendedError reports a duplicate scan along with when the ticket
// was first used, so the gate can show the operator the earlier check-in.
type AlreadyAttendedError struct {
	AttendanceTime time.Time
}

func (e *AlreadyAttendedError) Error() string {
	return fmt.Sprintf("ticket already scanned at %s", e.AttendanceTime.Format(time.RFC3339))
}

func (e *AlreadyAttendedError) Is(target error) bool {
	return target == repository.ErrAlreadyAttended
}

type AuditLogRepository interface {
	FindByEvent(ctx context.Context, eventID uint) ([]domain.AuditLog, error)
}

// AttendanceReport summarizes check-ins for an event, with the
// registrations split by whether the participant showed up.
type AttendanceReport struct {
	EventID            uint                  `json:"eventId"`
	TotalRegistrations int                   `json:"totalRegistrations"`
	TotalAttendance    int                   `json:"totalAttendance"`
	Absent             int                   `json:"absent"`
	AttendanceRate     float64               `json:"attendanceRate"`
	Attended           []domain.Registration `json:"attended"`
	NotAttended        []domain.Registration `json:"notAttended"`
}

// AttendanceService marks tickets at the gate. A ticket admits exactly
// once; the attendance counter moves in the same transaction as the flag,
// and manual corrections always leave an audit entry.
type AttendanceService struct {
	regRepo   RegistrationRepository
	eventRepo EventRepository
	auditRepo AuditLogRepository
	now       func() time.Time
}

func NewAttendanceService(regRepo RegistrationRepository, eventRepo EventRepository, auditRepo AuditLogRepository) *AttendanceService {
	return &AttendanceService{
		regRepo:   regRepo,
		eventRepo: eventRepo,
		auditRepo: auditRepo,
		now:       time.Now,
	}
}

// ScanAndMark validates a scanned ticket against the event and marks
// attendance. A second scan of the same ticket fails with the time of the
// first one.
func (s *AttendanceService) ScanAndMark(ctx context.Context, eventID uint, ticketID string, scannerID uint) (domain.Registration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Registration{}, ErrEventNotFound
		}

		return domain.Registration{}, fmt.Errorf("s.eventRepo.GetByID -> %w", err)
	}
	if event.OrganizerID != scannerID {
		return domain.Registration{}, ErrNotEventOwner
	}

	registration, err := s.regRepo.FindByTicketAndEvent(ctx, ticketID, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) || errors.Is(err, repository.ErrRegistrationNotFound) {
			monitoring.AttendanceScansTotal.WithLabelValues("invalid").Inc()
			return domain.Registration{}, ErrTicketNotFound
		}

		return domain.Registration{}, fmt.Errorf("s.regRepo.FindByTicketAndEvent -> %w", err)
	}

	switch registration.Status {
	case domain.RegistrationStatusApproved, domain.RegistrationStatusCompleted:
	default:
		monitoring.AttendanceScansTotal.WithLabelValues("invalid").Inc()
		return domain.Registration{}, ErrRegistrationNotActive
	}

	now := s.now()
	if err := s.regRepo.MarkAttendance(ctx, registration.ID, eventID, now); err != nil {
		if errors.Is(err, repository.ErrAlreadyAttended) {
			monitoring.AttendanceScansTotal.WithLabelValues("duplicate").Inc()
			return domain.Registration{}, s.alreadyAttended(ctx, registration)
		}

		return domain.Registration{}, fmt.Errorf("s.regRepo.MarkAttendance -> %w", err)
	}

	monitoring.AttendanceScansTotal.WithLabelValues("marked").Inc()

	registration.Attended = true
	registration.AttendanceTime = &now

	return registration, nil
}

func (s *AttendanceService) alreadyAttended(ctx context.Context, registration domain.Registration) error {
	attendedAt := registration.AttendanceTime
	if attendedAt == nil {
		// The scan that beat us committed after our read; fetch its time.
		fresh, err := s.regRepo.GetByID(ctx, registration.ID)
		if err == nil {
			attendedAt = fresh.AttendanceTime
		}
	}
	if attendedAt == nil {
		now := s.now()
		attendedAt = &now
	}

	return &AlreadyAttendedError{AttendanceTime: *attendedAt}
}

// ManualOverride sets the attendance flag by hand. It requires a reason,
// writes an audit entry in the same transaction as the counter, and
// rejects a no-op override so the counter can never drift.
func (s *AttendanceService) ManualOverride(ctx context.Context, eventID, registrationID uint, desired bool, reason string, performedBy uint) (domain.Registration, error) {
	if reason == "" {
		return domain.Registration{}, ErrReasonRequired
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Registration{}, ErrEventNotFound
		}

		return domain.Registration{}, fmt.Errorf("s.eventRepo.GetByID -> %w", err)
	}
	if event.OrganizerID != performedBy {
		return domain.Registration{}, ErrNotEventOwner
	}

	registration, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return domain.Registration{}, ErrRegistrationNotFound
		}

		return domain.Registration{}, fmt.Errorf("s.regRepo.GetByID -> %w", err)
	}
	if registration.EventID != eventID {
		return domain.Registration{}, ErrRegistrationNotFound
	}

	now := s.now()
	audit := domain.AuditLog{
		EventID:        eventID,
		RegistrationID: registrationID,
		PerformedBy:    performedBy,
		Action:         "attendance_override",
		Reason:         reason,
		PreviousValue:  fmt.Sprintf("%t", registration.Attended),
		NewValue:       fmt.Sprintf("%t", desired),
		Timestamp:      now,
	}

	if err := s.regRepo.OverrideAttendance(ctx, registrationID, eventID, desired, now, audit); err != nil {
		if errors.Is(err, repository.ErrAttendanceUnchanged) {
			return domain.Registration{}, ErrAttendanceUnchanged
		}

		return domain.Registration{}, fmt.Errorf("s.regRepo.OverrideAttendance -> %w", err)
	}

	registration.Attended = desired
	if desired {
		registration.AttendanceTime = &now
	} else {
		registration.AttendanceTime = nil
	}

	return registration, nil
}

// Report builds the attendance summary the organizer dashboard shows.
func (s *AttendanceService) Report(ctx context.Context, eventID, organizerID uint) (AttendanceReport, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return AttendanceReport{}, ErrEventNotFound
		}

		return AttendanceReport{}, fmt.Errorf("s.eventRepo.GetByID -> %w", err)
	}
	if event.OrganizerID != organizerID {
		return AttendanceReport{}, ErrNotEventOwner
	}

	registrations, err := s.regRepo.FindByEvent(ctx, eventID)
	if err != nil {
		return AttendanceReport{}, fmt.Errorf("s.regRepo.FindByEvent -> %w", err)
	}

	report := AttendanceReport{
		EventID:            eventID,
		TotalRegistrations: event.TotalRegistrations,
		TotalAttendance:    event.TotalAttendance,
	}
	for _, registration := range registrations {
		if registration.Attended {
			report.Attended = append(report.Attended, registration)
		} else {
			report.NotAttended = append(report.NotAttended, registration)
		}
	}
	report.Absent = report.TotalRegistrations - report.TotalAttendance
	if report.Absent < 0 {
		report.Absent = 0
	}
	if report.TotalRegistrations > 0 {
		report.AttendanceRate = float64(report.TotalAttendance) / float64(report.TotalRegistrations)
	}

	return report, nil
}

// AuditTrail lists the manual overrides recorded for an event.
func (s *AttendanceService) AuditTrail(ctx context.Context, eventID, organizerID uint) ([]domain.AuditLog, error) {
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

	logs, err := s.auditRepo.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("s.auditRepo.FindByEvent -> %w", err)
	}

	return logs, nil
}
