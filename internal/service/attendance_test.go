package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/festhub/festhub-api/internal/domain"
	"github.com/festhub/festhub-api/internal/repository"
)

func newAttendanceService(regRepo *mockRegistrationRepo, eventRepo *mockEventRepo, auditRepo *mockAuditRepo) *AttendanceService {
	svc := NewAttendanceService(regRepo, eventRepo, auditRepo)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestScanAndMark(t *testing.T) {
	ctx := context.Background()

	t.Run("marks a valid ticket", func(t *testing.T) {
		regRepo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		auditRepo := new(mockAuditRepo)

		eventRepo.On("GetByID", ctx, uint(1)).Return(publishedEvent(), nil)
		regRepo.On("FindByTicketAndEvent", ctx, "TKT-AABBCCDDEEFF0011", uint(1)).
			Return(domain.Registration{
				ID: 5, EventID: 1,
				Status:   domain.RegistrationStatusApproved,
				TicketID: "TKT-AABBCCDDEEFF0011",
			}, nil)
		regRepo.On("MarkAttendance", ctx, uint(5), uint(1), testNow).Return(nil)

		svc := newAttendanceService(regRepo, eventRepo, auditRepo)

		registration, err := svc.ScanAndMark(ctx, 1, "TKT-AABBCCDDEEFF0011", 9)

		require.NoError(t, err)
		assert.True(t, registration.Attended)
		require.NotNil(t, registration.AttendanceTime)
		assert.Equal(t, testNow, *registration.AttendanceTime)
	})

	t.Run("second scan reports the first check-in time", func(t *testing.T) {
		regRepo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		auditRepo := new(mockAuditRepo)

		firstScan := testNow.Add(-30 * time.Minute)
		eventRepo.On("GetByID", ctx, uint(1)).Return(publishedEvent(), nil)
		regRepo.On("FindByTicketAndEvent", ctx, "TKT-AABBCCDDEEFF0011", uint(1)).
			Return(domain.Registration{
				ID: 5, EventID: 1,
				Status:         domain.RegistrationStatusApproved,
				Attended:       true,
				AttendanceTime: &firstScan,
			}, nil)
		regRepo.On("MarkAttendance", ctx, uint(5), uint(1), testNow).
			Return(repository.ErrAlreadyAttended)

		svc := newAttendanceService(regRepo, eventRepo, auditRepo)

		_, err := svc.ScanAndMark(ctx, 1, "TKT-AABBCCDDEEFF0011", 9)

		var attended *AlreadyAttendedError
		require.ErrorAs(t, err, &attended)
		assert.Equal(t, firstScan, attended.AttendanceTime)
		assert.ErrorIs(t, err, repository.ErrAlreadyAttended)
	})

	t.Run("unknown ticket", func(t *testing.T) {
		regRepo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		auditRepo := new(mockAuditRepo)

		eventRepo.On("GetByID", ctx, uint(1)).Return(publishedEvent(), nil)
		regRepo.On("FindByTicketAndEvent", ctx, "TKT-0000", uint(1)).
			Return(domain.Registration{}, repository.ErrTicketNotFound)

		svc := newAttendanceService(regRepo, eventRepo, auditRepo)

		_, err := svc.ScanAndMark(ctx, 1, "TKT-0000", 9)

		assert.ErrorIs(t, err, ErrTicketNotFound)
	})

	t.Run("cancelled registration does not admit", func(t *testing.T) {
		regRepo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		auditRepo := new(mockAuditRepo)

		eventRepo.On("GetByID", ctx, uint(1)).Return(publishedEvent(), nil)
		regRepo.On("FindByTicketAndEvent", ctx, "TKT-AABBCCDDEEFF0011", uint(1)).
			Return(domain.Registration{
				ID: 5, EventID: 1,
				Status: domain.RegistrationStatusCancelled,
			}, nil)

		svc := newAttendanceService(regRepo, eventRepo, auditRepo)

		_, err := svc.ScanAndMark(ctx, 1, "TKT-AABBCCDDEEFF0011", 9)

		assert.ErrorIs(t, err, ErrRegistrationNotActive)
		regRepo.AssertNotCalled(t, "MarkAttendance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("only the event owner scans", func(t *testing.T) {
		regRepo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		auditRepo := new(mockAuditRepo)

		eventRepo.On("GetByID", ctx, uint(1)).Return(publishedEvent(), nil)

		svc := newAttendanceService(regRepo, eventRepo, auditRepo)

		_, err := svc.ScanAndMark(ctx, 1, "TKT-AABBCCDDEEFF0011", 777)

		assert.ErrorIs(t, err, ErrNotEventOwner)
	})
}

func TestManualOverride(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a reason", func(t *testing.T) {
		svc := newAttendanceService(new(mockRegistrationRepo), new(mockEventRepo), new(mockAuditRepo))

		_, err := svc.ManualOverride(ctx, 1, 5, true, "", 9)

		assert.ErrorIs(t, err, ErrReasonRequired)
	})

	t.Run("writes the audit entry with the flip", func(t *testing.T) {
		regRepo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		auditRepo := new(mockAuditRepo)

		eventRepo.On("GetByID", ctx, uint(1)).Return(publishedEvent(), nil)
		regRepo.On("GetByID", ctx, uint(5)).
			Return(domain.Registration{ID: 5, EventID: 1, Attended: false}, nil)
		regRepo.On("OverrideAttendance", ctx, uint(5), uint(1), true, testNow,
			mock.MatchedBy(func(audit domain.AuditLog) bool {
				return audit.Action == "attendance_override" &&
					audit.Reason == "scanner battery died" &&
					audit.PreviousValue == "false" &&
					audit.NewValue == "true" &&
					audit.PerformedBy == 9
			})).Return(nil)

		svc := newAttendanceService(regRepo, eventRepo, auditRepo)

		registration, err := svc.ManualOverride(ctx, 1, 5, true, "scanner battery died", 9)

		require.NoError(t, err)
		assert.True(t, registration.Attended)
		regRepo.AssertExpectations(t)
	})

	t.Run("overriding to the current state is rejected", func(t *testing.T) {
		regRepo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		auditRepo := new(mockAuditRepo)

		eventRepo.On("GetByID", ctx, uint(1)).Return(publishedEvent(), nil)
		regRepo.On("GetByID", ctx, uint(5)).
			Return(domain.Registration{ID: 5, EventID: 1, Attended: true}, nil)
		regRepo.On("OverrideAttendance", ctx, uint(5), uint(1), true, testNow, mock.Anything).
			Return(repository.ErrAttendanceUnchanged)

		svc := newAttendanceService(regRepo, eventRepo, auditRepo)

		_, err := svc.ManualOverride(ctx, 1, 5, true, "double check", 9)

		assert.ErrorIs(t, err, ErrAttendanceUnchanged)
	})

	t.Run("registration must belong to the event", func(t *testing.T) {
		regRepo := new(mockRegistrationRepo)
		eventRepo := new(mockEventRepo)
		auditRepo := new(mockAuditRepo)

		eventRepo.On("GetByID", ctx, uint(1)).Return(publishedEvent(), nil)
		regRepo.On("GetByID", ctx, uint(5)).
			Return(domain.Registration{ID: 5, EventID: 2}, nil)

		svc := newAttendanceService(regRepo, eventRepo, auditRepo)

		_, err := svc.ManualOverride(ctx, 1, 5, true, "wrong event", 9)

		assert.ErrorIs(t, err, ErrRegistrationNotFound)
	})
}

func TestAttendanceReport(t *testing.T) {
	ctx := context.Background()

	regRepo := new(mockRegistrationRepo)
	eventRepo := new(mockEventRepo)
	auditRepo := new(mockAuditRepo)

	event := publishedEvent()
	event.TotalRegistrations = 80
	event.TotalAttendance = 60
	eventRepo.On("GetByID", ctx, uint(1)).Return(event, nil)
	regRepo.On("FindByEvent", ctx, uint(1)).Return([]domain.Registration{
		{ID: 11, EventID: 1, ParticipantID: 42, Attended: true},
		{ID: 12, EventID: 1, ParticipantID: 43, Attended: false},
		{ID: 13, EventID: 1, ParticipantID: 44, Attended: true},
	}, nil)

	svc := newAttendanceService(regRepo, eventRepo, auditRepo)

	report, err := svc.Report(ctx, 1, 9)

	require.NoError(t, err)
	assert.Equal(t, 80, report.TotalRegistrations)
	assert.Equal(t, 60, report.TotalAttendance)
	assert.Equal(t, 20, report.Absent)
	assert.InDelta(t, 0.75, report.AttendanceRate, 0.0001)
	require.Len(t, report.Attended, 2)
	require.Len(t, report.NotAttended, 1)
	assert.Equal(t, uint(12), report.NotAttended[0].ID)
}
