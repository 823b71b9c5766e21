package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/festhub/festhub-api/internal/domain"
	"github.com/festhub/festhub-api/internal/notification"
	"github.com/festhub/festhub-api/internal/repository"
)

type mockEventRepo struct {
	mock.Mock
}

func (m *mockEventRepo) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *mockEventRepo) GetByID(ctx context.Context, id uint) (domain.Event, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *mockEventRepo) FindPublished(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *mockEventRepo) FindByOrganizer(ctx context.Context, organizerID uint) ([]domain.Event, error) {
	args := m.Called(ctx, organizerID)
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *mockEventRepo) UpdateDraft(ctx context.Context, event domain.Event) (domain.Event, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *mockEventRepo) ApplyPublishedUpdate(ctx context.Context, id uint, description *string, deadline *time.Time, limit *int, formFields []domain.CustomFormField) (domain.Event, error) {
	args := m.Called(ctx, id, description, deadline, limit, formFields)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *mockEventRepo) AdvanceStatus(ctx context.Context, id uint, from, to domain.EventStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *mockEventRepo) DeleteDraft(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockRegistrationRepo struct {
	mock.Mock
}

func (m *mockRegistrationRepo) CreateApproved(ctx context.Context, registration domain.Registration, claim repository.SlotClaim) (domain.Registration, error) {
	args := m.Called(ctx, registration, claim)
	return args.Get(0).(domain.Registration), args.Error(1)
}

func (m *mockRegistrationRepo) CreateForTeamMember(ctx context.Context, registration domain.Registration) (domain.Registration, error) {
	args := m.Called(ctx, registration)
	return args.Get(0).(domain.Registration), args.Error(1)
}

func (m *mockRegistrationRepo) LinkTeam(ctx context.Context, registrationID, teamID uint) error {
	args := m.Called(ctx, registrationID, teamID)
	return args.Error(0)
}

func (m *mockRegistrationRepo) GetByID(ctx context.Context, id uint) (domain.Registration, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Registration), args.Error(1)
}

func (m *mockRegistrationRepo) FindByEventAndParticipant(ctx context.Context, eventID, participantID uint) (domain.Registration, error) {
	args := m.Called(ctx, eventID, participantID)
	return args.Get(0).(domain.Registration), args.Error(1)
}

func (m *mockRegistrationRepo) FindByTicketAndEvent(ctx context.Context, ticketID string, eventID uint) (domain.Registration, error) {
	args := m.Called(ctx, ticketID, eventID)
	return args.Get(0).(domain.Registration), args.Error(1)
}

func (m *mockRegistrationRepo) FindByParticipant(ctx context.Context, participantID uint) ([]domain.Registration, error) {
	args := m.Called(ctx, participantID)
	return args.Get(0).([]domain.Registration), args.Error(1)
}

func (m *mockRegistrationRepo) FindByEvent(ctx context.Context, eventID uint) ([]domain.Registration, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]domain.Registration), args.Error(1)
}

func (m *mockRegistrationRepo) UpdateStatus(ctx context.Context, id uint, status domain.RegistrationStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockRegistrationRepo) MarkAttendance(ctx context.Context, registrationID, eventID uint, now time.Time) error {
	args := m.Called(ctx, registrationID, eventID, now)
	return args.Error(0)
}

func (m *mockRegistrationRepo) OverrideAttendance(ctx context.Context, registrationID, eventID uint, desired bool, now time.Time, audit domain.AuditLog) error {
	args := m.Called(ctx, registrationID, eventID, desired, now, audit)
	return args.Error(0)
}

type mockTeamRepo struct {
	mock.Mock
}

func (m *mockTeamRepo) Create(ctx context.Context, team domain.Team) (domain.Team, error) {
	args := m.Called(ctx, team)
	return args.Get(0).(domain.Team), args.Error(1)
}

func (m *mockTeamRepo) GetByID(ctx context.Context, id uint) (domain.Team, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Team), args.Error(1)
}

func (m *mockTeamRepo) FindByInviteCode(ctx context.Context, inviteCode string) (domain.Team, error) {
	args := m.Called(ctx, inviteCode)
	return args.Get(0).(domain.Team), args.Error(1)
}

func (m *mockTeamRepo) FindForUserAndEvent(ctx context.Context, eventID, userID uint) (domain.Team, error) {
	args := m.Called(ctx, eventID, userID)
	return args.Get(0).(domain.Team), args.Error(1)
}

func (m *mockTeamRepo) AddPendingMember(ctx context.Context, teamID, eventID, userID uint) (domain.TeamMember, error) {
	args := m.Called(ctx, teamID, eventID, userID)
	return args.Get(0).(domain.TeamMember), args.Error(1)
}

func (m *mockTeamRepo) AcceptMember(ctx context.Context, teamID, memberID uint, now time.Time) error {
	args := m.Called(ctx, teamID, memberID, now)
	return args.Error(0)
}

func (m *mockTeamRepo) ClaimCompletion(ctx context.Context, teamID uint) (bool, error) {
	args := m.Called(ctx, teamID)
	return args.Bool(0), args.Error(1)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

type mockAuditRepo struct {
	mock.Mock
}

func (m *mockAuditRepo) FindByEvent(ctx context.Context, eventID uint) ([]domain.AuditLog, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]domain.AuditLog), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendTicketEmail(ctx context.Context, msg notification.TicketEmailMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
