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
	ErrTeamNotFound        = repository.ErrTeamNotFound
	ErrAlreadyInTeam       = repository.ErrAlreadyInTeam
	ErrMemberNotFound      = repository.ErrMemberNotFound
	ErrMemberNotPending    = repository.ErrMemberNotPending
	ErrEventNotTeamBased   = errors.New("event does not take team registrations")
	ErrNotTeamLeader       = errors.New("only the team leader may do this")
	ErrTeamAlreadyComplete = errors.New("team is already complete")
	ErrInvalidInviteCode   = errors.New("invite code does not match any team")
	ErrLeaderCannotJoin    = errors.New("the leader is already part of the team")
)

type TeamRepository interface {
	Create(ctx context.Context, team domain.Team) (domain.Team, error)
	GetByID(ctx context.Context, id uint) (domain.Team, error)
	FindByInviteCode(ctx context.Context, inviteCode string) (domain.Team, error)
	FindForUserAndEvent(ctx context.Context, eventID, userID uint) (domain.Team, error)
	AddPendingMember(ctx context.Context, teamID, eventID, userID uint) (domain.TeamMember, error)
	AcceptMember(ctx context.Context, teamID, memberID uint, now time.Time) error
	ClaimCompletion(ctx context.Context, teamID uint) (bool, error)
}

// TeamService forms teams for team-based events. A user holds at most one
// membership per event; the database enforces it, so two concurrent joins
// cannot both succeed. When the last seat is accepted the team completes
// exactly once and every accepted member ends up registered.
type TeamService struct {
	repo      TeamRepository
	regRepo   RegistrationRepository
	eventRepo EventRepository
	userRepo  UserRepository
	notifier  TicketNotifier
	now       func() time.Time
}

func NewTeamService(repo TeamRepository, regRepo RegistrationRepository, eventRepo EventRepository, userRepo UserRepository, notifier TicketNotifier) *TeamService {
	return &TeamService{
		repo:      repo,
		regRepo:   regRepo,
		eventRepo: eventRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		now:       time.Now,
	}
}

func (s *TeamService) CreateTeam(ctx context.Context, eventID, leaderID uint, teamName string) (domain.Team, error) {
	event, err := s.openTeamEvent(ctx, eventID)
	if err != nil {
		return domain.Team{}, err
	}

	leader, err := s.userRepo.FindByID(ctx, leaderID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.Team{}, ErrUserNotFound
		}

		return domain.Team{}, fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}
	if !event.EligibilityAllows(leader.ParticipantType) {
		return domain.Team{}, ErrNotEligible
	}

	inviteCode, err := ticket.GenerateInviteCode()
	if err != nil {
		return domain.Team{}, fmt.Errorf("ticket.GenerateInviteCode -> %w", err)
	}

	team, err := s.repo.Create(ctx, domain.Team{
		TeamName:     teamName,
		EventID:      eventID,
		TeamLeaderID: leaderID,
		TeamSize:     event.TeamSize.Required(),
		InviteCode:   inviteCode,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyInTeam) {
			return domain.Team{}, ErrAlreadyInTeam
		}

		return domain.Team{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	// A size-one team is complete the moment it exists.
	if team.AcceptedCount() >= team.TeamSize {
		return s.completeTeam(ctx, team, event)
	}

	return team, nil
}

// JoinByInvite asks to join the team behind the invite code. Joining a
// team the user already belongs to is a no-op that returns the team.
func (s *TeamService) JoinByInvite(ctx context.Context, inviteCode string, userID uint) (domain.Team, error) {
	team, err := s.repo.FindByInviteCode(ctx, inviteCode)
	if err != nil {
		if errors.Is(err, repository.ErrTeamNotFound) {
			return domain.Team{}, ErrInvalidInviteCode
		}

		return domain.Team{}, fmt.Errorf("s.repo.FindByInviteCode -> %w", err)
	}

	// The leader also holds a member row, so this check must come before
	// the already-a-member no-op.
	if team.TeamLeaderID == userID {
		return domain.Team{}, ErrLeaderCannotJoin
	}
	if _, ok := team.MemberByUserID(userID); ok {
		return team, nil
	}
	if team.IsComplete {
		return domain.Team{}, ErrTeamAlreadyComplete
	}

	event, err := s.openTeamEvent(ctx, team.EventID)
	if err != nil {
		return domain.Team{}, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.Team{}, ErrUserNotFound
		}

		return domain.Team{}, fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}
	if !event.EligibilityAllows(user.ParticipantType) {
		return domain.Team{}, ErrNotEligible
	}

	if _, err := s.repo.AddPendingMember(ctx, team.ID, team.EventID, userID); err != nil {
		if errors.Is(err, repository.ErrAlreadyInTeam) {
			return domain.Team{}, ErrAlreadyInTeam
		}

		return domain.Team{}, fmt.Errorf("s.repo.AddPendingMember -> %w", err)
	}

	return s.GetTeam(ctx, team.ID)
}

// AcceptMember lets the leader admit a pending member. Accepting the seat
// that fills the team triggers completion.
func (s *TeamService) AcceptMember(ctx context.Context, teamID, memberID, callerID uint) (domain.Team, error) {
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return domain.Team{}, err
	}
	if team.TeamLeaderID != callerID {
		return domain.Team{}, ErrNotTeamLeader
	}
	if team.IsComplete {
		return domain.Team{}, ErrTeamAlreadyComplete
	}

	if err := s.repo.AcceptMember(ctx, teamID, memberID, s.now()); err != nil {
		switch {
		case errors.Is(err, repository.ErrMemberNotFound):
			return domain.Team{}, ErrMemberNotFound
		case errors.Is(err, repository.ErrMemberNotPending):
			return domain.Team{}, ErrMemberNotPending
		}

		return domain.Team{}, fmt.Errorf("s.repo.AcceptMember -> %w", err)
	}

	team, err = s.GetTeam(ctx, teamID)
	if err != nil {
		return domain.Team{}, err
	}

	if team.AcceptedCount() >= team.TeamSize {
		event, err := s.eventRepo.GetByID(ctx, team.EventID)
		if err != nil {
			return domain.Team{}, fmt.Errorf("s.eventRepo.GetByID -> %w", err)
		}

		return s.completeTeam(ctx, team, event)
	}

	return team, nil
}

// completeTeam flips the one-way completion latch and then makes sure every
// accepted member holds a registration. The latch decides who counts the
// completion; the registration pass runs regardless, so a crash between the
// two leaves nothing behind that a retry cannot finish.
func (s *TeamService) completeTeam(ctx context.Context, team domain.Team, event domain.Event) (domain.Team, error) {
	claimed, err := s.repo.ClaimCompletion(ctx, team.ID)
	if err != nil {
		return domain.Team{}, fmt.Errorf("s.repo.ClaimCompletion -> %w", err)
	}
	if claimed {
		monitoring.TeamsCompletedTotal.Inc()
	}

	for _, userID := range team.AcceptedUserIDs() {
		if err := s.ensureMemberRegistration(ctx, event, team, userID); err != nil {
			return domain.Team{}, err
		}
	}

	return s.GetTeam(ctx, team.ID)
}

func (s *TeamService) ensureMemberRegistration(ctx context.Context, event domain.Event, team domain.Team, userID uint) error {
	existing, err := s.regRepo.FindByEventAndParticipant(ctx, event.ID, userID)
	if err == nil {
		if existing.TeamID == nil {
			if err := s.regRepo.LinkTeam(ctx, existing.ID, team.ID); err != nil {
				return fmt.Errorf("s.regRepo.LinkTeam -> %w", err)
			}
		}

		return nil
	}
	if !errors.Is(err, repository.ErrRegistrationNotFound) {
		return fmt.Errorf("s.regRepo.FindByEventAndParticipant -> %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}

	ticketID, err := ticket.GenerateTicketID()
	if err != nil {
		return fmt.Errorf("ticket.GenerateTicketID -> %w", err)
	}
	qr, err := ticket.EncodeQR(ticket.QRPayload{
		TicketID:        ticketID,
		EventID:         event.ID,
		ParticipantID:   userID,
		EventName:       event.EventName,
		ParticipantName: user.FullName(),
	})
	if err != nil {
		return fmt.Errorf("ticket.EncodeQR -> %w", err)
	}

	teamID := team.ID
	created, err := s.regRepo.CreateForTeamMember(ctx, domain.Registration{
		EventID:          event.ID,
		ParticipantID:    userID,
		RegistrationType: event.EventType,
		Status:           domain.RegistrationStatusApproved,
		TeamID:           &teamID,
		PaymentStatus:    domain.PaymentStatusCompleted,
		AmountPaid:       decimal.Zero,
		TicketID:         ticketID,
		QRCode:           qr,
		RegistrationDate: s.now(),
	})
	if err != nil {
		// A concurrent completion pass already registered this member.
		if errors.Is(err, repository.ErrAlreadyRegistered) {
			return nil
		}

		return fmt.Errorf("s.regRepo.CreateForTeamMember -> %w", err)
	}

	monitoring.RegistrationsTotal.WithLabelValues(string(event.EventType), "approved").Inc()

	s.notifyMember(ctx, user, event, created)

	return nil
}

func (s *TeamService) notifyMember(ctx context.Context, user domain.User, event domain.Event, reg domain.Registration) {
	err := s.notifier.SendTicketEmail(ctx, notification.TicketEmailMessage{
		ToEmail:         user.Email,
		ParticipantName: user.FullName(),
		EventName:       event.EventName,
		TicketID:        reg.TicketID,
		QRCode:          reg.QRCode,
	})
	if err != nil {
		zap.L().Warn("failed to queue team ticket email",
			zap.Uint("registration_id", reg.ID),
			zap.String("ticket_id", reg.TicketID),
			zap.Error(err))
	}
}

func (s *TeamService) GetTeam(ctx context.Context, id uint) (domain.Team, error) {
	team, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTeamNotFound) {
			return domain.Team{}, ErrTeamNotFound
		}

		return domain.Team{}, fmt.Errorf("s.repo.GetByID -> %w", err)
	}

	return team, nil
}

// GetTeamForUser returns the caller's team for an event, if any.
func (s *TeamService) GetTeamForUser(ctx context.Context, eventID, userID uint) (domain.Team, error) {
	team, err := s.repo.FindForUserAndEvent(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTeamNotFound) {
			return domain.Team{}, ErrTeamNotFound
		}

		return domain.Team{}, fmt.Errorf("s.repo.FindForUserAndEvent -> %w", err)
	}

	return team, nil
}

func (s *TeamService) openTeamEvent(ctx context.Context, eventID uint) (domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Event{}, ErrEventNotFound
		}

		return domain.Event{}, fmt.Errorf("s.eventRepo.GetByID -> %w", err)
	}
	if !event.IsTeamBased() {
		return domain.Event{}, ErrEventNotTeamBased
	}
	if event.Status != domain.EventStatusPublished {
		return domain.Event{}, ErrEventNotOpen
	}
	if s.now().After(event.RegistrationDeadline) {
		return domain.Event{}, ErrDeadlinePassed
	}

	return event, nil
}
