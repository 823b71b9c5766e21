package repository

import (
	"context"
	"time"

	"github.com/festhub/festhub-api/internal/domain"
	"github.com/festhub/festhub-api/internal/repository/dao"
)

var (
	ErrTeamNotFound     = dao.ErrTeamNotFound
	ErrAlreadyInTeam    = dao.ErrAlreadyInTeam
	ErrMemberNotFound   = dao.ErrMemberNotFound
	ErrMemberNotPending = dao.ErrMemberNotPending
)

type TeamDAO interface {
	InsertWithLeader(ctx context.Context, team dao.Team) (dao.Team, error)
	FindByID(ctx context.Context, id uint) (dao.Team, error)
	FindByInviteCode(ctx context.Context, inviteCode string) (dao.Team, error)
	FindForUserAndEvent(ctx context.Context, eventID, userID uint) (dao.Team, error)
	AddMember(ctx context.Context, member dao.TeamMember) (dao.TeamMember, error)
	AcceptMember(ctx context.Context, teamID, memberID uint, now time.Time) error
	ClaimCompletion(ctx context.Context, teamID uint) (bool, error)
}

type TeamRepository struct {
	dao TeamDAO
}

func NewTeamRepository(dao TeamDAO) *TeamRepository {
	return &TeamRepository{
		dao: dao,
	}
}

func (r *TeamRepository) daoToDomain(t dao.Team) domain.Team {
	team := domain.Team{
		ID:           t.ID,
		TeamName:     t.TeamName,
		EventID:      t.EventID,
		TeamLeaderID: t.TeamLeaderID,
		TeamSize:     t.TeamSize,
		InviteCode:   t.InviteCode,
		IsComplete:   t.IsComplete,
		Status:       domain.TeamStatus(t.Status),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	team.Members = make([]domain.TeamMember, len(t.Members))
	for i, m := range t.Members {
		team.Members[i] = domain.TeamMember{
			ID:           m.ID,
			UserID:       m.UserID,
			Status:       domain.MemberStatus(m.Status),
			InviteDate:   m.InviteDate,
			ResponseDate: m.ResponseDate,
		}
	}

	return team
}

func (r *TeamRepository) Create(ctx context.Context, team domain.Team) (domain.Team, error) {
	created, err := r.dao.InsertWithLeader(ctx, dao.Team{
		TeamName:     team.TeamName,
		EventID:      team.EventID,
		TeamLeaderID: team.TeamLeaderID,
		TeamSize:     team.TeamSize,
		InviteCode:   team.InviteCode,
		Status:       string(domain.TeamStatusForming),
	})
	if err != nil {
		return domain.Team{}, err
	}

	return r.daoToDomain(created), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id uint) (domain.Team, error) {
	team, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Team{}, err
	}

	return r.daoToDomain(team), nil
}

func (r *TeamRepository) FindByInviteCode(ctx context.Context, inviteCode string) (domain.Team, error) {
	team, err := r.dao.FindByInviteCode(ctx, inviteCode)
	if err != nil {
		return domain.Team{}, err
	}

	return r.daoToDomain(team), nil
}

func (r *TeamRepository) FindForUserAndEvent(ctx context.Context, eventID, userID uint) (domain.Team, error) {
	team, err := r.dao.FindForUserAndEvent(ctx, eventID, userID)
	if err != nil {
		return domain.Team{}, err
	}

	return r.daoToDomain(team), nil
}

func (r *TeamRepository) AddPendingMember(ctx context.Context, teamID, eventID, userID uint) (domain.TeamMember, error) {
	member, err := r.dao.AddMember(ctx, dao.TeamMember{
		TeamID:     teamID,
		EventID:    eventID,
		UserID:     userID,
		Status:     string(domain.MemberStatusPending),
		InviteDate: time.Now(),
	})
	if err != nil {
		return domain.TeamMember{}, err
	}

	return domain.TeamMember{
		ID:         member.ID,
		UserID:     member.UserID,
		Status:     domain.MemberStatus(member.Status),
		InviteDate: member.InviteDate,
	}, nil
}

func (r *TeamRepository) AcceptMember(ctx context.Context, teamID, memberID uint, now time.Time) error {
	return r.dao.AcceptMember(ctx, teamID, memberID, now)
}

func (r *TeamRepository) ClaimCompletion(ctx context.Context, teamID uint) (bool, error) {
	return r.dao.ClaimCompletion(ctx, teamID)
}
