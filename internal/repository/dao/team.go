package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrAlreadyInTeam    = errors.New("user already belongs to a team for this event")
	ErrMemberNotFound   = errors.New("member not found in team")
	ErrMemberNotPending = errors.New("member is not pending")
)

type Team struct {
	ID uint `gorm:"primaryKey"`

	TeamName     string `gorm:"not null"`
	EventID      uint   `gorm:"not null;index"`
	TeamLeaderID uint   `gorm:"not null;index"`
	TeamSize     int    `gorm:"not null"`

	InviteCode string `gorm:"not null;uniqueIndex"`
	IsComplete bool   `gorm:"not null;default:false"`
	Status     string `gorm:"not null;default:'Forming'"`

	Members []TeamMember `gorm:"foreignKey:TeamID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TeamMember rows carry the event id alongside the team id so the
// one-team-per-event rule is a unique index, not an application-level check.
type TeamMember struct {
	ID uint `gorm:"primaryKey"`

	TeamID  uint `gorm:"not null;index"`
	EventID uint `gorm:"not null;uniqueIndex:idx_team_members_event_user,priority:1"`
	UserID  uint `gorm:"not null;uniqueIndex:idx_team_members_event_user,priority:2"`

	Status       string    `gorm:"not null;default:'Pending'"`
	InviteDate   time.Time `gorm:"not null"`
	ResponseDate *time.Time
}

type TeamDAO struct {
	db *gorm.DB
}

func NewTeamDAO(db *gorm.DB) *TeamDAO {
	return &TeamDAO{
		db: db,
	}
}

// InsertWithLeader creates the team and its pre-accepted leader entry
// together. The unique (event, user) index rejects a leader who already
// holds a team for the event, whichever request got there first.
func (d *TeamDAO) InsertWithLeader(ctx context.Context, team Team) (Team, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&team); result.Error != nil {
			return result.Error
		}

		now := time.Now()
		leader := TeamMember{
			TeamID:       team.ID,
			EventID:      team.EventID,
			UserID:       team.TeamLeaderID,
			Status:       "Accepted",
			InviteDate:   now,
			ResponseDate: &now,
		}
		if result := tx.Create(&leader); result.Error != nil {
			if isUniqueViolation(result.Error, "idx_team_members_event_user") {
				return ErrAlreadyInTeam
			}

			return result.Error
		}

		team.Members = []TeamMember{leader}

		return nil
	})
	if err != nil {
		return Team{}, err
	}

	return team, nil
}

func (d *TeamDAO) FindByID(ctx context.Context, id uint) (Team, error) {
	var team Team
	result := d.db.WithContext(ctx).Preload("Members").First(&team, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Team{}, ErrTeamNotFound
		}

		return Team{}, result.Error
	}

	return team, nil
}

func (d *TeamDAO) FindByInviteCode(ctx context.Context, inviteCode string) (Team, error) {
	var team Team
	result := d.db.WithContext(ctx).
		Preload("Members").
		Where("invite_code = ?", inviteCode).
		First(&team)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Team{}, ErrTeamNotFound
		}

		return Team{}, result.Error
	}

	return team, nil
}

// FindForUserAndEvent returns the team the user leads or belongs to for the
// event, pending invitations included.
func (d *TeamDAO) FindForUserAndEvent(ctx context.Context, eventID, userID uint) (Team, error) {
	var member TeamMember
	result := d.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&member)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Team{}, ErrTeamNotFound
		}

		return Team{}, result.Error
	}

	return d.FindByID(ctx, member.TeamID)
}

func (d *TeamDAO) AddMember(ctx context.Context, member TeamMember) (TeamMember, error) {
	result := d.db.WithContext(ctx).Create(&member)
	if result.Error != nil {
		if isUniqueViolation(result.Error, "idx_team_members_event_user") {
			return TeamMember{}, ErrAlreadyInTeam
		}

		return TeamMember{}, result.Error
	}

	return member, nil
}

// AcceptMember flips a Pending entry to Accepted. The status guard makes a
// double-accept report ErrMemberNotPending instead of rewriting timestamps.
func (d *TeamDAO) AcceptMember(ctx context.Context, teamID, memberID uint, now time.Time) error {
	result := d.db.WithContext(ctx).
		Model(&TeamMember{}).
		Where("id = ? AND team_id = ? AND status = ?", memberID, teamID, "Pending").
		Updates(map[string]any{
			"status":        "Accepted",
			"response_date": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var member TeamMember
		probe := d.db.WithContext(ctx).
			Where("id = ? AND team_id = ?", memberID, teamID).
			First(&member)
		if errors.Is(probe.Error, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}

		return ErrMemberNotPending
	}

	return nil
}

// ClaimCompletion is the one-way latch on is_complete. It reports whether
// this call performed the transition; a re-run claims nothing and the
// cascade that follows is idempotent on its own.
func (d *TeamDAO) ClaimCompletion(ctx context.Context, teamID uint) (bool, error) {
	result := d.db.WithContext(ctx).
		Model(&Team{}).
		Where("id = ? AND is_complete = ?", teamID, false).
		Updates(map[string]any{
			"is_complete": true,
			"status":      "Complete",
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
