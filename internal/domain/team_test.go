package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcceptedCount(t *testing.T) {
	team := Team{
		TeamLeaderID: 1,
		Members: []TeamMember{
			{UserID: 1, Status: MemberStatusAccepted},
			{UserID: 2, Status: MemberStatusAccepted},
			{UserID: 3, Status: MemberStatusPending},
			{UserID: 4, Status: MemberStatusRejected},
		},
	}

	assert.Equal(t, 2, team.AcceptedCount())
}

func TestAcceptedUserIDs(t *testing.T) {
	team := Team{
		TeamLeaderID: 1,
		Members: []TeamMember{
			{UserID: 1, Status: MemberStatusAccepted},
			{UserID: 2, Status: MemberStatusAccepted},
			{UserID: 3, Status: MemberStatusPending},
		},
	}

	ids := team.AcceptedUserIDs()

	// Leader comes first and is never duplicated, even though the leader
	// also has a member row.
	assert.Equal(t, []uint{1, 2}, ids)
}

func TestMemberByUserID(t *testing.T) {
	team := Team{
		Members: []TeamMember{
			{ID: 10, UserID: 2, Status: MemberStatusPending},
		},
	}

	m, ok := team.MemberByUserID(2)
	assert.True(t, ok)
	assert.Equal(t, uint(10), m.ID)

	_, ok = team.MemberByUserID(99)
	assert.False(t, ok)
}
