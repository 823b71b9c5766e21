package domain

import "time"

type TeamStatus string

const (
	TeamStatusForming   TeamStatus = "Forming"
	TeamStatusComplete  TeamStatus = "Complete"
	TeamStatusCancelled TeamStatus = "Cancelled"
)

type MemberStatus string

const (
	MemberStatusPending  MemberStatus = "Pending"
	MemberStatusAccepted MemberStatus = "Accepted"
	MemberStatusRejected MemberStatus = "Rejected"
)

type TeamMember struct {
	ID           uint         `json:"id"`
	UserID       uint         `json:"userId"`
	Status       MemberStatus `json:"status"`
	InviteDate   time.Time    `json:"inviteDate"`
	ResponseDate *time.Time   `json:"responseDate,omitempty"`
}

type Team struct {
	ID           uint         `json:"id"`
	TeamName     string       `json:"teamName"`
	EventID      uint         `json:"eventId"`
	TeamLeaderID uint         `json:"teamLeaderId"`
	TeamSize     int          `json:"teamSize"`
	Members      []TeamMember `json:"members"`
	InviteCode   string       `json:"inviteCode"`
	IsComplete   bool         `json:"isComplete"`
	Status       TeamStatus   `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// AcceptedCount includes the leader, whose member entry is pre-accepted at
// team creation.
func (t *Team) AcceptedCount() int {
	count := 0
	for _, m := range t.Members {
		if m.Status == MemberStatusAccepted {
			count++
		}
	}
	return count
}

// AcceptedUserIDs returns the leader plus every accepted member, deduplicated.
func (t *Team) AcceptedUserIDs() []uint {
	seen := map[uint]bool{t.TeamLeaderID: true}
	ids := []uint{t.TeamLeaderID}
	for _, m := range t.Members {
		if m.Status == MemberStatusAccepted && !seen[m.UserID] {
			seen[m.UserID] = true
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

// MemberByUserID returns the member entry for userID, if any.
func (t *Team) MemberByUserID(userID uint) (TeamMember, bool) {
	for _, m := range t.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return TeamMember{}, false
}
