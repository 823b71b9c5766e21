package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventStatusCanAdvanceTo(t *testing.T) {
	tests := []struct {
		from    EventStatus
		to      EventStatus
		allowed bool
	}{
		{EventStatusDraft, EventStatusPublished, true},
		{EventStatusDraft, EventStatusOngoing, false},
		{EventStatusDraft, EventStatusCompleted, false},
		{EventStatusPublished, EventStatusOngoing, true},
		{EventStatusPublished, EventStatusClosed, true},
		{EventStatusPublished, EventStatusDraft, false},
		{EventStatusPublished, EventStatusCompleted, false},
		{EventStatusOngoing, EventStatusCompleted, true},
		{EventStatusOngoing, EventStatusPublished, false},
		{EventStatusClosed, EventStatusCompleted, true},
		{EventStatusCompleted, EventStatusPublished, false},
		{EventStatusCompleted, EventStatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanAdvanceTo(tt.to))
		})
	}
}

func TestEligibilityAllows(t *testing.T) {
	iiitOnly := Event{Eligibility: EligibilityIIITOnly}
	nonIIITOnly := Event{Eligibility: EligibilityNonIIITOnly}
	open := Event{Eligibility: EligibilityAll}

	assert.True(t, iiitOnly.EligibilityAllows(ParticipantTypeIIIT))
	assert.False(t, iiitOnly.EligibilityAllows(ParticipantTypeNonIIIT))
	assert.False(t, nonIIITOnly.EligibilityAllows(ParticipantTypeIIIT))
	assert.True(t, nonIIITOnly.EligibilityAllows(ParticipantTypeNonIIIT))
	assert.True(t, open.EligibilityAllows(ParticipantTypeIIIT))
	assert.True(t, open.EligibilityAllows(ParticipantTypeNonIIIT))
}

func TestAvailableSlots(t *testing.T) {
	event := Event{RegistrationLimit: 100, TotalRegistrations: 97}
	assert.Equal(t, 3, event.AvailableSlots())

	event.TotalRegistrations = 100
	assert.Equal(t, 0, event.AvailableSlots())

	// Counter drift must not produce a negative slot count.
	event.TotalRegistrations = 105
	assert.Equal(t, 0, event.AvailableSlots())
}

func TestTeamSizeRequired(t *testing.T) {
	assert.Equal(t, 4, TeamSizeRange{Min: 2, Max: 4}.Required())
	assert.Equal(t, 3, TeamSizeRange{Min: 3}.Required())
}

func TestIsTeamBased(t *testing.T) {
	hackathon := Event{EventType: EventTypeHackathon, TeamSize: &TeamSizeRange{Min: 2, Max: 4}}
	assert.True(t, hackathon.IsTeamBased())

	solo := Event{EventType: EventTypeNormal}
	assert.False(t, solo.IsTeamBased())

	noSize := Event{EventType: EventTypeHackathon}
	assert.False(t, noSize.IsTeamBased())
}

func TestPhase(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	open := Event{Status: EventStatusPublished, RegistrationDeadline: now.Add(time.Hour)}
	assert.Equal(t, "RegistrationOpen", open.Phase(now))

	closed := Event{Status: EventStatusPublished, RegistrationDeadline: now.Add(-time.Hour)}
	assert.Equal(t, "RegistrationClosed", closed.Phase(now))

	draft := Event{Status: EventStatusDraft}
	assert.Equal(t, "Draft", draft.Phase(now))
}
