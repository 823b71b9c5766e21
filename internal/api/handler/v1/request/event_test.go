package request

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEventRequestNormalize(t *testing.T) {
	start := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	t.Run("folds legacy aliases into canonical fields", func(t *testing.T) {
		price := 50.0
		stock := 20
		maxParticipants := 200

		req := CreateEventRequest{
			Name:            "Robowars",
			Price:           &price,
			Stock:           &stock,
			MaxParticipants: &maxParticipants,
			Eligibility:     "IIIT-H Only",
			EventType:       "Normal",
			EventStartDate:  start,
		}
		req.Normalize()

		assert.Equal(t, "Robowars", req.EventName)
		require.NotNil(t, req.RegistrationFee)
		assert.Equal(t, 50.0, *req.RegistrationFee)
		require.NotNil(t, req.StockQuantity)
		assert.Equal(t, 20, *req.StockQuantity)
		require.NotNil(t, req.RegistrationLimit)
		assert.Equal(t, 200, *req.RegistrationLimit)
		assert.Equal(t, "IIIT Only", req.Eligibility)
	})

	t.Run("derives deadline, end date and limit defaults", func(t *testing.T) {
		req := CreateEventRequest{
			EventName:      "Robowars",
			EventType:      "Normal",
			EventStartDate: start,
		}
		req.Normalize()

		require.NotNil(t, req.RegistrationDeadline)
		assert.Equal(t, start.Add(-24*time.Hour), *req.RegistrationDeadline)
		require.NotNil(t, req.EventEndDate)
		assert.Equal(t, start.Add(2*time.Hour), *req.EventEndDate)
		require.NotNil(t, req.RegistrationLimit)
		assert.Equal(t, defaultRegistrationLimit, *req.RegistrationLimit)
		assert.Equal(t, "All", req.Eligibility)
	})

	t.Run("folds description and All Students aliases", func(t *testing.T) {
		req := CreateEventRequest{
			EventName:      "Robowars",
			Description:    "Robot combat finals",
			Eligibility:    "All Students",
			EventStartDate: start,
		}
		req.Normalize()

		assert.Equal(t, "Robot combat finals", req.EventDescription)
		assert.Equal(t, "All", req.Eligibility)
	})

	t.Run("builds the start date from date and time", func(t *testing.T) {
		req := CreateEventRequest{
			EventName: "Robowars",
			Date:      "2026-03-14",
			Time:      "18:00",
		}
		req.Normalize()

		assert.Equal(t, start, req.EventStartDate)
		require.NotNil(t, req.RegistrationDeadline)
		assert.Equal(t, start.Add(-24*time.Hour), *req.RegistrationDeadline)
	})

	t.Run("date without time defaults to midnight", func(t *testing.T) {
		req := CreateEventRequest{
			EventName: "Robowars",
			Date:      "2026-03-14",
		}
		req.Normalize()

		assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), req.EventStartDate)
	})

	t.Run("endDate without endTime defaults to end of day", func(t *testing.T) {
		req := CreateEventRequest{
			EventName:      "Robowars",
			EventStartDate: start,
			EndDate:        "2026-03-15",
		}
		req.Normalize()

		require.NotNil(t, req.EventEndDate)
		assert.Equal(t, time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC), *req.EventEndDate)
	})

	t.Run("folds category and venue into tags without duplicates", func(t *testing.T) {
		req := CreateEventRequest{
			EventName:      "Robowars",
			EventStartDate: start,
			EventTags:      TagList{"robotics"},
			Category:       "robotics",
			Venue:          "  Main Arena ",
		}
		req.Normalize()

		assert.Equal(t, TagList{"robotics", "venue:Main Arena"}, req.EventTags)
	})

	t.Run("explicit values win over defaults", func(t *testing.T) {
		deadline := start.Add(-48 * time.Hour)
		limit := 50

		req := CreateEventRequest{
			EventName:            "Robowars",
			EventType:            "Normal",
			EventStartDate:       start,
			RegistrationDeadline: &deadline,
			RegistrationLimit:    &limit,
		}
		req.Normalize()

		assert.Equal(t, deadline, *req.RegistrationDeadline)
		assert.Equal(t, 50, *req.RegistrationLimit)
	})
}

func TestCreateEventRequestValidate(t *testing.T) {
	start := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	t.Run("accepts a normalized request", func(t *testing.T) {
		req := CreateEventRequest{
			EventName:      "Robowars",
			EventType:      "Normal",
			EventStartDate: start,
		}
		req.Normalize()

		assert.NoError(t, req.Validate())
	})

	t.Run("rejects an unknown event type", func(t *testing.T) {
		req := CreateEventRequest{
			EventName:      "Robowars",
			EventType:      "Lottery",
			EventStartDate: start,
		}
		req.Normalize()

		assert.Error(t, req.Validate())
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		req := CreateEventRequest{
			EventType:      "Normal",
			EventStartDate: start,
		}
		req.Normalize()

		assert.Error(t, req.Validate())
	})
}

func TestTeamSizeRequestUnmarshal(t *testing.T) {
	cases := []struct {
		name string
		body string
		want TeamSizeRequest
	}{
		{"object", `{"teamSize":{"min":3,"max":5}}`, TeamSizeRequest{Min: 3, Max: 5}},
		{"object with one bound", `{"teamSize":{"min":3}}`, TeamSizeRequest{Min: 3, Max: 3}},
		{"range string", `{"teamSize":"3-5"}`, TeamSizeRequest{Min: 3, Max: 5}},
		{"range string with en dash", `{"teamSize":"3 – 5"}`, TeamSizeRequest{Min: 3, Max: 5}},
		{"single number", `{"teamSize":4}`, TeamSizeRequest{Min: 4, Max: 4}},
		{"single number as string", `{"teamSize":"4"}`, TeamSizeRequest{Min: 4, Max: 4}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req CreateEventRequest
			require.NoError(t, json.Unmarshal([]byte(tc.body), &req))
			require.NotNil(t, req.TeamSize)
			assert.Equal(t, tc.want, *req.TeamSize)
		})
	}

	t.Run("rejects garbage", func(t *testing.T) {
		var req CreateEventRequest
		assert.Error(t, json.Unmarshal([]byte(`{"teamSize":"many"}`), &req))
	})
}

func TestTagListUnmarshal(t *testing.T) {
	t.Run("accepts an array", func(t *testing.T) {
		var req CreateEventRequest
		require.NoError(t, json.Unmarshal([]byte(`{"eventTags":["tech","robotics"]}`), &req))
		assert.Equal(t, TagList{"tech", "robotics"}, req.EventTags)
	})

	t.Run("splits a comma separated string", func(t *testing.T) {
		var req CreateEventRequest
		require.NoError(t, json.Unmarshal([]byte(`{"eventTags":"tech, robotics, ,workshop"}`), &req))
		assert.Equal(t, TagList{"tech", "robotics", "workshop"}, req.EventTags)
	})
}
