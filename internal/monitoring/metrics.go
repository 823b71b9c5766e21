package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Registration attempts by event type and outcome",
		},
		[]string{"event_type", "status"},
	)

	AttendanceScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_scans_total",
			Help: "Ticket scans by outcome",
		},
		[]string{"status"},
	)

	TeamsCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teams_completed_total",
			Help: "Teams that reached completion",
		},
	)

	TicketEmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_emails_total",
			Help: "Ticket email deliveries by outcome",
		},
		[]string{"status"},
	)
)
