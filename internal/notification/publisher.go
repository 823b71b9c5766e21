package notification

import (
	"context"
	"encoding/json"
	"fmt"
)

// TicketEmailMessage is the payload queued after a registration commits.
type TicketEmailMessage struct {
	ToEmail         string `json:"toEmail"`
	ParticipantName string `json:"participantName"`
	EventName       string `json:"eventName"`
	TicketID        string `json:"ticketId"`
	QRCode          string `json:"qrCode"`
}

type queuePublisher interface {
	Publish(message []byte) error
}

// Publisher enqueues ticket emails. Callers treat it as fire-and-forget:
// a publish failure is theirs to log, never to roll back for.
type Publisher struct {
	queue queuePublisher
}

func NewPublisher(queue queuePublisher) *Publisher {
	return &Publisher{
		queue: queue,
	}
}

func (p *Publisher) SendTicketEmail(_ context.Context, msg TicketEmailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	if err := p.queue.Publish(body); err != nil {
		return fmt.Errorf("p.queue.Publish -> %w", err)
	}

	return nil
}
