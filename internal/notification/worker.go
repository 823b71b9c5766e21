package notification

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/festhub/festhub-api/internal/monitoring"
)

type ticketMailer interface {
	SendTicketEmail(msg TicketEmailMessage) error
}

type consumer interface {
	Consume(handler func([]byte) error) error
}

// Worker drains the ticket-email queue. A send failure is logged and the
// message requeued; it can never reach back into the registration that
// produced it.
type Worker struct {
	queue  consumer
	mailer ticketMailer
	done   chan struct{}
	cancel context.CancelFunc
}

func NewWorker(queue consumer, mailer ticketMailer) *Worker {
	return &Worker{
		queue:  queue,
		mailer: mailer,
		done:   make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	zap.L().Info("ticket email worker started")

	go func() {
		defer close(w.done)

		handler := func(body []byte) error {
			var msg TicketEmailMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				zap.L().Error("failed to unmarshal ticket email message",
					zap.ByteString("body", body),
					zap.Error(err))
				// Malformed messages would requeue forever; drop them.
				return nil
			}

			if err := w.mailer.SendTicketEmail(msg); err != nil {
				monitoring.TicketEmailsTotal.WithLabelValues("failed").Inc()
				return err
			}

			monitoring.TicketEmailsTotal.WithLabelValues("sent").Inc()

			return nil
		}

		if err := w.queue.Consume(handler); err != nil {
			zap.L().Error("failed to start consuming", zap.Error(err))
			return
		}

		<-cctx.Done()
		zap.L().Info("ticket email worker stopped")
	}()
}

func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
}
