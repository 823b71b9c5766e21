package notification

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/festhub/festhub-api/internal/config"
)

type Mailer struct {
	conf *config.SMTPConfig
}

func NewMailer(conf *config.SMTPConfig) *Mailer {
	return &Mailer{
		conf: conf,
	}
}

// SendTicketEmail delivers the ticket over SMTP. The QR image travels as a
// data URL the mail client can inline.
func (m *Mailer) SendTicketEmail(msg TicketEmailMessage) error {
	subject := fmt.Sprintf("Your ticket for %s", msg.EventName)
	body := fmt.Sprintf(
		"Hi %s,\n\nYou are registered for %s.\nYour ticket id is %s. Present the QR code below at the venue.\n\n%s\n",
		msg.ParticipantName, msg.EventName, msg.TicketID, msg.QRCode,
	)

	mail := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.conf.From, msg.ToEmail, subject, body,
	)

	addr := m.conf.Host + ":" + m.conf.Port
	auth := smtp.PlainAuth("", m.conf.From, m.conf.Password, m.conf.Host)

	if err := smtp.SendMail(addr, auth, m.conf.From, []string{msg.ToEmail}, []byte(mail)); err != nil {
		zap.L().Warn("failed to send ticket email",
			zap.String("to", msg.ToEmail),
			zap.Error(err))
		return fmt.Errorf("smtp.SendMail -> %w", err)
	}

	zap.L().Info("ticket email sent",
		zap.String("to", msg.ToEmail),
		zap.String("ticket_id", msg.TicketID))

	return nil
}
