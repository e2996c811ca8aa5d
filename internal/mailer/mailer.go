package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

type Config struct {
	Host     string
	Port     int
	From     string
	Password string
}

type Mailer struct {
	cfg Config
	log *zerolog.Logger
}

func New(cfg Config, log *zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// SendTicketEmail delivers the confirmation mail with the scannable QR
// code and the 6-digit backup code.
func (m *Mailer) SendTicketEmail(to, name, eventName, accessCode, qrToken string) error {
	qrImageURL := fmt.Sprintf("https://api.qrserver.com/v1/create-qr-code/?size=300x300&data=%s", qrToken)

	subject := fmt.Sprintf("Your Ticket: %s", eventName)
	body := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>You're in, %s!</h2>
  <p>Your registration for <strong>%s</strong> is officially secured. Please present the QR code below to the volunteers at the entrance for scanning.</p>
  <div style="text-align: center; margin: 40px 0;">
    <img src="%s" alt="Your Ticket QR Code" style="width: 200px; height: 200px;" />
    <p style="font-family: monospace; letter-spacing: 2px;">%s</p>
  </div>
  <p>Backup access code: <strong>%s</strong></p>
  <p>We look forward to seeing you there!</p>
</div>`, name, eventName, qrImageURL, qrToken, accessCode)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		m.cfg.From, to, subject, body,
	)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		m.log.Warn().Msgf("Failed to send ticket email to %s: %v", to, err)
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().Msgf("Ticket email sent to %s", to)
	return nil
}
