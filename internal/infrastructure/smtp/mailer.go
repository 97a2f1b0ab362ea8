package smtp

import (
	"fmt"
	"net/smtp"

	"github.com/calligro/registration-api/internal/config"
)

// Mailer sends transactional emails.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type mailer struct {
	host   string
	port   string
	from   string
	sender string
	apiKey string
}

// NewMailer builds a mailer against the Brevo SMTP relay, authenticating with
// the account's API key. A missing key is a configuration error: the OTP send
// path is the only consumer and cannot work without it.
func NewMailer(cfg *config.Config) (Mailer, error) {
	if cfg.BrevoAPIKey == "" {
		return nil, fmt.Errorf("BREVO_API_KEY is not set")
	}
	return &mailer{
		host:   cfg.SMTPHost,
		port:   cfg.SMTPPort,
		from:   cfg.SMTPFrom,
		sender: cfg.SMTPSender,
		apiKey: cfg.BrevoAPIKey,
	}, nil
}

func (m *mailer) SendEmail(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.sender, m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	auth := smtp.PlainAuth("", m.from, m.apiKey, m.host)
	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}
