package services

import (
	"fmt"
	"net/smtp"
)

// EmailService sends plain-text mail over SMTP. Calls are thin, single-shot
// wrappers; callers treat failures as best-effort.
type EmailService struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

// NewEmailService builds an EmailService from injected SMTP settings.
func NewEmailService(host, port, user, password, from string) *EmailService {
	return &EmailService{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
	}
}

func (s *EmailService) SendEmail(to []string, subject, body string) error {
	if s.host == "" || s.port == "" || s.user == "" || s.password == "" {
		return fmt.Errorf("SMTP credentials not fully configured")
	}

	auth := smtp.PlainAuth("", s.user, s.password, s.host)

	message := []byte(fmt.Sprintf("To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", to[0], subject, body))

	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	if err := smtp.SendMail(addr, auth, s.from, to, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendWelcome sends the community-member welcome note.
func (s *EmailService) SendWelcome(to, name string) error {
	body := fmt.Sprintf("Hi %s,\n\nThanks for joining our community. We'll keep you posted on how your support is put to work.\n", name)
	return s.SendEmail([]string{to}, "Welcome to the community", body)
}
