package services

import (
	"fmt"
	"net/smtp"

	"github.com/dimitrije/relayo-api/internal/config"
	"github.com/dimitrije/relayo-api/internal/templates"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type EmailService struct {
	cfg      config.SMTPConfig
	sendMail sendMailFunc
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg, sendMail: smtp.SendMail}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

// Send delivers an HTML email. It is a no-op when SMTP is not configured.
func (s *EmailService) Send(to, subject, body string) error {
	if !s.IsConfigured() {
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, body)

	return s.sendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}

func (s *EmailService) SendConfirmation(to string, vars templates.Vars) error {
	email := templates.EmailConfirmation(vars)
	return s.Send(to, email.Subject, email.Body)
}

func (s *EmailService) SendReminder(to string, vars templates.Vars) error {
	email := templates.EmailReminder(vars)
	return s.Send(to, email.Subject, email.Body)
}

func (s *EmailService) SendCancellation(to string, vars templates.Vars) error {
	email := templates.EmailCancellation(vars)
	return s.Send(to, email.Subject, email.Body)
}
