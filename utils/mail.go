package utils

import (
	"context"
	"fmt"
	"net/smtp"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages. Dispatch failure is fatal to the triggering
// operation; there are no retries.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends plain-text email over SMTP.
type SMTPMailer struct {
	Host string
	Port string
	User string
	Pass string
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.Host == "" || m.Port == "" || m.User == "" || m.Pass == "" {
		return fmt.Errorf("smtp not configured")
	}

	addr := m.Host + ":" + m.Port
	from := m.User

	body := "From: " + from + "\r\n" +
		"To: " + msg.To + "\r\n" +
		"Subject: " + msg.Subject + "\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n" +
		msg.Body + "\r\n"

	auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
	return smtp.SendMail(addr, auth, from, []string{msg.To}, []byte(body))
}
