// Package mail provides a fluent SMTP mailer.
//
// Usage:
//
//	mailer.To("user@example.com").
//	    Subject("Your Cart Summary").
//	    Body("<h3>...</h3>").
//	    Send()
package mail

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/bazaarhq/bazaar/config"
)

// Mailer holds the SMTP relay settings and starts messages.
type Mailer struct {
	cfg config.SMTP
}

// New builds a Mailer from the SMTP section of the application config.
func New(cfg config.SMTP) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendHTML delivers an HTML email to a single recipient.
func (m *Mailer) SendHTML(to, subject, html string) error {
	return m.To(to).Subject(subject).Body(html).Send()
}

// SendText delivers a plain-text email to a single recipient.
func (m *Mailer) SendText(to, subject, text string) error {
	return m.To(to).Subject(subject).Text(text).Send()
}

// Message is a fluent builder for a single email.
type Message struct {
	mailer  *Mailer
	to      []string
	subject string
	body    string
	isHTML  bool
}

// To starts a message addressed to the given recipients.
func (m *Mailer) To(addresses ...string) *Message {
	return &Message{
		mailer: m,
		to:     addresses,
		isHTML: true,
	}
}

// Subject sets the email subject.
func (msg *Message) Subject(s string) *Message {
	msg.subject = s
	return msg
}

// Body sets an HTML body.
func (msg *Message) Body(html string) *Message {
	msg.body = html
	msg.isHTML = true
	return msg
}

// Text sets a plain-text body.
func (msg *Message) Text(text string) *Message {
	msg.body = text
	msg.isHTML = false
	return msg
}

// Send delivers the email via SMTP.
func (msg *Message) Send() error {
	cfg := msg.mailer.cfg
	if cfg.Username == "" {
		return fmt.Errorf("mail: MAIL_USERNAME not configured")
	}

	from := fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	raw := msg.buildRaw(from)

	addr := cfg.Host + ":" + cfg.Port
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)

	// Implicit TLS for port 465, STARTTLS for 587/25.
	if cfg.Port == "465" {
		return msg.sendTLS(addr, auth, cfg.From, raw, cfg.Host)
	}
	return smtp.SendMail(addr, auth, cfg.From, msg.to, raw)
}

func (msg *Message) sendTLS(addr string, auth smtp.Auth, from string, raw []byte, host string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("mail: TLS dial: %w", err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range msg.to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = w.Write(raw)
	return err
}

func (msg *Message) buildRaw(from string) []byte {
	contentType := "text/plain"
	if msg.isHTML {
		contentType = "text/html"
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(msg.to, ", ") + "\r\n")
	b.WriteString("Subject: " + msg.subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
	b.WriteString("\r\n")
	b.WriteString(msg.body)
	return []byte(b.String())
}
