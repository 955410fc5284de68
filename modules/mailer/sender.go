package mailer

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"
)

// ErrQueueUnavailable is returned when the email queue is not connected.
var ErrQueueUnavailable = errors.New("email queue unavailable")

// Sender delivers a single email.
type Sender interface {
	Send(ctx context.Context, job *EmailJob) error
}

// SMTPConfig holds SMTP delivery configuration.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender delivers email over SMTP with PLAIN auth.
type SMTPSender struct {
	config SMTPConfig
}

// NewSMTPSender creates a new SMTP sender.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.FromName == "" {
		cfg.FromName = "Storefront Support"
	}
	return &SMTPSender{config: cfg}
}

// Send delivers the email to its recipient.
func (s *SMTPSender) Send(_ context.Context, job *EmailJob) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %q <%s>\r\n", s.config.FromName, s.config.From)
	fmt.Fprintf(&msg, "To: %s\r\n", job.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", job.Subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(job.Body)

	if err := smtp.SendMail(addr, auth, s.config.From, []string{job.To}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", job.To, err)
	}
	return nil
}

// LogSender logs emails instead of delivering them. Used when no SMTP
// host is configured.
type LogSender struct{}

// Send logs the email.
func (s *LogSender) Send(_ context.Context, job *EmailJob) error {
	log.Printf("[mailer] (log-only) email %s to=%s subject=%q", job.ID, job.To, job.Subject)
	return nil
}

var feedbackAckTemplate = template.Must(template.New("feedback-ack").Parse(`
<p>Hi <strong>{{.Name}}</strong>,</p>
<p>We have received your feedback:</p>
<blockquote style="border-left: 4px solid #ccc; padding-left: 10px;">"{{.Message}}"</blockquote>
<p>We appreciate your input and will get back to you soon.</p>
<p>Best Regards,<br><strong>Storefront Team</strong></p>
`))

// RenderFeedbackAck renders the acknowledgement email sent back to a
// feedback submitter.
func RenderFeedbackAck(name, message string) (subject, body string, err error) {
	var buf strings.Builder
	err = feedbackAckTemplate.Execute(&buf, struct {
		Name    string
		Message string
	}{Name: name, Message: message})
	if err != nil {
		return "", "", fmt.Errorf("failed to render feedback acknowledgement: %w", err)
	}
	return fmt.Sprintf("Thank you for your feedback, %s!", name), buf.String(), nil
}
