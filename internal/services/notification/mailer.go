package notification

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/wneessen/go-mail"

	"ppe-monitor-go/internal/config"
)

const (
	AlertSubject = "Alert: Hardhat Missing!"
	AlertBody    = "A person was detected without a hardhat for over 10 seconds."

	TestSubject = "Test Email"
	TestBody    = "This is a test email from the PPE monitor."
)

var ErrMailNotConfigured = errors.New("mail settings incomplete: SENDER_EMAIL, EMAIL_PASSWORD and RECEIVER_EMAIL are required")

// ErrAttachmentMissing is returned when the alert snapshot cannot be read.
var ErrAttachmentMissing = errors.New("attachment missing")

// Mailer delivers alert email.
type Mailer interface {
	SendAlert(ctx context.Context, imagePath string) error
}

// SMTPMailer sends mail over STARTTLS with PLAIN auth.
type SMTPMailer struct {
	host     string
	port     int
	from     string
	password string
	to       string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SenderEmail,
		password: cfg.EmailPassword,
		to:       cfg.ReceiverEmail,
	}
}

// SendAlert sends the missing-hardhat alert with the snapshot attached.
func (m *SMTPMailer) SendAlert(ctx context.Context, imagePath string) error {
	return m.send(ctx, AlertSubject, AlertBody, imagePath)
}

// SendTest sends a plain message without attachment.
func (m *SMTPMailer) SendTest(ctx context.Context) error {
	return m.send(ctx, TestSubject, TestBody, "")
}

func (m *SMTPMailer) send(ctx context.Context, subject, body, attachment string) error {
	if m.from == "" || m.password == "" || m.to == "" {
		return ErrMailNotConfigured
	}

	msg, err := m.newMessage(subject, body, attachment)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.from),
		mail.WithPassword(m.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail via %s:%d: %w", m.host, m.port, err)
	}
	return nil
}

func (m *SMTPMailer) newMessage(subject, body, attachment string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.to); err != nil {
		return nil, fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	if attachment != "" {
		// AttachFile skips files it cannot stat without reporting it.
		if _, err := os.Stat(attachment); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrAttachmentMissing, attachment, err)
		}
		msg.AttachFile(attachment)
	}
	return msg, nil
}
