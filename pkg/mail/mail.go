package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/markethive/accounts-backend/pkg/config"
)

// Message is a fully rendered transactional email ready to send.
type Message struct {
	ToName    string
	ToEmail   string
	Subject   string
	PlainBody string
	HTMLBody  string
}

// Sender delivers rendered messages. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendgridSender delivers messages through the SendGrid v3 API.
type SendgridSender struct {
	client      *sendgrid.Client
	defaultFrom string
	fromName    string
}

// NewSendgridSender builds a sender from config. The API key is required.
func NewSendgridSender(cfg config.SendgridConfig) (*SendgridSender, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if strings.TrimSpace(cfg.DefaultFrom) == "" {
		return nil, fmt.Errorf("sendgrid from email is required")
	}
	return &SendgridSender{
		client:      sendgrid.NewSendClient(cfg.APIKey),
		defaultFrom: cfg.DefaultFrom,
		fromName:    cfg.FromName,
	}, nil
}

// Send delivers a single message. Responses outside the 2xx range are errors.
func (s *SendgridSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.ToEmail) == "" {
		return fmt.Errorf("recipient email is required")
	}

	from := sgmail.NewEmail(s.fromName, s.defaultFrom)
	to := sgmail.NewEmail(msg.ToName, msg.ToEmail)
	email := sgmail.NewSingleEmail(from, msg.Subject, to, msg.PlainBody, msg.HTMLBody)

	resp, err := s.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid rejected email: status %d", resp.StatusCode)
	}
	return nil
}
