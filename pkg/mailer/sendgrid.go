package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendgridSender struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func newSendgridSender(cfg Config) *sendgridSender {
	return &sendgridSender{
		client:   sendgrid.NewSendClient(cfg.SendgridAPIKey),
		from:     cfg.FromAddress,
		fromName: cfg.FromName,
	}
}

func (s *sendgridSender) Send(ctx context.Context, msg Message) Result {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail("", msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, "", msg.HTML)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return Result{Error: fmt.Errorf("failed to send email via Sendgrid: %w", err)}
	}

	if response.StatusCode >= 300 {
		return Result{Error: fmt.Errorf("unexpected Sendgrid status code: %d, body: %s", response.StatusCode, response.Body)}
	}

	return Result{Success: true}
}
