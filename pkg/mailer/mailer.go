package mailer

import (
	"context"

	"go.uber.org/zap"
)

// Message is a single outgoing HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Result mirrors what callers need to decide whether to mark work as done.
type Result struct {
	Success   bool
	Simulated bool
	Error     error
}

type Sender interface {
	Send(ctx context.Context, msg Message) Result
}

type Config struct {
	SendgridAPIKey string
	FromAddress    string
	FromName       string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
}

// New picks SendGrid when an API key is configured, SMTP when a host is,
// and otherwise a simulated sender that only logs.
func New(cfg Config) Sender {
	switch {
	case cfg.SendgridAPIKey != "":
		return newSendgridSender(cfg)
	case cfg.SMTPHost != "":
		return newSMTPSender(cfg)
	default:
		zap.L().Warn("no mail provider configured, emails will be simulated")
		return simulatedSender{}
	}
}

type simulatedSender struct{}

func (simulatedSender) Send(_ context.Context, msg Message) Result {
	zap.L().Info("simulated email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return Result{Success: true, Simulated: true}
}
