package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"net/smtp"
)

type smtpSender struct {
	addr     string
	auth     smtp.Auth
	from     string
	fromName string
}

func newSMTPSender(cfg Config) *smtpSender {
	port := cfg.SMTPPort
	if port == "" {
		port = "587"
	}

	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}

	return &smtpSender{
		addr:     net.JoinHostPort(cfg.SMTPHost, port),
		auth:     auth,
		from:     cfg.FromAddress,
		fromName: cfg.FromName,
	}
}

func (s *smtpSender) Send(ctx context.Context, msg Message) Result {
	if err := ctx.Err(); err != nil {
		return Result{Error: err}
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", msg.To))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	buf.WriteString(base64.StdEncoding.EncodeToString([]byte(msg.HTML)))
	buf.WriteString("\r\n")

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{msg.To}, buf.Bytes()); err != nil {
		return Result{Error: fmt.Errorf("failed to send email via SMTP: %w", err)}
	}

	return Result{Success: true}
}
