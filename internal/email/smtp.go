package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/chatify/chatify-server/internal/config"
)

// SMTPSender sends emails through a plain SMTP relay.
type SMTPSender struct {
	cfg config.SMTPConfig
}

// NewSMTPSender builds a sender from SMTP settings.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// SendVerification delivers the signup verification code.
func (s *SMTPSender) SendVerification(ctx context.Context, to, otp string) error {
	body := fmt.Sprintf("Your Chatify verification code is %s. It expires in 10 minutes.", otp)
	return s.send(ctx, to, "Verify Your Email", body)
}

// SendWelcome delivers the post-verification welcome email.
func (s *SMTPSender) SendWelcome(ctx context.Context, to, name string) error {
	body := fmt.Sprintf("Hi %s, welcome to Chatify! Your account is ready.", name)
	return s.send(ctx, to, "Welcome to Chatify!", body)
}

// SendPasswordReset delivers the password reset code.
func (s *SMTPSender) SendPasswordReset(ctx context.Context, to, otp string) error {
	body := fmt.Sprintf("Your Chatify password reset code is %s. It expires in 10 minutes.", otp)
	return s.send(ctx, to, "Reset Your Password", body)
}

func (s *SMTPSender) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	from := s.cfg.From
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var a smtp.Auth
	if s.cfg.Username != "" {
		a = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, a, s.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
