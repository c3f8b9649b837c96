package email

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes emails to the log instead of sending them. Used when no
// SMTP host is configured (development, tests).
type LogSender struct {
	log *zerolog.Logger
}

// NewLogSender builds a log-only sender.
func NewLogSender(logger *zerolog.Logger) *LogSender {
	return &LogSender{log: logger}
}

// SendVerification logs the verification code.
func (s *LogSender) SendVerification(_ context.Context, to, otp string) error {
	s.log.Info().Str("to", to).Str("otp", otp).Msg("verification email (not sent: smtp disabled)")
	return nil
}

// SendWelcome logs the welcome email.
func (s *LogSender) SendWelcome(_ context.Context, to, name string) error {
	s.log.Info().Str("to", to).Str("name", name).Msg("welcome email (not sent: smtp disabled)")
	return nil
}

// SendPasswordReset logs the reset code.
func (s *LogSender) SendPasswordReset(_ context.Context, to, otp string) error {
	s.log.Info().Str("to", to).Str("otp", otp).Msg("password reset email (not sent: smtp disabled)")
	return nil
}
