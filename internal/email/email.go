package email

import "context"

// Sender delivers account emails. The auth service treats delivery as
// best-effort: failures are logged by the caller, never fatal.
type Sender interface {
	// SendVerification delivers the signup verification code.
	SendVerification(ctx context.Context, to, otp string) error

	// SendWelcome delivers the post-verification welcome email.
	SendWelcome(ctx context.Context, to, name string) error

	// SendPasswordReset delivers the password reset code.
	SendPasswordReset(ctx context.Context, to, otp string) error
}
