package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatify/chatify-server/internal/store/sqlite"
)

// recordingMailer captures sent codes so tests can complete the OTP flows.
type recordingMailer struct {
	lastOTP      string
	lastResetOTP string
	welcomed     []string
}

func (m *recordingMailer) SendVerification(_ context.Context, _, otp string) error {
	m.lastOTP = otp
	return nil
}

func (m *recordingMailer) SendWelcome(_ context.Context, to, _ string) error {
	m.welcomed = append(m.welcomed, to)
	return nil
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, _, otp string) error {
	m.lastResetOTP = otp
	return nil
}

func newTestAuthService(t *testing.T) (*Service, *recordingMailer) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	jwtConfig := &JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      7 * 24 * time.Hour,
	}

	mailer := &recordingMailer{}
	logger := zerolog.New(nil)
	return NewService(st, jwtConfig, mailer, 10*time.Minute, &logger), mailer
}

func TestSignup_RejectsInvalidInput(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "", "alice@example.com", "password123"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := svc.Signup(ctx, "Alice", "not-an-email", "password123"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.Signup(ctx, "Alice", "alice@example.com", "12345"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestSignupVerifyLoginFlow(t *testing.T) {
	svc, mailer := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "Alice", "Alice@Example.com", "password123")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if user.IsVerified {
		t.Fatalf("account must start unverified")
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email should be normalized, got %q", user.Email)
	}
	if mailer.lastOTP == "" {
		t.Fatalf("expected verification OTP to be sent")
	}

	// Login before verification is rejected.
	if _, _, err := svc.Login(ctx, "alice@example.com", "password123"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}

	// Wrong OTP is rejected.
	if _, _, err := svc.VerifyEmail(ctx, "alice@example.com", "000000"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP, got %v", err)
	}

	verified, token, err := svc.VerifyEmail(ctx, "alice@example.com", mailer.lastOTP)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !verified.IsVerified || token == "" {
		t.Fatalf("expected verified user with token, got %+v", verified)
	}
	if len(mailer.welcomed) != 1 {
		t.Fatalf("expected welcome email after verification")
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("token validation failed: %v", err)
	}
	if claims.UserID != verified.ID {
		t.Fatalf("token user mismatch: %d != %d", claims.UserID, verified.ID)
	}

	if _, _, err := svc.Login(ctx, "alice@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice@example.com", "password123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

func TestSignup_RestartsUnverifiedAccount(t *testing.T) {
	svc, mailer := newTestAuthService(t)
	ctx := context.Background()

	first, err := svc.Signup(ctx, "Alice", "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	firstOTP := mailer.lastOTP

	// Same email again before verification restarts the flow in place.
	second, err := svc.Signup(ctx, "Alice Smith", "alice@example.com", "newpassword")
	if err != nil {
		t.Fatalf("re-signup failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("re-signup must reuse the account, got %d and %d", first.ID, second.ID)
	}
	if second.FullName != "Alice Smith" {
		t.Fatalf("re-signup should overwrite name, got %q", second.FullName)
	}
	if mailer.lastOTP == firstOTP {
		t.Fatalf("re-signup should issue a fresh OTP")
	}

	// After verification the email is taken for good.
	if _, _, err := svc.VerifyEmail(ctx, "alice@example.com", mailer.lastOTP); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if _, err := svc.Signup(ctx, "Mallory", "alice@example.com", "password123"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	svc, mailer := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Alice", "alice@example.com", "password123"); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if _, _, err := svc.VerifyEmail(ctx, "alice@example.com", mailer.lastOTP); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if err := svc.ForgotPassword(ctx, "alice@example.com"); err != nil {
		t.Fatalf("forgot password failed: %v", err)
	}
	if mailer.lastResetOTP == "" {
		t.Fatalf("expected reset OTP to be sent")
	}

	if err := svc.ResetPassword(ctx, "alice@example.com", "000000", "changedpass"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP for wrong code, got %v", err)
	}
	if err := svc.ResetPassword(ctx, "alice@example.com", mailer.lastResetOTP, "changedpass"); err != nil {
		t.Fatalf("reset password failed: %v", err)
	}

	if _, _, err := svc.Login(ctx, "alice@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should no longer work, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice@example.com", "changedpass"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}

	// The reset OTP is single-use.
	if err := svc.ResetPassword(ctx, "alice@example.com", mailer.lastResetOTP, "anotherpass"); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP for reused code, got %v", err)
	}
}

func TestResendOTP(t *testing.T) {
	svc, mailer := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Alice", "alice@example.com", "password123"); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	firstOTP := mailer.lastOTP

	if err := svc.ResendOTP(ctx, "alice@example.com"); err != nil {
		t.Fatalf("resend failed: %v", err)
	}
	if mailer.lastOTP == firstOTP {
		t.Fatalf("resend should issue a fresh OTP")
	}

	// The old code is invalidated by the resend.
	if _, _, err := svc.VerifyEmail(ctx, "alice@example.com", firstOTP); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected ErrInvalidOTP for stale code, got %v", err)
	}
	if _, _, err := svc.VerifyEmail(ctx, "alice@example.com", mailer.lastOTP); err != nil {
		t.Fatalf("verify with fresh code failed: %v", err)
	}
	if err := svc.ResendOTP(ctx, "alice@example.com"); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}
