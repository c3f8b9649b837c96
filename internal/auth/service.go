package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatify/chatify-server/internal/email"
	"github.com/chatify/chatify-server/internal/store"
)

var (
	// ErrInvalidCredentials is returned when email/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when signing up with a verified email.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no account matches the email.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidEmail is returned when the email fails validation.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidName is returned when the full name is empty.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidPassword is returned when the password is too short.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidOTP is returned for a wrong or expired one-time code.
	ErrInvalidOTP = errors.New("invalid or expired otp")
	// ErrNotVerified is returned when a valid login hits an unverified account.
	ErrNotVerified = errors.New("email not verified")
	// ErrAlreadyVerified is returned when verifying an already-verified account.
	ErrAlreadyVerified = errors.New("email already verified")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service provides authentication operations: signup with email OTP
// verification, login, and the password reset flow.
type Service struct {
	store     store.UserStore
	jwtConfig *JWTConfig
	mailer    email.Sender
	otpTTL    time.Duration
	log       *zerolog.Logger
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig, mailer email.Sender, otpTTL time.Duration, logger *zerolog.Logger) *Service {
	return &Service{
		store:     userStore,
		jwtConfig: jwtConfig,
		mailer:    mailer,
		otpTTL:    otpTTL,
		log:       logger,
	}
}

// Signup creates an unverified account and emails a verification code.
// Signing up again over an unverified account restarts the flow instead of
// failing, so an abandoned signup never blocks the email address.
func (s *Service) Signup(ctx context.Context, fullName, em, password string) (*store.User, error) {
	fullName = strings.TrimSpace(fullName)
	em = strings.ToLower(strings.TrimSpace(em))

	if fullName == "" {
		return nil, ErrInvalidName
	}
	if !emailPattern.MatchString(em) {
		return nil, ErrInvalidEmail
	}
	if len(password) < 6 {
		return nil, ErrInvalidPassword
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	otp, err := GenerateOTP()
	if err != nil {
		return nil, err
	}
	otpExpires := time.Now().Add(s.otpTTL)

	existing, err := s.store.GetUserByEmail(ctx, em)
	if err == nil {
		if existing.IsVerified {
			return nil, ErrUserExists
		}
		if err := s.store.OverwritePendingUser(ctx, existing.ID, fullName, hash, otp, otpExpires); err != nil {
			return nil, fmt.Errorf("restart signup: %w", err)
		}
		s.sendVerification(ctx, em, otp)
		return s.store.GetUserByID(ctx, existing.ID)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user, err := s.store.CreateUser(ctx, fullName, em, hash, otp, otpExpires)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.sendVerification(ctx, em, otp)
	return user, nil
}

// VerifyEmail checks the signup OTP, marks the account verified and returns
// the user with a session token.
func (s *Service) VerifyEmail(ctx context.Context, em, otp string) (*store.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(em)))
	if err != nil {
		return nil, "", ErrUserNotFound
	}
	if user.IsVerified {
		return nil, "", ErrAlreadyVerified
	}
	if !otpMatches(user.OTP, user.OTPExpiresAt, otp) {
		return nil, "", ErrInvalidOTP
	}

	if err := s.store.MarkVerified(ctx, user.ID); err != nil {
		return nil, "", fmt.Errorf("mark verified: %w", err)
	}

	token, err := GenerateToken(s.jwtConfig, user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	if mailErr := s.mailer.SendWelcome(ctx, user.Email, user.FullName); mailErr != nil {
		s.log.Warn().Err(mailErr).Str("email", user.Email).Msg("failed to send welcome email")
	}

	user, err = s.store.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("reload user: %w", err)
	}
	return user, token, nil
}

// Login validates credentials and returns the user with a session token.
func (s *Service) Login(ctx context.Context, em, password string) (*store.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(em)))
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, "", ErrNotVerified
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := GenerateToken(s.jwtConfig, user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return user, token, nil
}

// ResendOTP issues a fresh verification code for an unverified account.
func (s *Service) ResendOTP(ctx context.Context, em string) error {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(em)))
	if err != nil {
		return ErrUserNotFound
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	otp, err := GenerateOTP()
	if err != nil {
		return err
	}
	if err := s.store.SetOTP(ctx, user.ID, otp, time.Now().Add(s.otpTTL)); err != nil {
		return fmt.Errorf("set otp: %w", err)
	}

	s.sendVerification(ctx, user.Email, otp)
	return nil
}

// ForgotPassword emails a password reset code to a verified account.
func (s *Service) ForgotPassword(ctx context.Context, em string) error {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(em)))
	if err != nil {
		return ErrUserNotFound
	}

	otp, err := GenerateOTP()
	if err != nil {
		return err
	}
	if err := s.store.SetResetOTP(ctx, user.ID, otp, time.Now().Add(s.otpTTL)); err != nil {
		return fmt.Errorf("set reset otp: %w", err)
	}

	if mailErr := s.mailer.SendPasswordReset(ctx, user.Email, otp); mailErr != nil {
		s.log.Warn().Err(mailErr).Str("email", user.Email).Msg("failed to send reset email")
	}
	return nil
}

// ResetPassword checks the reset OTP and replaces the password.
func (s *Service) ResetPassword(ctx context.Context, em, otp, newPassword string) error {
	if len(newPassword) < 6 {
		return ErrInvalidPassword
	}

	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(em)))
	if err != nil {
		return ErrUserNotFound
	}
	if !otpMatches(user.ResetOTP, user.ResetExpires, otp) {
		return ErrInvalidOTP
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.ResetPassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}

// ValidateToken validates a JWT token and returns the claims. Both the HTTP
// middleware and the websocket handshake go through here.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}

func (s *Service) sendVerification(ctx context.Context, em, otp string) {
	if err := s.mailer.SendVerification(ctx, em, otp); err != nil {
		s.log.Warn().Err(err).Str("email", em).Msg("failed to send verification email")
	}
}

func otpMatches(stored string, expires *time.Time, candidate string) bool {
	if stored == "" || candidate == "" || stored != candidate {
		return false
	}
	if expires == nil || time.Now().After(*expires) {
		return false
	}
	return true
}
