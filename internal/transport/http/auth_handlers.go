package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatify/chatify-server/internal/auth"
	"github.com/chatify/chatify-server/internal/config"
	"github.com/chatify/chatify-server/internal/core"
	"github.com/chatify/chatify-server/internal/media"
	"github.com/chatify/chatify-server/internal/proto"
	"github.com/chatify/chatify-server/internal/store"
)

// AuthHandlers provides HTTP handlers for account endpoints.
type AuthHandlers struct {
	authService *auth.Service
	store       store.Store
	media       media.Store
	hub         *core.Hub
	cfg         *config.Config
	log         *zerolog.Logger
}

// NewAuthHandlers creates a new auth handlers instance.
func NewAuthHandlers(authService *auth.Service, st store.Store, mediaStore media.Store, hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		store:       st,
		media:       mediaStore,
		hub:         hub,
		cfg:         cfg,
		log:         logger,
	}
}

// SignupRequest represents the signup request body.
type SignupRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// VerifyEmailRequest represents the email verification request body.
type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// EmailRequest carries just an email (resend OTP, forgot password).
type EmailRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordRequest represents the password reset request body.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateProfileRequest represents the profile update request body.
type UpdateProfileRequest struct {
	ProfilePic string `json:"profile_pic" binding:"required"`
}

// AuthResponse is returned on successful verification or login. The token
// is also set as a cookie; the body copy is what the realtime handshake
// presents.
type AuthResponse struct {
	User  proto.UserPayload `json:"user"`
	Token string            `json:"token"`
}

// MessageResponse carries a human-readable status message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Signup handles account creation.
// POST /api/auth/signup
func (h *AuthHandlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "email already exists"})
		case errors.Is(err, auth.ErrInvalidEmail),
			errors.Is(err, auth.ErrInvalidName),
			errors.Is(err, auth.ErrInvalidPassword):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			h.log.Error().Err(err).Str("email", req.Email).Msg("signup failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	h.log.Info().Str("email", user.Email).Int64("user_id", user.ID).Msg("signup started")
	c.JSON(http.StatusCreated, MessageResponse{Message: "OTP sent to your email"})
}

// VerifyEmail handles OTP verification and logs the user in.
// POST /api/auth/verify-email
func (h *AuthHandlers) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, token, err := h.authService.VerifyEmail(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user not found"})
		case errors.Is(err, auth.ErrAlreadyVerified):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "email already verified"})
		case errors.Is(err, auth.ErrInvalidOTP):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid or expired OTP"})
		default:
			h.log.Error().Err(err).Str("email", req.Email).Msg("email verification failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	h.setSessionCookie(c, token)
	h.log.Info().Int64("user_id", user.ID).Msg("email verified")
	c.JSON(http.StatusOK, AuthResponse{User: userPayload(user), Token: token})
}

// Login handles user login.
// POST /api/auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotVerified):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "please verify your email first"})
		case errors.Is(err, auth.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		default:
			h.log.Error().Err(err).Str("email", req.Email).Msg("login failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	h.setSessionCookie(c, token)
	h.log.Info().Int64("user_id", user.ID).Msg("user logged in")
	c.JSON(http.StatusOK, AuthResponse{User: userPayload(user), Token: token})
}

// Logout clears the session cookie.
// POST /api/auth/logout
func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

// ResendOTP issues a fresh verification code.
// POST /api/auth/resend-otp
func (h *AuthHandlers) ResendOTP(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.authService.ResendOTP(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user not found"})
		case errors.Is(err, auth.ErrAlreadyVerified):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "email already verified"})
		default:
			h.log.Error().Err(err).Str("email", req.Email).Msg("resend otp failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "OTP sent to your email"})
}

// ForgotPassword emails a password reset code.
// POST /api/auth/forgot-password
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			// Do not reveal whether the email exists.
			c.JSON(http.StatusOK, MessageResponse{Message: "reset code sent if the account exists"})
			return
		}
		h.log.Error().Err(err).Str("email", req.Email).Msg("forgot password failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "reset code sent if the account exists"})
}

// ResetPassword validates the reset code and sets a new password.
// POST /api/auth/reset-password
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidOTP):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid or expired OTP"})
		case errors.Is(err, auth.ErrInvalidPassword):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "password must be at least 6 characters"})
		default:
			h.log.Error().Err(err).Str("email", req.Email).Msg("reset password failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password reset successfully"})
}

// Check returns the authenticated user's profile.
// GET /api/auth/check
func (h *AuthHandlers) Check(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", userID).Msg("auth check failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, userPayload(user))
}

// UpdateProfile stores a new profile picture and, when enabled, broadcasts
// the updated profile to every connected user.
// PUT /api/auth/update-profile
func (h *AuthHandlers) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "profile pic is required"})
		return
	}

	url, err := h.media.Save(c.Request.Context(), req.ProfilePic)
	if err != nil {
		if errors.Is(err, media.ErrInvalidImage) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image payload"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", userID).Msg("profile pic upload failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	user, err := h.store.UpdateProfilePic(c.Request.Context(), userID, url)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("profile update failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if h.cfg.BroadcastProfileUpdates {
		h.hub.Router().BroadcastUserUpdated(user)
	}

	h.log.Info().Int64("user_id", userID).Msg("profile updated")
	c.JSON(http.StatusOK, userPayload(user))
}

func (h *AuthHandlers) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(h.cfg.JWTTTL.Seconds())
	c.SetCookie(sessionCookie, token, maxAge, "/", "", false, true)
}
