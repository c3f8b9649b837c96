package http

import (
	"fmt"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatify/chatify-server/internal/auth"
	"github.com/chatify/chatify-server/internal/config"
	"github.com/chatify/chatify-server/internal/core"
	"github.com/chatify/chatify-server/internal/media"
	"github.com/chatify/chatify-server/internal/service/messaging"
	"github.com/chatify/chatify-server/internal/store"
)

// NewServer builds the HTTP server: REST API, websocket endpoint, media
// files and health check.
func NewServer(hub *core.Hub, authService *auth.Service, msgService *messaging.Service, st store.Store, mediaStore *media.LocalStore, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	authHandlers := NewAuthHandlers(authService, st, mediaStore, hub, cfg, logger)
	messageHandlers := NewMessageHandlers(msgService, logger)

	authGroup := router.Group("/api/auth")
	if cfg.AuthRateLimit > 0 {
		authGroup.Use(RateLimitMiddleware(cfg.AuthRateLimit))
	}
	authGroup.POST("/signup", authHandlers.Signup)
	authGroup.POST("/verify-email", authHandlers.VerifyEmail)
	authGroup.POST("/login", authHandlers.Login)
	authGroup.POST("/logout", authHandlers.Logout)
	authGroup.POST("/resend-otp", authHandlers.ResendOTP)
	authGroup.POST("/forgot-password", authHandlers.ForgotPassword)
	authGroup.POST("/reset-password", authHandlers.ResetPassword)

	protected := authGroup.Group("")
	protected.Use(AuthMiddleware(authService, logger))
	protected.GET("/check", authHandlers.Check)
	protected.PUT("/update-profile", authHandlers.UpdateProfile)

	messages := router.Group("/api/messages")
	messages.Use(AuthMiddleware(authService, logger))
	messages.GET("/contacts", messageHandlers.Contacts)
	messages.GET("/partners", messageHandlers.Partners)
	messages.GET("/conversation/:id", messageHandlers.Conversation)
	messages.POST("/send/:id", messageHandlers.Send)
	messages.POST("/delete", messageHandlers.Delete)

	if mediaStore != nil {
		router.Static(cfg.MediaBaseURL, mediaStore.Dir())
	}

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, authService, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	fmt.Fprint(c.Writer, "ok")
}
