package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/ErlanBelekov/mobile-signup/internal/token"
	"github.com/ErlanBelekov/mobile-signup/internal/transport/http/handler"
	"github.com/ErlanBelekov/mobile-signup/internal/transport/http/middleware"
)

// NewRouter mounts the public signup routes. /api/v1/users/me is only mounted
// when tokens is non-nil.
func NewRouter(logger *slog.Logger, healthHandler *handler.HealthHandler, signupHandler *handler.SignupHandler, userHandler *handler.UserHandler, tokens *token.Issuer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.GET("/", healthHandler.Root)
	r.GET("/healthz", healthHandler.Live)
	r.GET("/readyz", healthHandler.Ready)

	v1 := r.Group("/api/v1")

	signup := v1.Group("/auth/signup")
	signup.POST("/request-otp", signupHandler.RequestOTP)
	signup.POST("/verify", signupHandler.Verify)

	if tokens != nil {
		users := v1.Group("/users", middleware.Auth(tokens))
		users.GET("/me", userHandler.Me)
	}

	return r
}
