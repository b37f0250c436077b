package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/mobile-signup/internal/domain"
	"github.com/ErlanBelekov/mobile-signup/internal/transport/http/middleware"
)

type userGetter interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

type UserHandler struct {
	users  userGetter
	logger *slog.Logger
}

func NewUserHandler(users userGetter, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger.With("component", "user_handler")}
}

// GET /api/v1/users/me
// Requires middleware.Auth.
func (h *UserHandler) Me(c *gin.Context) {
	userID := c.GetInt64(middleware.UserIDKey)

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "get user", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}
