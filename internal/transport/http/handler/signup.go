package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/mobile-signup/internal/dispatch"
	"github.com/ErlanBelekov/mobile-signup/internal/domain"
	"github.com/ErlanBelekov/mobile-signup/internal/requestid"
)

// registrationUsecaser is the subset of RegistrationUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type registrationUsecaser interface {
	Initiate(ctx context.Context, mobileNumber string) (string, error)
	Verify(ctx context.Context, mobileNumber, code string) (*domain.User, error)
}

type enqueuer interface {
	Enqueue(job dispatch.Job) bool
}

type tokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

type SignupHandler struct {
	registration registrationUsecaser
	dispatcher   enqueuer
	tokens       tokenIssuer
	logger       *slog.Logger
}

// NewSignupHandler wires the signup endpoints. tokens may be nil, in which
// case verify responses carry no access token.
func NewSignupHandler(registration registrationUsecaser, dispatcher enqueuer, tokens tokenIssuer, logger *slog.Logger) *SignupHandler {
	RegisterValidators()
	return &SignupHandler{
		registration: registration,
		dispatcher:   dispatcher,
		tokens:       tokens,
		logger:       logger.With("component", "signup_handler"),
	}
}

type requestOTPRequest struct {
	MobileNumber string `json:"mobile_number" binding:"required,in_mobile"`
}

type verifyRequest struct {
	MobileNumber string `json:"mobile_number" binding:"required"`
	OTPCode      string `json:"otp_code"      binding:"required,otp_digits"`
}

type userResponse struct {
	UserID       int64     `json:"user_id"`
	MobileNumber string    `json:"mobile_number"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	AccessToken  string    `json:"access_token,omitempty"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{
		UserID:       u.ID,
		MobileNumber: u.MobileNumber,
		IsVerified:   u.IsVerified,
		CreatedAt:    u.CreatedAt,
	}
}

// POST /api/v1/auth/signup/request-otp
// The SMS goes out after the response; delivery failures never reach the client.
func (h *SignupHandler) RequestOTP(c *gin.Context) {
	var req requestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	ctx := c.Request.Context()
	h.logger.InfoContext(ctx, "otp requested", "mobile_number", req.MobileNumber)

	code, err := h.registration.Initiate(ctx, req.MobileNumber)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errAlreadyRegistered})
			return
		}
		h.logger.ErrorContext(ctx, "initiate registration", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	h.dispatcher.Enqueue(dispatch.Job{
		MobileNumber: req.MobileNumber,
		Code:         code,
		RequestID:    requestid.FromContext(ctx),
	})

	c.JSON(http.StatusOK, gin.H{"message": msgOTPSent})
}

// POST /api/v1/auth/signup/verify
func (h *SignupHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	ctx := c.Request.Context()
	h.logger.InfoContext(ctx, "verifying otp", "mobile_number", req.MobileNumber)

	user, err := h.registration.Verify(ctx, req.MobileNumber, req.OTPCode)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOTPExpiredOrInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": errOTPExpired})
		case errors.Is(err, domain.ErrOTPMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": errOTPMismatch})
		default:
			h.logger.ErrorContext(ctx, "verify otp", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	resp := newUserResponse(user)
	if h.tokens != nil {
		tok, err := h.tokens.Issue(user)
		if err != nil {
			h.logger.ErrorContext(ctx, "issue access token", "user_id", user.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
			return
		}
		resp.AccessToken = tok
	}

	h.logger.InfoContext(ctx, "signup verified", "user_id", user.ID)
	c.JSON(http.StatusCreated, resp)
}
