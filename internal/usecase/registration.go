package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/mobile-signup/internal/cache"
	"github.com/ErlanBelekov/mobile-signup/internal/domain"
	"github.com/ErlanBelekov/mobile-signup/internal/metrics"
	"github.com/ErlanBelekov/mobile-signup/internal/otp"
	"github.com/ErlanBelekov/mobile-signup/internal/repository"
)

const defaultOTPTTL = 300 * time.Second

type RegistrationUsecase struct {
	users    repository.UserRepository
	codes    cache.Store
	generate otp.Generator
	otpTTL   time.Duration
	logger   *slog.Logger
}

type Option func(*RegistrationUsecase)

// WithOTPTTL overrides how long an issued code stays valid.
func WithOTPTTL(ttl time.Duration) Option {
	return func(u *RegistrationUsecase) { u.otpTTL = ttl }
}

func WithGenerator(g otp.Generator) Option {
	return func(u *RegistrationUsecase) { u.generate = g }
}

func NewRegistrationUsecase(users repository.UserRepository, codes cache.Store, logger *slog.Logger, opts ...Option) *RegistrationUsecase {
	u := &RegistrationUsecase{
		users:    users,
		codes:    codes,
		generate: otp.Generate,
		otpTTL:   defaultOTPTTL,
		logger:   logger.With("component", "registration"),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Initiate checks the number is not registered yet, then caches a fresh code
// and returns it so the caller can dispatch it. It never writes to the user store.
func (u *RegistrationUsecase) Initiate(ctx context.Context, mobileNumber string) (string, error) {
	u.logger.InfoContext(ctx, "checking existing user", "mobile_number", mobileNumber)

	_, err := u.users.FindByMobile(ctx, mobileNumber)
	switch {
	case err == nil:
		u.logger.WarnContext(ctx, "registration aborted, user already exists", "mobile_number", mobileNumber)
		return "", domain.ErrAlreadyRegistered
	case !errors.Is(err, domain.ErrUserNotFound):
		return "", fmt.Errorf("find user: %w", err)
	}

	code := u.generate()
	if err := u.codes.Set(ctx, cache.Key(mobileNumber), u.otpTTL, code); err != nil {
		return "", fmt.Errorf("cache otp: %w", err)
	}
	metrics.OTPIssuedTotal.Inc()

	u.logger.InfoContext(ctx, "otp issued", "mobile_number", mobileNumber, "ttl", u.otpTTL, "cache", u.codes.Name())
	return code, nil
}

// Verify consumes a cached code. A wrong code leaves the entry in place so
// the user can retry until it expires. Completing twice returns the same user.
func (u *RegistrationUsecase) Verify(ctx context.Context, mobileNumber, code string) (*domain.User, error) {
	key := cache.Key(mobileNumber)

	stored, ok, err := u.codes.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read otp: %w", err)
	}
	if !ok {
		metrics.OTPVerificationsTotal.WithLabelValues("expired").Inc()
		u.logger.WarnContext(ctx, "otp verification failed, expired or missing", "mobile_number", mobileNumber)
		return nil, domain.ErrOTPExpiredOrInvalid
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		metrics.OTPVerificationsTotal.WithLabelValues("mismatch").Inc()
		u.logger.WarnContext(ctx, "otp verification failed, wrong code", "mobile_number", mobileNumber)
		return nil, domain.ErrOTPMismatch
	}

	existing, err := u.users.FindByMobile(ctx, mobileNumber)
	switch {
	case err == nil:
		u.logger.InfoContext(ctx, "user already registered, returning existing profile", "mobile_number", mobileNumber, "user_id", existing.ID)
		u.consume(ctx, key)
		metrics.OTPVerificationsTotal.WithLabelValues("existing").Inc()
		return existing, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("find user: %w", err)
	}

	u.logger.InfoContext(ctx, "creating user", "mobile_number", mobileNumber)
	user, err := u.users.Create(ctx, mobileNumber)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	u.consume(ctx, key)

	metrics.OTPVerificationsTotal.WithLabelValues("created").Inc()
	metrics.UsersCreatedTotal.Inc()
	return user, nil
}

func (u *RegistrationUsecase) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// consume deletes a used code. The user row is already durable, so a failed
// delete only leaves a code that expires on its own.
func (u *RegistrationUsecase) consume(ctx context.Context, key string) {
	if _, err := u.codes.Delete(ctx, key); err != nil {
		u.logger.ErrorContext(ctx, "delete used otp", "key", key, "error", err)
	}
}
