package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrAlreadyRegistered = errors.New("user already exists and is verified")
	ErrUnauthorized      = errors.New("unauthorized")

	// ErrOTPInvalid is wrapped by both OTP failure kinds so callers that must
	// not distinguish them can match on it.
	ErrOTPInvalid          = errors.New("otp invalid")
	ErrOTPExpiredOrInvalid = fmt.Errorf("otp has expired or request is invalid: %w", ErrOTPInvalid)
	ErrOTPMismatch         = fmt.Errorf("otp code does not match: %w", ErrOTPInvalid)
)

type User struct {
	ID           int64
	MobileNumber string
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
