package handler

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ErlanBelekov/mobile-signup/internal/phone"
)

var (
	otpDigits    = regexp.MustCompile(`^\d{6}$`)
	registerOnce sync.Once
)

// RegisterValidators adds the signup binding tags to gin's validator.
// NewSignupHandler calls it, so it only needs calling directly in tests that
// bind without a handler.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("gin binding validator is not go-playground/validator")
		}
		mustRegister(v, "in_mobile", func(fl validator.FieldLevel) bool {
			return phone.Valid(fl.Field().String())
		})
		mustRegister(v, "otp_digits", func(fl validator.FieldLevel) bool {
			return otpDigits.MatchString(fl.Field().String())
		})
	})
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

// bindErrorMessage turns a ShouldBindJSON error into a client-facing message.
func bindErrorMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errInvalidBody
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		switch fe.Tag() {
		case "in_mobile":
			msgs = append(msgs, phone.InvalidMessage)
		case "otp_digits":
			msgs = append(msgs, errOTPFormat)
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", jsonName(fe.Field())))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", jsonName(fe.Field())))
		}
	}
	return strings.Join(msgs, "; ")
}

func jsonName(field string) string {
	switch field {
	case "MobileNumber":
		return "mobile_number"
	case "OTPCode":
		return "otp_code"
	default:
		return strings.ToLower(field)
	}
}
