package handler

const (
	errInternalServer    = "Internal server error"
	errInvalidBody       = "Invalid request body"
	errAlreadyRegistered = "User already exists and is verified."
	errOTPExpired        = "OTP has expired or request is invalid."
	errOTPMismatch       = "Invalid OTP Code"
	errOTPFormat         = "OTP code must be exactly 6 digits"
	errUserNotFound      = "User not found"

	msgOTPSent = "OTP sent successfully. Please verify to complete registration."
)
