package sms

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/twilio/twilio-go"

	"github.com/ErlanBelekov/mobile-signup/config"
)

// Sender delivers a verification code. Send reports whether the gateway
// accepted the message; failures are logged by the sender, never returned.
type Sender interface {
	Send(ctx context.Context, to, code string) bool
}

func messageBody(code string) string {
	return fmt.Sprintf("Your DRS Verification Code is: %s", code)
}

// LogSender writes codes to the log instead of sending them (MOCK_SMS_MODE).
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger.With("component", "sms", "provider", "mock")}
}

func (s *LogSender) Send(ctx context.Context, to, code string) bool {
	s.logger.InfoContext(ctx, "mock sms", "to", to, "code", code)
	return true
}

// NewSender returns a LogSender in mock mode, otherwise the configured gateway.
func NewSender(ctx context.Context, cfg config.SMSConfig, logger *slog.Logger) (Sender, error) {
	if cfg.MockMode {
		return NewLogSender(logger), nil
	}

	switch cfg.Provider {
	case "sns":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SNSRegion))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return NewSNSSender(sns.NewFromConfig(awsCfg), logger), nil
	default:
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
		return NewTwilioSender(client.Api, cfg.TwilioPhoneNumber, logger), nil
	}
}
