package sms

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/smithy-go"
)

// publisher is satisfied by *sns.Client.
type publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSSender struct {
	client publisher
	logger *slog.Logger
}

func NewSNSSender(client publisher, logger *slog.Logger) *SNSSender {
	return &SNSSender{
		client: client,
		logger: logger.With("component", "sms", "provider", "sns"),
	}
}

func (s *SNSSender) Send(ctx context.Context, to, code string) bool {
	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(messageBody(code)),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			s.logger.ErrorContext(ctx, "sns rejected sms",
				"to", to, "code", apiErr.ErrorCode(), "error", apiErr.ErrorMessage())
			return false
		}
		s.logger.ErrorContext(ctx, "send sms", "to", to, "error", err)
		return false
	}

	s.logger.InfoContext(ctx, "sms sent", "to", to, "message_id", aws.ToString(out.MessageId))
	return true
}
