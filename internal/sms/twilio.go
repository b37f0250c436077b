package sms

import (
	"context"
	"errors"
	"log/slog"

	twilioclient "github.com/twilio/twilio-go/client"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// messageCreator is satisfied by *twilioapi.ApiService.
type messageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

type TwilioSender struct {
	api    messageCreator
	from   string
	logger *slog.Logger
}

func NewTwilioSender(api messageCreator, from string, logger *slog.Logger) *TwilioSender {
	return &TwilioSender{
		api:    api,
		from:   from,
		logger: logger.With("component", "sms", "provider", "twilio"),
	}
}

// Send ignores ctx: the Twilio client has no context-aware call. The
// dispatcher bounds it with its own timeout.
func (s *TwilioSender) Send(ctx context.Context, to, code string) bool {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(messageBody(code))

	msg, err := s.api.CreateMessage(params)
	if err != nil {
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) {
			s.logger.ErrorContext(ctx, "twilio rejected sms",
				"to", to, "status", restErr.Status, "code", restErr.Code, "error", restErr.Message)
			return false
		}
		s.logger.ErrorContext(ctx, "send sms", "to", to, "error", err)
		return false
	}

	sid := ""
	if msg != nil && msg.Sid != nil {
		sid = *msg.Sid
	}
	s.logger.InfoContext(ctx, "sms sent", "to", to, "sid", sid)
	return true
}
