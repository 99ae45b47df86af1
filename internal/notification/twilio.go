package notification

import (
	"context"
	"fmt"
	"strings"

	"agrirent-backend/internal/logger"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type smsSender interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioNotifier texts the delivery receiver about farmer-facing events.
type TwilioNotifier struct {
	api  smsSender
	from string
}

func NewTwilioNotifier(accountSid, authToken, fromNumber string) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   accountSid,
		Password:   authToken,
		AccountSid: accountSid,
	})
	return &TwilioNotifier{api: client.Api, from: fromNumber}
}

func (t *TwilioNotifier) Name() string { return "twilio" }

func (t *TwilioNotifier) Notify(ctx context.Context, ev Event) error {
	to := ev.Request.ReceiverPhone
	if !ev.Type.FarmerFacing() || to == "" {
		return nil
	}
	if !strings.HasPrefix(to, "+") {
		logger.Warn("Receiver phone is not E.164, SMS may fail", "rentalID", ev.Request.ID)
	}

	_, body := ev.Message()
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	if _, err := t.api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}
