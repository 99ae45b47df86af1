package notification

import (
	"context"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type pushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushNotifier sends farmer-facing events to the FCM topic the farmer's app subscribes to.
type PushNotifier struct {
	client pushSender
}

func NewPushNotifier(ctx context.Context, credentialsFile string) (*PushNotifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging: %w", err)
	}
	return &PushNotifier{client: client}, nil
}

func FarmerTopic(farmerID int32) string {
	return "farmer-" + strconv.Itoa(int(farmerID))
}

func (p *PushNotifier) Name() string { return "fcm" }

func (p *PushNotifier) Notify(ctx context.Context, ev Event) error {
	if !ev.Type.FarmerFacing() {
		return nil
	}
	title, body := ev.Message()
	_, err := p.client.Send(ctx, &messaging.Message{
		Topic:        FarmerTopic(ev.Request.FarmerID),
		Notification: &messaging.Notification{Title: title, Body: body},
		Data: map[string]string{
			"event":      string(ev.Type),
			"rental_id":  strconv.Itoa(int(ev.Request.ID)),
			"status":     string(ev.Request.Status),
			"start_date": ev.Request.StartDate.String(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	return nil
}
