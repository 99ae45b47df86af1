package notification

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type mailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridNotifier emails operator-facing events to the operations inbox.
type SendGridNotifier struct {
	client    mailSender
	fromEmail string
	fromName  string
	opsEmail  string
}

func NewSendGridNotifier(apiKey, fromEmail, fromName, opsEmail string) *SendGridNotifier {
	return &SendGridNotifier{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		opsEmail:  opsEmail,
	}
}

func (s *SendGridNotifier) Name() string { return "sendgrid" }

func (s *SendGridNotifier) Notify(ctx context.Context, ev Event) error {
	if ev.Type.FarmerFacing() || s.opsEmail == "" {
		return nil
	}
	subject, body := ev.Message()
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("Operations", s.opsEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "<p>"+body+"</p>")

	response, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}
