package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendDispatcher sends e-mail through Resend
type ResendDispatcher struct {
	client *resend.Client
	from   string
}

// NewResendDispatcher creates a ResendDispatcher
func NewResendDispatcher(apiKey, from string) *ResendDispatcher {
	return &ResendDispatcher{
		client: resend.NewCustomClient(&http.Client{Timeout: 10 * time.Second}, apiKey),
		from:   from,
	}
}

// Send implements Dispatcher
func (d *ResendDispatcher) Send(ctx context.Context, n Notification) error {
	_, err := d.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    d.from,
		To:      []string{n.To},
		Subject: Subject(n.Status),
		Text:    Body(n),
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", n.To, err)
	}
	return nil
}
