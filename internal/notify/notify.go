// Package notify delivers PTO request status messages to employees.
// Delivery is best effort: callers log failures and carry on.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/pto-approval-api/internal/models"
	"github.com/yukikurage/pto-approval-api/internal/utils"
)

// Notification is one message about a request
type Notification struct {
	To        string
	UserName  string
	StartDate time.Time
	EndDate   time.Time
	Status    models.RequestStatus
	Message   string
	Notes     string
}

// Dispatcher sends notifications
type Dispatcher interface {
	Send(ctx context.Context, n Notification) error
}

// Subject returns the message subject for a status
func Subject(status models.RequestStatus) string {
	if status == models.RequestStatusPending {
		return "PTO Request Submitted"
	}
	return fmt.Sprintf("PTO Request %s", status)
}

// Body renders the plain-text message body
func Body(n Notification) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s,\n\n", n.UserName)
	if n.Message != "" {
		b.WriteString(n.Message)
	} else if n.Status == models.RequestStatusPending {
		b.WriteString("Your PTO request has been submitted for review.")
	} else {
		fmt.Fprintf(&b, "Your PTO request has been %s.", strings.ToLower(string(n.Status)))
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Start Date: %s\n", utils.FormatDate(n.StartDate))
	fmt.Fprintf(&b, "End Date: %s\n", utils.FormatDate(n.EndDate))
	if n.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", n.Notes)
	}
	b.WriteString("\n")

	switch n.Status {
	case models.RequestStatusPending:
		b.WriteString("You will be notified when your request has been reviewed.")
	case models.RequestStatusApproved:
		b.WriteString("Enjoy your time off!")
	case models.RequestStatusDenied:
		b.WriteString("Please contact your manager if you have any questions.")
	}
	b.WriteString("\n")

	return b.String()
}

// LogDispatcher writes notifications to the application log. It is the
// fallback when no delivery channel is configured.
type LogDispatcher struct {
	logger *logrus.Logger
}

// NewLogDispatcher creates a LogDispatcher
func NewLogDispatcher(logger *logrus.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

// Send implements Dispatcher
func (d *LogDispatcher) Send(_ context.Context, n Notification) error {
	d.logger.WithFields(logrus.Fields{
		"to":      n.To,
		"status":  n.Status,
		"subject": Subject(n.Status),
		"start":   utils.FormatDate(n.StartDate),
		"end":     utils.FormatDate(n.EndDate),
	}).Info(n.Message)
	return nil
}

// Multi fans a notification out to several dispatchers
type Multi []Dispatcher

// Send delivers to every dispatcher and joins their errors
func (m Multi) Send(ctx context.Context, n Notification) error {
	var errs []error
	for _, d := range m {
		if err := d.Send(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
