package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TicketNotice is the payload handed to the notification collaborator
// after a registration commits.
type TicketNotice struct {
	EventTitle string
	TicketCode string
	EventDate  time.Time
	Recipient  string
}

// Notifier delivers ticket confirmations. Delivery is fire-and-forget:
// a failure is logged and never rolls back the registration.
type Notifier interface {
	TicketIssued(ctx context.Context, notice TicketNotice) error
}

// LogNotifier writes the confirmation to the application log. It
// stands in for the outbound email collaborator.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) TicketIssued(_ context.Context, notice TicketNotice) error {
	zap.L().Info("ticket issued",
		zap.String("event", notice.EventTitle),
		zap.String("ticket_code", notice.TicketCode),
		zap.Time("event_date", notice.EventDate),
		zap.String("recipient", notice.Recipient),
	)

	return nil
}
