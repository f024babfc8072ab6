package domain

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// PaymentMethodNone marks registrations for free events, which never
// touch the payment processor.
const PaymentMethodNone = "N/A"

type Registration struct {
	ID             uint          `json:"id"`
	EventID        uint          `json:"event_id"`
	UserID         uint          `json:"user_id"`
	TicketCode     string        `json:"ticket_code"`
	TicketCount    int           `json:"ticket_count"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	PaymentMethod  string        `json:"payment_method"`
	TransactionID  string        `json:"transaction_id,omitempty"`
	ContactNumber  string        `json:"contact_number"`
	SpecialRequest string        `json:"special_request,omitempty"`
	RegisteredAt   time.Time     `json:"registered_at"`
}
