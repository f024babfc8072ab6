package domain

// Payment methods accepted at registration time for paid events.
const (
	PaymentMethodUPI  = "upi"
	PaymentMethodCard = "card"
)

// PaymentOutcome is what the payment processor returns for a successful
// charge.
type PaymentOutcome struct {
	TransactionID string `json:"transaction_id"`
}
