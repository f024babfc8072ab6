package request

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

var contactNumberRegex = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

type RegisterRequest struct {
	TicketCount    int    `json:"ticket_count"`
	PaymentMethod  string `json:"payment_method,omitempty"`
	ContactNumber  string `json:"contact_number"`
	SpecialRequest string `json:"special_request,omitempty"`
}

func (req *RegisterRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TicketCount, validation.Required, validation.Min(1)),
		validation.Field(&req.PaymentMethod, validation.In("upi", "card")),
		validation.Field(&req.ContactNumber, validation.Required, validation.Match(contactNumberRegex)),
		validation.Field(&req.SpecialRequest, validation.Length(0, 500)),
	)
}
