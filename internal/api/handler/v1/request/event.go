package request

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateEventRequest struct {
	Title                string `json:"title"`
	Description          string `json:"description"`
	StartsAt             string `json:"starts_at" format:"RFC3339"`
	Location             string `json:"location"`
	Category             string `json:"category"`
	Price                int64  `json:"price"`
	MaxAttendees         int    `json:"max_attendees"`
	RegistrationDeadline string `json:"registration_deadline,omitempty" format:"RFC3339"`
	MaxTicketsPerUser    int    `json:"max_tickets_per_user,omitempty"`
	AllowCancellation    bool   `json:"allow_cancellation"`
	EventType            string `json:"event_type"`
	TeamSize             *int   `json:"team_size,omitempty"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.StartsAt, validation.Required, validation.By(validRFC3339)),
		validation.Field(&req.Location, validation.Required, validation.Length(2, 200)),
		validation.Field(&req.Category, validation.Required, validation.Length(2, 50)),
		validation.Field(&req.Price, validation.Min(int64(0))),
		validation.Field(&req.MaxAttendees, validation.Required, validation.Min(1)),
		validation.Field(&req.RegistrationDeadline, validation.By(optionalRFC3339)),
		validation.Field(&req.MaxTicketsPerUser, validation.Min(0)),
		validation.Field(&req.EventType, validation.Required, validation.In("individual", "team")),
	)
}

func validRFC3339(value interface{}) error {
	s, _ := value.(string)
	if _, err := time.Parse(time.RFC3339, s); err != nil {
		return fmt.Errorf("must be an RFC3339 timestamp")
	}
	return nil
}

func optionalRFC3339(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	return validRFC3339(value)
}

type DecisionRequest struct {
	Decision string `json:"decision"`
}

func (req *DecisionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Decision, validation.Required, validation.In("approve", "reject")),
	)
}

type StatusRequest struct {
	Active *bool `json:"active"`
}

func (req *StatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Active, validation.NotNil),
	)
}
