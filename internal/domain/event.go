package domain

import "time"

type EventType string

const (
	EventTypeIndividual EventType = "individual"
	EventTypeTeam       EventType = "team"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type EventStatus string

const (
	EventActive   EventStatus = "active"
	EventInactive EventStatus = "inactive"
)

type Event struct {
	ID                   uint           `json:"id"`
	HostID               uint           `json:"host_id"`
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	StartsAt             time.Time      `json:"starts_at"`
	Location             string         `json:"location"`
	Category             string         `json:"category"`
	ImageURL             string         `json:"image_url,omitempty"`
	Price                int64          `json:"price"` // smallest currency unit
	MaxAttendees         int            `json:"max_attendees"`
	RegistrationDeadline *time.Time     `json:"registration_deadline,omitempty"`
	MaxTicketsPerUser    int            `json:"max_tickets_per_user"`
	AllowCancellation    bool           `json:"allow_cancellation"`
	EventType            EventType      `json:"event_type"`
	TeamSize             *int           `json:"team_size,omitempty"`
	ApprovalStatus       ApprovalStatus `json:"approval_status"`
	Status               EventStatus    `json:"status"`
	SeatsTaken           int            `json:"seats_taken"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// IsFree reports whether registrations commit without a payment step.
func (e *Event) IsFree() bool {
	return e.Price == 0
}

// IsRegisterable reports whether the event accepts registrations at the
// given instant: approved by an admin, activated by its host, and not
// past its registration deadline.
func (e *Event) IsRegisterable(at time.Time) bool {
	if e.ApprovalStatus != ApprovalApproved || e.Status != EventActive {
		return false
	}
	if e.RegistrationDeadline != nil && at.After(*e.RegistrationDeadline) {
		return false
	}
	return true
}

// RemainingSeats is the capacity left after committed registrations.
// Active holds are accounted for at the storage layer.
func (e *Event) RemainingSeats() int {
	remaining := e.MaxAttendees - e.SeatsTaken
	if remaining < 0 {
		return 0
	}
	return remaining
}
