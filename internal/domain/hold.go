package domain

import "time"

type HoldStatus string

const (
	HoldActive    HoldStatus = "active"
	HoldConfirmed HoldStatus = "confirmed"
	HoldReleased  HoldStatus = "released"
	HoldExpired   HoldStatus = "expired"
)

// SeatHold is a provisional capacity reservation made while a paid
// registration waits for its payment outcome. A hold counts against
// event capacity until it is confirmed into a Registration, released
// after a declined payment, or reaped once ExpiresAt passes.
type SeatHold struct {
	ID          uint       `json:"id"`
	Token       string     `json:"token"`
	EventID     uint       `json:"event_id"`
	UserID      uint       `json:"user_id"`
	TicketCount int        `json:"ticket_count"`
	Status      HoldStatus `json:"status"`
	ExpiresAt   time.Time  `json:"expires_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Usable reports whether the hold can still be confirmed at the given
// instant.
func (h *SeatHold) Usable(at time.Time) bool {
	return h.Status == HoldActive && at.Before(h.ExpiresAt)
}
