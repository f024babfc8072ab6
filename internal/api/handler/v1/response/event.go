package response

// SeatsResponse is the live remaining-seat count clients re-fetch
// after losing a capacity race.
type SeatsResponse struct {
	EventID        uint `json:"event_id"`
	RemainingSeats int  `json:"remaining_seats"`
}

type ImageResponse struct {
	ImageURL string `json:"image_url"`
}

// EventFullResponse is the 409 payload for a lost capacity race. It
// carries the live count so clients can re-render without a second
// request.
type EventFullResponse struct {
	Error          string `json:"error"`
	RemainingSeats int    `json:"remaining_seats"`
}
