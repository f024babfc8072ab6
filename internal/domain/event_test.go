package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvent_IsRegisterable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{
			name:  "approved and active",
			event: Event{ApprovalStatus: ApprovalApproved, Status: EventActive},
			want:  true,
		},
		{
			name:  "pending approval",
			event: Event{ApprovalStatus: ApprovalPending, Status: EventActive},
			want:  false,
		},
		{
			name:  "rejected",
			event: Event{ApprovalStatus: ApprovalRejected, Status: EventActive},
			want:  false,
		},
		{
			name:  "deactivated by host",
			event: Event{ApprovalStatus: ApprovalApproved, Status: EventInactive},
			want:  false,
		},
		{
			name:  "deadline in the future",
			event: Event{ApprovalStatus: ApprovalApproved, Status: EventActive, RegistrationDeadline: &future},
			want:  true,
		},
		{
			name:  "deadline passed",
			event: Event{ApprovalStatus: ApprovalApproved, Status: EventActive, RegistrationDeadline: &past},
			want:  false,
		},
		{
			name:  "deadline exactly now",
			event: Event{ApprovalStatus: ApprovalApproved, Status: EventActive, RegistrationDeadline: &now},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.IsRegisterable(now))
		})
	}
}

func TestEvent_RemainingSeats(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  int
	}{
		{name: "empty event", event: Event{MaxAttendees: 100}, want: 100},
		{name: "partially full", event: Event{MaxAttendees: 100, SeatsTaken: 37}, want: 63},
		{name: "full", event: Event{MaxAttendees: 100, SeatsTaken: 100}, want: 0},
		{name: "never negative", event: Event{MaxAttendees: 100, SeatsTaken: 120}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.RemainingSeats())
		})
	}
}

func TestEvent_IsFree(t *testing.T) {
	free := Event{Price: 0}
	paid := Event{Price: 2500}

	assert.True(t, free.IsFree())
	assert.False(t, paid.IsFree())
}
