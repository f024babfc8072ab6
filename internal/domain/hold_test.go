package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeatHold_Usable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		hold SeatHold
		want bool
	}{
		{
			name: "active and unexpired",
			hold: SeatHold{Status: HoldActive, ExpiresAt: now.Add(time.Minute)},
			want: true,
		},
		{
			name: "active but expired",
			hold: SeatHold{Status: HoldActive, ExpiresAt: now.Add(-time.Minute)},
			want: false,
		},
		{
			name: "expires exactly now",
			hold: SeatHold{Status: HoldActive, ExpiresAt: now},
			want: false,
		},
		{
			name: "already confirmed",
			hold: SeatHold{Status: HoldConfirmed, ExpiresAt: now.Add(time.Minute)},
			want: false,
		},
		{
			name: "released",
			hold: SeatHold{Status: HoldReleased, ExpiresAt: now.Add(time.Minute)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.hold.Usable(now))
		})
	}
}
