package domain

import "time"

type Role string

const (
	RoleAttendee Role = "attendee"
	RoleHost     Role = "host"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID            uint      `json:"id"`
	Email         string    `json:"email"`
	Password      string    `json:"-"`
	Name          string    `json:"name"`
	ContactNumber string    `json:"contact_number,omitempty"`
	Roles         []Role    `json:"roles"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasRole reports whether the user holds the given role. Every user is
// an attendee; host and admin are explicit grants.
func (u *User) HasRole(role Role) bool {
	if role == RoleAttendee {
		return true
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
