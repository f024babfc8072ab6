package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_HasRole(t *testing.T) {
	tests := []struct {
		name  string
		roles []Role
		role  Role
		want  bool
	}{
		{name: "attendee is implicit", roles: nil, role: RoleAttendee, want: true},
		{name: "host without grant", roles: nil, role: RoleHost, want: false},
		{name: "host with grant", roles: []Role{RoleHost}, role: RoleHost, want: true},
		{name: "admin without grant", roles: []Role{RoleHost}, role: RoleAdmin, want: false},
		{name: "admin with grant", roles: []Role{RoleHost, RoleAdmin}, role: RoleAdmin, want: true},
		{name: "admin is not implicitly host", roles: []Role{RoleAdmin}, role: RoleHost, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := User{Roles: tt.roles}

			assert.Equal(t, tt.want, u.HasRole(tt.role))
		})
	}
}
