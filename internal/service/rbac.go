package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventure/eventure-api/internal/domain"
)

var (
	// ErrUnauthenticated is rejected before any business check runs.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the caller is known but not allowed; it is
	// deliberately distinct from not-found.
	ErrForbidden = errors.New("permission denied")
)

type RoleReader interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

// Gate maps an authenticated identity to its role set and decides
// whether an action is permitted. Identity is always passed in
// explicitly; the gate holds no ambient session state.
type Gate struct {
	users RoleReader
}

func NewGate(users RoleReader) *Gate {
	return &Gate{
		users: users,
	}
}

func (g *Gate) HasRole(ctx context.Context, userID uint, role domain.Role) (bool, error) {
	if userID == 0 {
		return false, ErrUnauthenticated
	}
	if role == domain.RoleAttendee {
		// Every authenticated identity qualifies as an attendee.
		return true, nil
	}

	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("g.users.FindByID -> %w", err)
	}

	return user.HasRole(role), nil
}

// Require resolves the caller and fails with ErrForbidden when the
// role is missing.
func (g *Gate) Require(ctx context.Context, userID uint, role domain.Role) error {
	allowed, err := g.HasRole(ctx, userID, role)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: user %v lacks role %q", ErrForbidden, userID, role)
	}

	return nil
}
