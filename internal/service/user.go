package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventure/eventure-api/internal/domain"
	"github.com/eventure/eventure-api/internal/repository"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	GrantRole(ctx context.Context, userID uint, role domain.Role) error
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrUserNotFound
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

// GrantRole records an explicit host or admin grant; only an admin may
// call it (enforced by the authorization gate at the boundary).
func (s *UserService) GrantRole(ctx context.Context, userID uint, role domain.Role) error {
	if role != domain.RoleHost && role != domain.RoleAdmin {
		return fmt.Errorf("%w: role %q cannot be granted", ErrValidation, role)
	}

	if err := s.repo.GrantRole(ctx, userID, role); err != nil {
		return fmt.Errorf("s.repo.GrantRole -> %w", err)
	}

	return nil
}
