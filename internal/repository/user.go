package repository

import (
	"context"
	"fmt"

	"github.com/eventure/eventure-api/internal/domain"
	"github.com/eventure/eventure-api/internal/repository/dao"
)

var (
	ErrUserEmailExists = dao.ErrUserEmailExists
	ErrUserNotFound    = dao.ErrUserNotFound
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindByEmail(ctx context.Context, email string) (dao.User, error)
	GrantRole(ctx context.Context, userID uint, role string) error
	FindRoles(ctx context.Context, userID uint) ([]string, error)
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func (r *UserRepository) domainToDao(u domain.User) dao.User {
	return dao.User{
		ID:            u.ID,
		Email:         u.Email,
		Password:      u.Password,
		Name:          u.Name,
		ContactNumber: u.ContactNumber,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (r *UserRepository) daoToDomain(u dao.User) domain.User {
	return domain.User{
		ID:            u.ID,
		Email:         u.Email,
		Password:      u.Password,
		Name:          u.Name,
		ContactNumber: u.ContactNumber,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(user))
	if err != nil {
		if err == dao.ErrUserEmailExists {
			return domain.User{}, ErrUserEmailExists
		}
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	user, err := r.dao.FindByID(ctx, id)
	if err != nil {
		if err == dao.ErrUserNotFound {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	found := r.daoToDomain(user)
	roles, err := r.Roles(ctx, found.ID)
	if err != nil {
		return domain.User{}, err
	}
	found.Roles = roles

	return found, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	user, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		if err == dao.ErrUserNotFound {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	found := r.daoToDomain(user)
	roles, err := r.Roles(ctx, found.ID)
	if err != nil {
		return domain.User{}, err
	}
	found.Roles = roles

	return found, nil
}

func (r *UserRepository) GrantRole(ctx context.Context, userID uint, role domain.Role) error {
	if err := r.dao.GrantRole(ctx, userID, string(role)); err != nil {
		return fmt.Errorf("r.dao.GrantRole -> %w", err)
	}

	return nil
}

func (r *UserRepository) Roles(ctx context.Context, userID uint) ([]domain.Role, error) {
	granted, err := r.dao.FindRoles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindRoles -> %w", err)
	}

	roles := make([]domain.Role, len(granted))
	for i, g := range granted {
		roles[i] = domain.Role(g)
	}

	return roles, nil
}
