package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserEmailExists = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
)

type User struct {
	ID uint `gorm:"primaryKey"`

	Email    string `gorm:"unique;not null"`
	Password string `gorm:"not null"`

	Name          string `gorm:"not null"`
	ContactNumber string

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// RoleGrant records an explicit host or admin grant. The attendee role
// is implicit and never stored.
type RoleGrant struct {
	ID     uint   `gorm:"primaryKey"`
	UserID uint   `gorm:"not null;index;uniqueIndex:idx_role_grants_user_role"`
	Role   string `gorm:"not null;uniqueIndex:idx_role_grants_user_role"`

	CreatedAt time.Time `gorm:"not null"`
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) &&
			err.Code == pgerrcode.UniqueViolation &&
			strings.Contains(err.Message, `unique constraint "uni_users_email"`) {
			return User{}, ErrUserEmailExists
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByEmail(ctx context.Context, email string) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) GrantRole(ctx context.Context, userID uint, role string) error {
	grant := RoleGrant{UserID: userID, Role: role}

	result := d.db.WithContext(ctx).Create(&grant)
	if result.Error != nil {
		var err *pgconn.PgError
		if errors.As(result.Error, &err) && err.Code == pgerrcode.UniqueViolation {
			// Granting a role twice is a no-op.
			return nil
		}

		return result.Error
	}

	return nil
}

func (d *UserDAO) FindRoles(ctx context.Context, userID uint) ([]string, error) {
	var roles []string

	result := d.db.WithContext(ctx).
		Model(&RoleGrant{}).
		Where("user_id = ?", userID).
		Pluck("role", &roles)
	if result.Error != nil {
		return nil, result.Error
	}

	return roles, nil
}
