package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventure/eventure-api/internal/domain"
	"github.com/eventure/eventure-api/internal/repository"
)

type fakeAuthUserRepo struct {
	byEmail map[string]domain.User
	grants  map[uint][]domain.Role
	nextID  uint
}

func newFakeAuthUserRepo() *fakeAuthUserRepo {
	return &fakeAuthUserRepo{
		byEmail: make(map[string]domain.User),
		grants:  make(map[uint][]domain.Role),
		nextID:  1,
	}
}

func (f *fakeAuthUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	if _, ok := f.byEmail[user.Email]; ok {
		return domain.User{}, repository.ErrUserEmailExists
	}
	user.ID = f.nextID
	f.nextID++
	f.byEmail[user.Email] = user
	return user, nil
}

func (f *fakeAuthUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	user.Roles = f.grants[user.ID]
	return user, nil
}

func (f *fakeAuthUserRepo) GrantRole(_ context.Context, userID uint, role domain.Role) error {
	f.grants[userID] = append(f.grants[userID], role)
	return nil
}

func TestAuthService_Signup(t *testing.T) {
	repo := newFakeAuthUserRepo()
	svc := NewAuthService(repo)

	created, err := svc.Signup(context.Background(), domain.User{
		Email:    "jamie@example.com",
		Password: "password1",
		Name:     "Jamie",
	}, false)
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.NotEqual(t, "password1", created.Password, "password is stored hashed")
	assert.Empty(t, created.Roles)
}

func TestAuthService_Signup_AsHost(t *testing.T) {
	repo := newFakeAuthUserRepo()
	svc := NewAuthService(repo)

	created, err := svc.Signup(context.Background(), domain.User{
		Email:    "jamie@example.com",
		Password: "password1",
		Name:     "Jamie",
	}, true)
	require.NoError(t, err)

	assert.Contains(t, created.Roles, domain.RoleHost)
	assert.NotContains(t, created.Roles, domain.RoleAdmin)
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	repo := newFakeAuthUserRepo()
	svc := NewAuthService(repo)

	user := domain.User{Email: "jamie@example.com", Password: "password1"}

	_, err := svc.Signup(context.Background(), user, false)
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), user, false)
	assert.ErrorIs(t, err, ErrUserEmailExists)
}

func TestAuthService_Login(t *testing.T) {
	repo := newFakeAuthUserRepo()
	svc := NewAuthService(repo)

	_, err := svc.Signup(context.Background(), domain.User{
		Email:    "jamie@example.com",
		Password: "password1",
	}, false)
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), "jamie@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "jamie@example.com", user.Email)

	_, err = svc.Login(context.Background(), "jamie@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.Login(context.Background(), "nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
