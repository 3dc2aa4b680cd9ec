package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"crm-service/internal/models"
)

// fakeUserStore keeps users in memory for service tests
type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (s *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	if _, exists := s.users[user.Username]; exists {
		return gorm.ErrDuplicatedKey
	}
	user.ID = uuid.New()
	s.users[user.Username] = user
	return nil
}

func (s *fakeUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestAuthService() (*AuthService, *fakeUserStore) {
	store := newFakeUserStore()
	svc := NewAuthService(store, newTestJWTService(), NewPasswordService(), nil)
	return svc, store
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "sturdy-pass1",
		PasswordConfirm: "sturdy-pass1",
	}
}

func TestRegister(t *testing.T) {
	svc, store := newTestAuthService()

	user, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.IsOrganizer)
	assert.NotEqual(t, "sturdy-pass1", user.PasswordHash)
	assert.Contains(t, store.users, "alice")
}

func TestRegister_PasswordMismatch(t *testing.T) {
	svc, _ := newTestAuthService()

	req := validRegistration()
	req.PasswordConfirm = "something-else1"

	_, err := svc.Register(context.Background(), req)
	verr, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "password", verr.Field)
	assert.Equal(t, "Password fields didn't match.", verr.Message)
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _ := newTestAuthService()

	req := validRegistration()
	req.Password = "short1"
	req.PasswordConfirm = "short1"

	_, err := svc.Register(context.Background(), req)
	verr, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "password", verr.Field)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validRegistration())
	verr, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "username", verr.Field)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	pair, err := svc.Login(context.Background(), "alice", "sturdy-pass1")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "alice", "wrong-password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Login(context.Background(), "nobody", "whatever1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	pair, err := svc.Login(context.Background(), "alice", "sturdy-pass1")
	require.NoError(t, err)

	fresh, err := svc.Refresh(context.Background(), pair.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.Access)
	assert.NotEmpty(t, fresh.Refresh)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	pair, err := svc.Login(context.Background(), "alice", "sturdy-pass1")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.Access)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
