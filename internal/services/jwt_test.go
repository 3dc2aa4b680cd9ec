package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-service/internal/config"
	"crm-service/internal/models"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		AccessSecret:       "test-access-secret",
		RefreshSecret:      "test-refresh-secret",
		AccessExpiryMins:   60,
		RefreshExpiryHours: 24,
	})
}

func newTestUser() *models.User {
	return &models.User{
		ID:       uuid.New(),
		Username: "alice",
		Email:    "alice@example.com",
	}
}

func TestGenerateTokens(t *testing.T) {
	svc := newTestJWTService()
	user := newTestUser()

	pair, err := svc.GenerateTokens(user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)
}

func TestValidateAccessToken(t *testing.T) {
	svc := newTestJWTService()
	user := newTestUser()

	pair, err := svc.GenerateTokens(user)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
}

func TestValidateAccessToken_RejectsRefreshToken(t *testing.T) {
	svc := newTestJWTService()
	user := newTestUser()

	pair, err := svc.GenerateTokens(user)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.Refresh)
	assert.Error(t, err)
}

func TestValidateRefreshToken_RejectsAccessToken(t *testing.T) {
	svc := newTestJWTService()
	user := newTestUser()

	pair, err := svc.GenerateTokens(user)
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(pair.Access)
	assert.Error(t, err)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	svc := newTestJWTService()

	_, err := svc.ValidateAccessToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	user := newTestUser()

	other := NewJWTService(config.JWTConfig{
		AccessSecret:       "different-secret",
		RefreshSecret:      "test-refresh-secret",
		AccessExpiryMins:   60,
		RefreshExpiryHours: 24,
	})
	pair, err := other.GenerateTokens(user)
	require.NoError(t, err)

	svc := newTestJWTService()
	_, err = svc.ValidateAccessToken(pair.Access)
	assert.Error(t, err)
}

func TestAccessTokenExpiry(t *testing.T) {
	svc := newTestJWTService()
	user := newTestUser()

	pair, err := svc.GenerateTokens(user)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.Access)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)

	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, 59*time.Minute)
	assert.LessOrEqual(t, remaining, 60*time.Minute)
}
