package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	svc := NewPasswordService()

	hash, err := svc.HashPassword("correct-horse-9")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse-9", hash)

	assert.NoError(t, svc.VerifyPassword("correct-horse-9", hash))
	assert.Error(t, svc.VerifyPassword("wrong-password-1", hash))
}

func TestValidatePasswordStrength(t *testing.T) {
	svc := NewPasswordService()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid", password: "sturdy-pass1", wantErr: false},
		{name: "too short", password: "abc1", wantErr: true},
		{name: "entirely numeric", password: "12345678", wantErr: true},
		{name: "no digit", password: "justletters", wantErr: true},
		{name: "exactly eight chars", password: "abcdefg1", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidatePasswordStrength(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerateAPIKey(t *testing.T) {
	a, err := GenerateAPIKey()
	require.NoError(t, err)
	b, err := GenerateAPIKey()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
