package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute)

	token, err := svc.Issue("firebase|abc123", "owner@example.com", "Ada Owner")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	identity, err := svc.Verify(context.Background(), token)

	require.NoError(t, err)
	assert.Equal(t, "firebase|abc123", identity.Subject)
	assert.Equal(t, "owner@example.com", identity.Email)
	assert.Equal(t, "Ada Owner", identity.Name)
}

func TestJWTService_Verify_WrongSecret(t *testing.T) {
	svc1 := NewJWTService("secret-1", 15*time.Minute)
	svc2 := NewJWTService("secret-2", 15*time.Minute)

	token, err := svc1.Issue("subject", "test@example.com", "")
	require.NoError(t, err)

	_, err = svc2.Verify(context.Background(), token)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse token")
}

func TestJWTService_Verify_Expired(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute)

	token, err := svc.Issue("subject", "test@example.com", "")
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), token)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse token")
}

func TestJWTService_Verify_MissingSubject(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute)

	token, err := svc.Issue("", "test@example.com", "")
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), token)

	assert.Error(t, err)
}

func TestJWTService_Verify_MalformedToken(t *testing.T) {
	svc := NewJWTService("test-secret", 15*time.Minute)

	testCases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt-token"},
		{"partial jwt", "eyJhbGciOiJIUzI1NiJ9."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Verify(context.Background(), tc.token)
			assert.Error(t, err)
		})
	}
}
