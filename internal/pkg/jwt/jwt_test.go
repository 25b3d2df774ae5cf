package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUploadToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, expiresAt, err := svc.GenerateUploadToken("hr-bot", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), expiresAt, 5)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "hr-bot", decoded.Subject())
	scope, ok := decoded.Get("scope")
	require.True(t, ok)
	assert.Equal(t, ScopeUpload, scope)
}

func TestStreamToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, expiresIn, err := svc.GenerateStreamToken("viewer")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	subject, err := svc.ValidateStreamToken(token)
	require.NoError(t, err)
	assert.Equal(t, "viewer", subject)

	upload, _, err := svc.GenerateUploadToken("viewer", time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateStreamToken(upload)
	assert.Error(t, err)

	other := NewJWTService("another-secret", time.Hour)
	_, err = other.ValidateStreamToken(token)
	assert.Error(t, err)
}
