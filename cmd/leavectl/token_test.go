package main

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_SignsUploadToken(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET_KEY", "cli-secret")
	tokenSubject, tokenTTL = "leavectl", 0

	stdout, stderr, err := runLeavectl(t, "token", "--subject", "payroll-bot", "--ttl", "1h")
	require.NoError(t, err)
	assert.Contains(t, stderr, "expires ")

	token, err := jwt.NewJWTService("cli-secret", time.Hour).JWTAuth().Decode(strings.TrimSpace(stdout))
	require.NoError(t, err)
	assert.Equal(t, "payroll-bot", token.Subject())

	scope, ok := token.Get("scope")
	require.True(t, ok)
	assert.Equal(t, jwt.ScopeUpload, scope)
}

func TestToken_RequiresSecret(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET_KEY", "")
	tokenSubject, tokenTTL = "leavectl", 0

	_, _, err := runLeavectl(t, "token")
	assert.ErrorContains(t, err, "JWT_SECRET_KEY")
}

// chdir changes the working directory for the duration of the test
// (testing.T.Chdir needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
