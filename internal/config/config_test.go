package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"DB_PORT", "APP_PORT", "DB_NAME", "JWT_SECRET_KEY", "STORAGE_TYPE", "CORS_ALLOWED_ORIGINS", "UPLOAD_MAX_BYTES", "JWT_UPLOAD_EXPIRATION_TIME", "STORAGE_RETENTION"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, 24*time.Hour, cfg.JWT.UploadExpiration)
	assert.Equal(t, 90*24*time.Hour, cfg.Storage.Retention)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.AuthEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "hr")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "attendance")
	t.Setenv("JWT_SECRET_KEY", "k")
	t.Setenv("STORAGE_TYPE", "none")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "postgres://hr:secret@db:6543/attendance?sslmode=disable", cfg.DatabaseURL())
}

func TestLoad_Invalid(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("APP_PORT", "http")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("APP_PORT", "8080")
	t.Setenv("STORAGE_TYPE", "s3")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("STORAGE_TYPE", "local")
	t.Setenv("STORAGE_RETENTION", "-1h")
	_, err = Load()
	assert.Error(t, err)
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
