package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key, err := s.Upload(ctx, strings.NewReader("hello"), "attendance/2024/01/a.csv", "text/csv")
	require.NoError(t, err)
	assert.Equal(t, "attendance/2024/01/a.csv", key)

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(body))

	require.NoError(t, s.Delete(ctx, key))
	exists, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	// deleting twice is not an error
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocalStorage_RejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"../outside.txt", "a/../../outside.txt", "."} {
		_, err := s.Upload(ctx, strings.NewReader("x"), p, "text/plain")
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
}

func TestLocalStorage_List(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	files, err := s.List(ctx, "attendance")
	require.NoError(t, err)
	assert.Empty(t, files)

	for _, p := range []string{"attendance/2024/01/a.csv", "attendance/2024/02/b.xlsx", "other/c.txt"} {
		_, err := s.Upload(ctx, strings.NewReader("data"), p, "text/plain")
		require.NoError(t, err)
	}

	files, err = s.List(ctx, "attendance")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "attendance/2024/01/a.csv", files[0].Key)
	assert.Equal(t, "attendance/2024/02/b.xlsx", files[1].Key)
	assert.Equal(t, int64(4), files[0].Size)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = s.List(ctx, "../elsewhere")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
