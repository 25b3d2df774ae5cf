package file

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveKey(t *testing.T) {
	at := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	key := ArchiveKey(at, "January Attendance.XLSX")

	assert.True(t, strings.HasPrefix(key, "attendance/2024/03/"), key)
	assert.True(t, strings.HasSuffix(key, ".xlsx"), key)
	assert.NotEqual(t, key, ArchiveKey(at, "January Attendance.XLSX"))
}

func TestArchiveSpreadsheet(t *testing.T) {
	ctx := context.Background()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewFileService(local)

	key, err := svc.ArchiveSpreadsheet(ctx, strings.NewReader("name,date\n"), "rows.csv", time.Now())
	require.NoError(t, err)

	rc, err := svc.OpenArchive(ctx, key)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "name,date\n", string(body))

	require.NoError(t, svc.DeleteFile(ctx, key))

	_, err = svc.ArchiveSpreadsheet(ctx, strings.NewReader("x"), "notes.txt", time.Now())
	assert.Error(t, err)
}

func TestPurgeArchives(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	local, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	svc := NewFileService(local)

	oldKey, err := svc.ArchiveSpreadsheet(ctx, strings.NewReader("old"), "old.csv", time.Now())
	require.NoError(t, err)
	newKey, err := svc.ArchiveSpreadsheet(ctx, strings.NewReader("new"), "new.csv", time.Now())
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, filepath.FromSlash(oldKey)), past, past))

	removed, err := svc.PurgeArchives(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	exists, err := local.Exists(ctx, oldKey)
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = local.Exists(ctx, newKey)
	require.NoError(t, err)
	assert.True(t, exists)
}
