package cron

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/storage"
	"github.com/cmlabs-hris/leave-analyzer/internal/service/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler(context.Background())

	var calls []string
	require.NoError(t, s.AddJob("first", time.Hour, func(ctx context.Context) error {
		calls = append(calls, "first")
		return nil
	}))
	require.NoError(t, s.AddJob("second", time.Hour, func(ctx context.Context) error {
		calls = append(calls, "second")
		return errors.New("boom")
	}))

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "second: boom")
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestScheduler_RejectsNonPositiveInterval(t *testing.T) {
	s := NewScheduler(context.Background())
	assert.Error(t, s.AddJob("never", 0, func(ctx context.Context) error { return nil }))
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler(context.Background())

	var runs atomic.Int32
	ran := make(chan struct{}, 1)
	require.NoError(t, s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}))

	s.Start()
	s.Start()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()
	assert.Equal(t, int32(1), runs.Load())
}

func TestArchiveJobs_PurgeExpiredArchives(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	local, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	files := file.NewFileService(local)

	oldKey, err := files.ArchiveSpreadsheet(ctx, strings.NewReader("old"), "old.xlsx", time.Now())
	require.NoError(t, err)
	keepKey, err := files.ArchiveSpreadsheet(ctx, strings.NewReader("keep"), "keep.xlsx", time.Now())
	require.NoError(t, err)

	past := time.Now().Add(-100 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, filepath.FromSlash(oldKey)), past, past))

	jobs := NewArchiveJobs(files, 90*24*time.Hour)
	s := NewScheduler(ctx)
	require.NoError(t, jobs.RegisterJobs(s, time.Hour))
	require.NoError(t, s.RunOnce(ctx))

	exists, err := local.Exists(ctx, oldKey)
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = local.Exists(ctx, keepKey)
	require.NoError(t, err)
	assert.True(t, exists)
}
