package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/leave-analyzer/internal/service/file"
)

// ArchiveJobs removes archived attendance spreadsheets once they are older
// than the retention period.
type ArchiveJobs struct {
	files     file.FileService
	retention time.Duration
	now       func() time.Time
}

func NewArchiveJobs(files file.FileService, retention time.Duration) *ArchiveJobs {
	return &ArchiveJobs{
		files:     files,
		retention: retention,
		now:       time.Now,
	}
}

func (j *ArchiveJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) error {
	return scheduler.AddJob("purge_archived_spreadsheets", interval, j.PurgeExpiredArchives)
}

func (j *ArchiveJobs) PurgeExpiredArchives(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)

	removed, err := j.files.PurgeArchives(ctx, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		slog.Info("Cron: purged archived spreadsheets", "removed", removed, "cutoff", cutoff.Format(time.RFC3339))
	}
	return nil
}
