package file

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/storage"
	"github.com/google/uuid"
)

type FileService interface {
	// ArchiveSpreadsheet keeps a copy of an imported attendance spreadsheet
	// and returns its storage key.
	ArchiveSpreadsheet(ctx context.Context, file io.Reader, filename string, uploadedAt time.Time) (string, error)

	// OpenArchive opens a previously archived spreadsheet
	OpenArchive(ctx context.Context, key string) (io.ReadCloser, error)

	DeleteFile(ctx context.Context, key string) error

	// PurgeArchives deletes archived spreadsheets last written before the
	// cutoff and returns how many were removed.
	PurgeArchives(ctx context.Context, before time.Time) (int, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

var spreadsheetContentTypes = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xlsm": "application/vnd.ms-excel.sheet.macroEnabled.12",
	".xls":  "application/vnd.ms-excel",
	".csv":  "text/csv",
}

const archivePrefix = "attendance"

// ArchiveKey builds attendance/YYYY/MM/<uuid><ext> for an upload.
func ArchiveKey(uploadedAt time.Time, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(
		archivePrefix,
		uploadedAt.UTC().Format("2006"),
		uploadedAt.UTC().Format("01"),
		uuid.New().String()+ext,
	)
}

func (s *fileServiceImpl) ArchiveSpreadsheet(ctx context.Context, file io.Reader, filename string, uploadedAt time.Time) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := spreadsheetContentTypes[ext]
	if !ok {
		return "", fmt.Errorf("invalid file type: only xlsx, xlsm, xls, csv allowed")
	}

	key, err := s.storage.Upload(ctx, file, ArchiveKey(uploadedAt, filename), contentType)
	if err != nil {
		return "", fmt.Errorf("failed to archive spreadsheet: %w", err)
	}
	return key, nil
}

func (s *fileServiceImpl) OpenArchive(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.storage.Download(ctx, key)
}

func (s *fileServiceImpl) DeleteFile(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

func (s *fileServiceImpl) PurgeArchives(ctx context.Context, before time.Time) (int, error) {
	files, err := s.storage.List(ctx, archivePrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list archives: %w", err)
	}

	removed := 0
	for _, f := range files {
		if !f.ModTime.Before(before) {
			continue
		}
		if err := s.storage.Delete(ctx, f.Key); err != nil {
			return removed, fmt.Errorf("failed to delete archive %s: %w", f.Key, err)
		}
		removed++
	}
	return removed, nil
}
