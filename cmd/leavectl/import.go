package main

import (
	"fmt"
	"os"

	"github.com/cmlabs-hris/leave-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/database"
	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/storage"
	"github.com/cmlabs-hris/leave-analyzer/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/leave-analyzer/internal/service/attendance"
	"github.com/cmlabs-hris/leave-analyzer/internal/service/file"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Store a spreadsheet in the attendance database",
	Long: `Reads FILE and upserts every valid row into the attendance table configured by
the DB_* environment variables. Rows already stored for the same employee and date
are replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("reading file info: %w", err)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(cmd.Context()); err != nil {
		return err
	}

	var fileService file.FileService
	if cfg.Storage.Type == "local" {
		fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
		if err != nil {
			return fmt.Errorf("initializing storage: %w", err)
		}
		fileService = file.NewFileService(fileStorage)
	}

	svc := attendanceService.NewAttendanceService(postgresql.NewAttendanceRepository(db), nil, fileService)
	result, err := svc.Import(cmd.Context(), attendance.ImportRequest{
		File:     f,
		Filename: info.Name(),
		Size:     info.Size(),
		MaxSize:  cfg.Upload.MaxBytes,
	})
	if err != nil {
		return fmt.Errorf("importing %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Stored %d records, rejected %d\n", result.SuccessCount, result.ErrorCount)
	for _, e := range result.Errors {
		fmt.Fprintf(out, "  row %d: %s\n", e.RecordIndex, e.Reason)
	}
	return nil
}
