package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/leave-analyzer/internal/config"
	appHTTP "github.com/cmlabs-hris/leave-analyzer/internal/handler/http"
	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/cron"
	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/database"
	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/jwt"
	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/sse"
	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/storage"
	"github.com/cmlabs-hris/leave-analyzer/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/leave-analyzer/internal/service/attendance"
	"github.com/cmlabs-hris/leave-analyzer/internal/service/file"
)

const (
	version              = "v1.0.0"
	archivePurgeInterval = 24 * time.Hour
)

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.App.LogLevel),
	})))

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.EnsureSchema(context.Background()); err != nil {
		slog.Error("Error applying schema", "error", err)
		os.Exit(1)
	}

	attendanceRepo := postgresql.NewAttendanceRepository(db)

	var fileService file.FileService
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
		if err != nil {
			slog.Error("Failed to initialize local storage", "error", err)
			os.Exit(1)
		}
		fileService = file.NewFileService(fileStorage)
	case "none":
		slog.Info("Spreadsheet archiving disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := cron.NewScheduler(ctx)
	if fileService != nil && cfg.Storage.Retention > 0 {
		archiveJobs := cron.NewArchiveJobs(fileService, cfg.Storage.Retention)
		if err := archiveJobs.RegisterJobs(scheduler, archivePurgeInterval); err != nil {
			slog.Error("Failed to register archive jobs", "error", err)
			os.Exit(1)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	var jwtService jwt.Service
	if cfg.AuthEnabled() {
		jwtService = jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.UploadExpiration)
	} else {
		slog.Warn("JWT_SECRET_KEY not set, upload routes are unauthenticated")
	}

	hub := sse.NewHub()
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, hub, fileService)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc, cfg.Upload.MaxBytes)
	reportHandler := appHTTP.NewReportHandler(attendanceSvc)
	streamHandler := appHTTP.NewStreamHandler(hub, jwtService)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Env:            cfg.App.Env,
			Version:        version,
			JWTService:     jwtService,
		},
		attendanceHandler,
		reportHandler,
		streamHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
}
