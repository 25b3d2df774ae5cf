package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/leave-analyzer/internal/handler/http/middleware"
	"github.com/cmlabs-hris/leave-analyzer/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-analyzer/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AllowedOrigins []string
	Env            string
	Version        string
	// JWTService protects the write routes. Nil leaves them open.
	JWTService jwt.Service
}

func NewRouter(cfg RouterConfig, attendanceHandler AttendanceHandler, reportHandler ReportHandler, streamHandler StreamHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "leave-analyzer"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", reportHandler.Health)
		r.Get("/employees", reportHandler.Employees)
		r.Get("/reports/monthly", reportHandler.MonthlyReport)

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", attendanceHandler.List)
			r.Get("/stats", attendanceHandler.Stats)
			r.Get("/stats/export", attendanceHandler.ExportStats)
			r.Get("/stream", streamHandler.Stream)

			// Writes require an upload token when auth is enabled
			r.Group(func(r chi.Router) {
				if cfg.JWTService != nil {
					r.Use(jwtauth.Verifier(cfg.JWTService.JWTAuth()))
					r.Use(middleware.AuthRequired(cfg.JWTService.JWTAuth()))
					r.Use(middleware.RequireScope(jwt.ScopeUpload))
					r.Get("/stream/token", streamHandler.Token)
				}
				r.Post("/upload", attendanceHandler.Upload)
				r.Post("/import", attendanceHandler.Import)
				r.Post("/preview", attendanceHandler.Preview)
			})
		})
	})
	return r
}
