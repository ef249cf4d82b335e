package api

import (
	"lending-engine/internal/api/handler"
	mw "lending-engine/internal/api/middleware"
	"lending-engine/internal/config"
	"lending-engine/internal/domain/client"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/report"
	"lending-engine/internal/domain/setting"
	"lending-engine/internal/domain/user"
	"log/slog"
	"net/http"
	"time"

	_ "lending-engine/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Services struct {
	Loans    loan.LoanService
	Clients  client.ClientService
	Users    user.UserService
	Reports  report.ReportService
	Settings setting.SettingService
}

// SetupRouter wires every route. redisClient may be nil, in which case rate limiting stays in-process.
func SetupRouter(svc Services, redisClient *redis.Client, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, redisClient, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	authenticated := mw.AuthMiddleware(cfg.Server.Auth, logger)
	setupAuthRoutes(router, svc.Users, authenticated, logger)
	setupUserRoutes(router, svc.Users, authenticated, logger)
	setupClientRoutes(router, svc.Clients, svc.Loans, authenticated, logger)
	setupLoanRoutes(router, svc.Loans, authenticated, logger)
	setupReportRoutes(router, svc.Reports, authenticated, logger)
	setupSettingRoutes(router, svc.Settings, authenticated, logger)

	return router
}

func setupMiddleware(router *chi.Mux, redisClient *redis.Client, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, redisClient, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAuthRoutes(router *chi.Mux, users user.UserService, authenticated func(http.Handler) http.Handler, logger *slog.Logger) {
	h := handler.NewAuthHandler(users, logger)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.With(authenticated).Get("/profile", h.Profile)
	})
}

func setupUserRoutes(router *chi.Mux, users user.UserService, authenticated func(http.Handler) http.Handler, logger *slog.Logger) {
	h := handler.NewUserHandler(users, logger)

	router.Route("/users", func(r chi.Router) {
		r.Use(authenticated)
		r.With(mw.RequireRole(user.RoleAdmin, user.RoleCollector)).Get("/collectors", h.ListCollectors)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(user.RoleAdmin))
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Route("/{userID}", func(r chi.Router) {
				r.Get("/", h.GetUser)
				r.Put("/", h.UpdateUser)
				r.Delete("/", h.DeleteUser)
			})
		})
	})
}

func setupClientRoutes(router *chi.Mux, clients client.ClientService, loans loan.LoanService, authenticated func(http.Handler) http.Handler, logger *slog.Logger) {
	h := handler.NewClientHandler(clients, loans, logger)

	router.Route("/clients", func(r chi.Router) {
		r.Use(authenticated)
		r.Use(mw.RequireRole(user.RoleAdmin, user.RoleCollector))
		r.Get("/", h.ListClients)
		r.Post("/", h.CreateClient)
		r.Get("/pending", h.ListClientsWithPending)
		r.Route("/{clientID}", func(r chi.Router) {
			r.Get("/", h.GetClient)
			r.Put("/", h.UpdateClient)
			r.Delete("/", h.DeleteClient)
			r.Get("/pending-installments", h.ListPendingInstallments)
		})
	})
}

func setupLoanRoutes(router *chi.Mux, loans loan.LoanService, authenticated func(http.Handler) http.Handler, logger *slog.Logger) {
	h := handler.NewLoanHandler(loans, logger)
	adminOnly := mw.RequireRole(user.RoleAdmin)

	router.Route("/loans", func(r chi.Router) {
		r.Use(authenticated)
		r.Use(mw.RequireRole(user.RoleAdmin, user.RoleCollector))
		r.Get("/", h.ListLoans)
		r.Post("/", h.CreateLoan)
		r.Route("/{loanID}", func(r chi.Router) {
			r.Get("/", h.GetLoan)
			r.With(adminOnly).Put("/", h.UpdateLoan)
			r.With(adminOnly).Delete("/", h.DeleteLoan)
			r.Get("/installments", h.GetSchedule)
			r.Get("/outstanding", h.GetOutstanding)
			r.Get("/payments", h.ListPayments)
			r.Post("/payments", h.RecordPayment)
			r.With(adminOnly).Post("/reconcile", h.ReconcileLoan)
		})
	})
}

func setupReportRoutes(router *chi.Mux, reports report.ReportService, authenticated func(http.Handler) http.Handler, logger *slog.Logger) {
	h := handler.NewReportHandler(reports, logger)
	adminOnly := mw.RequireRole(user.RoleAdmin)

	router.Route("/reports", func(r chi.Router) {
		r.Use(authenticated)
		r.With(adminOnly).Get("/summary", h.Summary)
		r.With(adminOnly).Get("/export", h.Export)
		r.With(mw.RequireRole(user.RoleAdmin, user.RoleCollector)).Get("/collector", h.CollectorStats)
	})
}

func setupSettingRoutes(router *chi.Mux, settings setting.SettingService, authenticated func(http.Handler) http.Handler, logger *slog.Logger) {
	h := handler.NewSettingHandler(settings, logger)

	router.Route("/settings", func(r chi.Router) {
		r.Get("/", h.ListSettings)
		r.Get("/{key}", h.GetSetting)
		r.With(authenticated, mw.RequireRole(user.RoleAdmin)).Put("/{key}", h.UpdateSetting)
	})
}
