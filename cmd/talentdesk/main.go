package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/talentdesk-hq/talentdesk/internal/app"
	"github.com/talentdesk-hq/talentdesk/internal/applications"
	"github.com/talentdesk-hq/talentdesk/internal/audit"
	"github.com/talentdesk-hq/talentdesk/internal/auth"
	"github.com/talentdesk-hq/talentdesk/internal/companies"
	"github.com/talentdesk-hq/talentdesk/internal/notifications"
	"github.com/talentdesk-hq/talentdesk/internal/observability"
	"github.com/talentdesk-hq/talentdesk/internal/platform/cache"
	"github.com/talentdesk-hq/talentdesk/internal/platform/db"
	"github.com/talentdesk-hq/talentdesk/internal/platform/upstream"
	"github.com/talentdesk-hq/talentdesk/internal/rbac"
	"github.com/talentdesk-hq/talentdesk/internal/reports"
	"github.com/talentdesk-hq/talentdesk/internal/seekers"
	"github.com/talentdesk-hq/talentdesk/internal/shared"
	"github.com/talentdesk-hq/talentdesk/internal/vacancies"
	"github.com/talentdesk-hq/talentdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "talentdesk_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	metrics := observability.NewMetrics()

	upstreamClient := upstream.New(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, upstream.WithObserver(metrics.ObserveUpstream))

	resolver := rbac.NewResolver(rbac.NewIdentityClient(upstreamClient))
	rbacMiddleware := rbac.Middleware{Resolver: resolver, Logger: logger}

	auditService := audit.NewService(audit.NewRepository(dbpool), logger)

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	drafts := auth.NewRedisDraftStore(redisClient, 10*time.Minute)
	authService := auth.NewService(upstreamClient, drafts)
	authHandler := auth.NewHandler(logger, authService, sessionManager, asynqClient, jobs.NewVerificationMailTask)

	overrides := applications.NewOverrideStore()
	applicationsService := applications.NewService(upstreamClient, overrides)
	applicationsHandler := applications.NewHandler(logger, applicationsService, rbacMiddleware)

	companiesHandler := companies.NewHandler(logger, companies.NewService(upstreamClient), rbacMiddleware, auditService)
	vacanciesHandler := vacancies.NewHandler(logger, vacancies.NewService(upstreamClient), rbacMiddleware, auditService)
	seekersHandler := seekers.NewHandler(logger, seekers.NewService(upstreamClient), rbacMiddleware, auditService)
	notificationsHandler := notifications.NewHandler(logger, notifications.NewService(upstreamClient))

	auditHandler := audit.NewHandler(logger, auditService, rbacMiddleware)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportsService := reports.NewService(upstreamClient, reportCache, logger)
	reportsHandler := reports.NewHandler(logger, reportsService, rbacMiddleware)
	if err := reportCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("report cache invalidation listener", slog.Any("error", err))
	}

	permissionsHandler := rbac.NewPermissionsHandler(logger, resolver)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SessionManager:       sessionManager,
		CSRFManager:          csrfManager,
		AuthHandler:          authHandler,
		ApplicationsHandler:  applicationsHandler,
		CompaniesHandler:     companiesHandler,
		VacanciesHandler:     vacanciesHandler,
		SeekersHandler:       seekersHandler,
		NotificationsHandler: notificationsHandler,
		AuditHandler:         auditHandler,
		ReportsHandler:       reportsHandler,
		PermissionsHandler:   permissionsHandler,
		JobHandler:           jobHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
