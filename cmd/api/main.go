package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/config"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/deadline"
	appHTTP "github.com/cmlabs-hris/performance-review-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/repository/postgresql"
	serviceAuth "github.com/cmlabs-hris/performance-review-backend-go/internal/service/auth"
	deadlineService "github.com/cmlabs-hris/performance-review-backend-go/internal/service/deadline"
	organizationService "github.com/cmlabs-hris/performance-review-backend-go/internal/service/organization"
	reportService "github.com/cmlabs-hris/performance-review-backend-go/internal/service/report"
	reviewService "github.com/cmlabs-hris/performance-review-backend-go/internal/service/review"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.App.LogLevel),
	})))

	db, err := database.NewPostgreSQLDB(context.Background(), cfg.DatabaseURL(), database.PoolOptions{
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	if cfg.App.RunMigrations {
		if err := db.Migrate(context.Background()); err != nil {
			log.Fatal("Failed to run migrations: ", err)
		}
	}

	txManager := postgresql.NewTxManager(db)
	userRepo := postgresql.NewUserRepository(db)
	tokenRepo := postgresql.NewTokenRepository(db)
	relationRepo := postgresql.NewRelationRepository(db)
	reviewRepo := postgresql.NewReviewRepository(db)
	kpiRepo := postgresql.NewKPIRepository(db)
	skillRepo := postgresql.NewSkillRepository(db)
	goalRepo := postgresql.NewGoalRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	reportRepo := postgresql.NewReportRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, cfg.App.Env == "production")
	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service:", err)
	}

	authService := serviceAuth.NewAuthService(txManager, userRepo, relationRepo, JWTService, tokenRepo)
	organizationSvc := organizationService.NewOrganizationService(relationRepo, userRepo, reviewRepo)
	deadlineSvc := deadlineService.NewDeadlineService(
		deadline.NewCalculator(cfg.Deadline.EvaluationPeriodDays),
		userRepo,
		reviewRepo,
		relationRepo,
		notificationRepo,
		emailService,
	)
	reviewSvc := reviewService.NewReviewService(
		txManager,
		reviewRepo,
		kpiRepo,
		skillRepo,
		goalRepo,
		userRepo,
		relationRepo,
		deadlineSvc,
	)
	reportSvc := reportService.NewReportService(reportRepo, relationRepo)

	authHandler := appHTTP.NewAuthHandler(JWTService, authService, organizationSvc)
	reviewHandler := appHTTP.NewReviewHandler(reviewSvc)
	deadlineHandler := appHTTP.NewDeadlineHandler(deadlineSvc)
	organizationHandler := appHTTP.NewOrganizationHandler(organizationSvc)
	reportHandler := appHTTP.NewReportHandler(reportSvc)

	router := appHTTP.NewRouter(
		cfg,
		JWTService,
		authHandler,
		reviewHandler,
		deadlineHandler,
		organizationHandler,
		reportHandler,
	)

	scheduler := cron.NewScheduler()
	if cfg.Deadline.SweepEnabled {
		cron.NewDeadlineJobs(deadlineSvc, cfg.Deadline.SweepInterval).RegisterJobs(scheduler)
	}
	cron.NewTokenJobs(authService).RegisterJobs(scheduler)
	scheduler.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server running", "addr", "http://localhost"+server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	scheduler.Stop()
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
