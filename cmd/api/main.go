package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-rules-go/internal/config"
	"github.com/cmlabs-hris/hris-rules-go/internal/domain/attendance"
	appHTTP "github.com/cmlabs-hris/hris-rules-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-rules-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-rules-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-rules-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-rules-go/internal/service/attendance"
	shiftService "github.com/cmlabs-hris/hris-rules-go/internal/service/shift"
	subscriptionService "github.com/cmlabs-hris/hris-rules-go/internal/service/subscription"
	"github.com/go-chi/httplog/v3"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-rules"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	transactor := postgresql.NewTransactor(db)
	organizationRepo := postgresql.NewOrganizationRepository(db)
	donationRepo := postgresql.NewDonationRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	overrideRepo := postgresql.NewOverrideRepository(db)
	assignmentRepo := postgresql.NewAssignmentRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)

	subscriptionSvc := subscriptionService.NewSubscriptionService(organizationRepo, donationRepo, transactor, nil)
	shiftSvc := shiftService.NewShiftService(
		shiftRepo,
		overrideRepo,
		assignmentRepo,
		subscriptionSvc,
		transactor,
		cfg.Rules.ShiftCacheTTL,
	)
	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		assignmentRepo,
		shiftSvc,
		subscriptionSvc,
		transactor,
		attendanceService.Options{
			StatusStrategy: attendance.StatusStrategy(cfg.Rules.StatusStrategy),
			Location:       cfg.Location(),
		},
	)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Logger:         logger,
			LogLevel:       cfg.SlogLevel(),
			AllowedOrigins: cfg.App.AllowedOrigins,
		},
		JWTService,
		middleware.NewSubscriptionMiddleware(subscriptionSvc),
		appHTTP.NewAuthHandler(JWTService),
		appHTTP.NewSubscriptionHandler(subscriptionSvc),
		appHTTP.NewShiftHandler(shiftSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
	)

	if cfg.Cron.Enabled {
		scheduler := cron.NewScheduler(logger)
		cron.NewSubscriptionJobs(subscriptionSvc, cfg.Cron.ExpireTrialsInterval).RegisterJobs(scheduler)
		cron.NewAttendanceJobs(attendanceSvc, cfg.Cron.AutoCloseInterval).RegisterJobs(scheduler)
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr, "timezone", cfg.App.Timezone)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
