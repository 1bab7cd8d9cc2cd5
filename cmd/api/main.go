package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Kadu1982/sistema2-sub001/internal/config"
	"github.com/Kadu1982/sistema2-sub001/internal/email"
	"github.com/Kadu1982/sistema2-sub001/internal/handler"
	appointmentHandler "github.com/Kadu1982/sistema2-sub001/internal/handler/appointment"
	authHandler "github.com/Kadu1982/sistema2-sub001/internal/handler/auth"
	healthunitHandler "github.com/Kadu1982/sistema2-sub001/internal/handler/healthunit"
	medicationHandler "github.com/Kadu1982/sistema2-sub001/internal/handler/medication"
	operatorHandler "github.com/Kadu1982/sistema2-sub001/internal/handler/operator"
	patientHandler "github.com/Kadu1982/sistema2-sub001/internal/handler/patient"
	sadtHandler "github.com/Kadu1982/sistema2-sub001/internal/handler/sadt"
	"github.com/Kadu1982/sistema2-sub001/internal/middleware"
	"github.com/Kadu1982/sistema2-sub001/internal/repository/postgres"
	"github.com/Kadu1982/sistema2-sub001/internal/router"
	appointmentService "github.com/Kadu1982/sistema2-sub001/internal/service/appointment"
	authService "github.com/Kadu1982/sistema2-sub001/internal/service/auth"
	healthunitService "github.com/Kadu1982/sistema2-sub001/internal/service/healthunit"
	medicationService "github.com/Kadu1982/sistema2-sub001/internal/service/medication"
	operatorService "github.com/Kadu1982/sistema2-sub001/internal/service/operator"
	patientService "github.com/Kadu1982/sistema2-sub001/internal/service/patient"
	sadtService "github.com/Kadu1982/sistema2-sub001/internal/service/sadt"
	"github.com/Kadu1982/sistema2-sub001/pkg/auth"
	"github.com/Kadu1982/sistema2-sub001/pkg/logger"
	"github.com/Kadu1982/sistema2-sub001/pkg/messaging/redis"
	"github.com/Kadu1982/sistema2-sub001/pkg/metrics"
	"github.com/Kadu1982/sistema2-sub001/pkg/render"
	"github.com/Kadu1982/sistema2-sub001/pkg/security"
	"github.com/Kadu1982/sistema2-sub001/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	patientRepo := postgres.NewPatientRepository(db)
	sadtRepo := postgres.NewSadtRepository(db)
	operatorRepo := postgres.NewOperatorRepository(db)
	unitRepo := postgres.NewHealthUnitRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	medicationRepo := postgres.NewMedicationRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Rendering is optional at startup; documents can still be issued and
	// rendered later once a Chrome binary is available.
	var renderer render.Renderer
	if chromeRenderer, err := render.NewChromeRenderer(); err != nil {
		appLogger.Warn("pdf renderer unavailable", "error", err.Error())
	} else {
		renderer = chromeRenderer
	}

	mailer := email.NewGomailService(cfg.SMTP)
	appMetrics := metrics.NewMetrics("clinic", "api")

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:             cfg.JWT.Secret,
		RefreshSecret:      cfg.JWT.RefreshSecret,
		ExpiryHours:        cfg.JWT.ExpiryHours,
		RefreshExpiryHours: cfg.JWT.RefreshExpiryHours,
	})
	hasher := security.NewBcryptHasher(0)

	// Services
	patientSvc := patientService.NewService(patientRepo, outboxRepo, cfg.Patient.TaxIDAgeMonths)
	sadtSvc := sadtService.NewService(sadtRepo, patientRepo, unitRepo, renderer, mailer, appLogger, appMetrics)
	operatorSvc := operatorService.NewService(operatorRepo, unitRepo, hasher)
	authSvc := authService.NewService(operatorRepo, jwtSvc, hasher, appLogger)
	unitSvc := healthunitService.NewService(unitRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, unitRepo)
	medicationSvc := medicationService.NewService(medicationRepo)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc, operatorRepo)

	h := handler.NewHandler(db)
	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		patientHandler.NewHandler(patientSvc),
		sadtHandler.NewHandler(sadtSvc),
		operatorHandler.NewHandler(operatorSvc),
		healthunitHandler.NewHandler(unitSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		medicationHandler.NewHandler(medicationSvc),
		h,
		router.RouterConfig{
			RateLimit:     100,
			RateBurst:     200,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "clinic_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Outbox processor publishes committed events through Redis.
	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	outboxProcessor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  time.Duration(cfg.Outbox.PollIntervalSeconds) * time.Second,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    time.Duration(cfg.Outbox.RetryDelaySeconds) * time.Second,
	}, appLogger, appMetrics)
	go outboxProcessor.Start(ctx)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
