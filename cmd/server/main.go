package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"

	"github.com/keonhq/taskflow/internal/application/service"
	"github.com/keonhq/taskflow/internal/config"
	"github.com/keonhq/taskflow/internal/infrastructure/persistence/repository"
	"github.com/keonhq/taskflow/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/keonhq/taskflow/internal/interfaces/http"
	"github.com/keonhq/taskflow/internal/report"
	"github.com/keonhq/taskflow/internal/worker"
	"github.com/keonhq/taskflow/pkg/database"
	"github.com/keonhq/taskflow/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskflow: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	txManager := sqlite.NewDB(db.DB, logger)

	taskRepo := repository.NewTaskRepository(db.DB, logger)
	templateRepo := repository.NewTemplateRepository(db.DB, logger)
	validationRepo := repository.NewValidationRepository(db.DB, logger)
	checklistRepo := repository.NewChecklistRepository(db.DB, logger)
	recurrenceRunRepo := repository.NewRecurrenceRunRepository(db.DB, logger)
	orderLineRepo := repository.NewOrderLineRepository(db.DB, logger)
	auditRepo := repository.NewAuditRepository(db.DB, logger)
	notificationRepo := repository.NewNotificationRepository(db.DB, logger)
	profileRepo := repository.NewProfileRepository(db.DB, logger)

	svcLogger := service.NewZapLogger(logger)

	templateSvc := service.NewTemplateService(templateRepo, svcLogger)
	generationSvc := service.NewGenerationService(
		templateSvc, taskRepo, templateRepo, checklistRepo, validationRepo,
		notificationRepo, auditRepo, txManager, svcLogger)
	requestSvc := service.NewRequestService(
		taskRepo, checklistRepo, orderLineRepo, auditRepo, generationSvc,
		txManager, svcLogger)
	validationSvc := service.NewValidationService(
		taskRepo, validationRepo, auditRepo, notificationRepo, txManager, svcLogger)
	materialSvc := service.NewMaterialService(
		taskRepo, orderLineRepo, checklistRepo, auditRepo, txManager, svcLogger)
	recurrenceSvc := service.NewRecurrenceService(
		taskRepo, templateRepo, recurrenceRunRepo, auditRepo, txManager, svcLogger)
	notificationSvc := service.NewNotificationService(notificationRepo, svcLogger)
	auditSvc := service.NewAuditService(auditRepo)

	workloadReporter := report.NewWorkloadReporter(taskRepo, profileRepo, logger)

	handlers := httpserver.NewHandlers(
		requestSvc, validationSvc, materialSvc, recurrenceSvc, templateSvc,
		notificationSvc, auditSvc, workloadReporter)
	server := httpserver.NewServer(cfg.Server, cfg.Auth, handlers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager := worker.NewManager(logger)
	if cfg.Recurrence.Enabled {
		manager.Register(worker.NewRecurrenceWorker(recurrenceSvc, cfg.Recurrence.Schedule, logger))
	}
	if err := manager.StartAll(ctx); err != nil {
		return err
	}
	defer manager.StopAll()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	if err := server.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
