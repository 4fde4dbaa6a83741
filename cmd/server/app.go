package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskroster-api/internal/config"
	"github.com/phrazzld/taskroster-api/internal/events"
	"github.com/phrazzld/taskroster-api/internal/jobs"
	"github.com/phrazzld/taskroster-api/internal/notify"
	"github.com/phrazzld/taskroster-api/internal/platform/postgres"
	"github.com/phrazzld/taskroster-api/internal/platform/whatsapp"
	"github.com/phrazzld/taskroster-api/internal/service"
	"github.com/phrazzld/taskroster-api/internal/service/auth"
	"github.com/phrazzld/taskroster-api/internal/upload"
	"github.com/spf13/afero"
)

// jobsStopTimeout bounds how long shutdown waits for queued notifications.
const jobsStopTimeout = 15 * time.Second

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService     auth.JWTService
	accountService service.AccountService
	taskService    service.TaskService

	eventEmitter *events.InMemoryEventEmitter
	jobRunner    *jobs.Runner
}

// newApplication wires stores, services and the notification pipeline
// around an open database connection.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	userStore := postgres.NewPostgresUserStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	notificationStore := postgres.NewPostgresNotificationStore(db, logger)

	images, err := upload.NewStore(afero.NewOsFs(), cfg.Server.UploadDir,
		int64(cfg.Server.MaxUploadMB)<<20, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload store: %w", err)
	}

	sender, err := newSender(cfg.Notify, logger)
	if err != nil {
		return nil, err
	}

	app.jobRunner = jobs.NewRunner(cfg.Jobs, logger)
	app.jobRunner.SetErrorHandler(func(job jobs.Job, err error) {
		logger.Error("background job failed", "job_id", job.ID(), "job_type", job.Type(), "error", err)
	})

	dispatcher := notify.NewDispatcher(sender, notificationStore, cfg.Notify, logger)
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.Subscribe(events.TypeTaskAssigned, notify.NewEventHandler(dispatcher, app.jobRunner, logger))

	hasher := auth.NewBcryptHasher(cfg.Auth.BCryptCost)
	app.accountService = service.NewAccountService(userStore, hasher, hasher, app.jwtService, logger)
	app.taskService = service.NewTaskService(taskStore, userStore, notificationStore, images,
		app.eventEmitter, time.Now, logger)

	if cfg.Bootstrap.Enabled() {
		created, err := app.accountService.EnsureBootstrapAdmin(ctx, service.BootstrapAdmin{
			Username:    cfg.Bootstrap.AdminUsername,
			Password:    cfg.Bootstrap.AdminPassword,
			PhoneNumber: cfg.Bootstrap.AdminPhone,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bootstrap administrator: %w", err)
		}
		logger.Info("bootstrap administrator checked", "created", created)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// newSender picks the WhatsApp client when notifications are enabled and a
// logging stand-in otherwise.
func newSender(cfg config.NotifyConfig, logger *slog.Logger) (notify.Sender, error) {
	if !cfg.Enabled {
		logger.Warn("notifications disabled, messages will only be logged")
		return notify.NewLogSender(logger), nil
	}

	client, err := whatsapp.NewClient(cfg, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize WhatsApp client: %w", err)
	}
	return client, nil
}

// Run starts background workers and serves HTTP until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	app.jobRunner.Start()
	defer app.cleanup()

	router := newRouter(routerDeps{
		accounts:       app.accountService,
		tasks:          app.taskService,
		tokens:         app.jwtService,
		maxUploadBytes: int64(app.config.Server.MaxUploadMB) << 20,
		logger:         app.logger,
	})

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup drains the job queue and closes the database.
func (app *application) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), jobsStopTimeout)
	defer cancel()

	if app.jobRunner != nil {
		if err := app.jobRunner.Stop(ctx); err != nil {
			app.logger.Warn("job runner did not drain before timeout", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
