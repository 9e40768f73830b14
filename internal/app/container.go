// Package app wires studybuddy's bounded contexts to their infrastructure.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	focusCommands "github.com/felixgeelhaar/studybuddy/internal/focus/application/commands"
	focusQueries "github.com/felixgeelhaar/studybuddy/internal/focus/application/queries"
	focusDomain "github.com/felixgeelhaar/studybuddy/internal/focus/domain"
	focusCache "github.com/felixgeelhaar/studybuddy/internal/focus/infrastructure/cache"
	focusPersistence "github.com/felixgeelhaar/studybuddy/internal/focus/infrastructure/persistence"
	planningCommands "github.com/felixgeelhaar/studybuddy/internal/planning/application/commands"
	planningQueries "github.com/felixgeelhaar/studybuddy/internal/planning/application/queries"
	planningServices "github.com/felixgeelhaar/studybuddy/internal/planning/application/services"
	planningSubs "github.com/felixgeelhaar/studybuddy/internal/planning/application/subscribers"
	planningDomain "github.com/felixgeelhaar/studybuddy/internal/planning/domain"
	"github.com/felixgeelhaar/studybuddy/internal/planning/infrastructure/caldav"
	planningPersistence "github.com/felixgeelhaar/studybuddy/internal/planning/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/studybuddy/internal/shared/application"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/database/postgres" // Register Postgres driver
	_ "github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/resilience"
	studyCommands "github.com/felixgeelhaar/studybuddy/internal/study/application/commands"
	studyQueries "github.com/felixgeelhaar/studybuddy/internal/study/application/queries"
	"github.com/felixgeelhaar/studybuddy/internal/study/domain/task"
	studyPersistence "github.com/felixgeelhaar/studybuddy/internal/study/infrastructure/persistence"
	"github.com/felixgeelhaar/studybuddy/pkg/config"
	"github.com/felixgeelhaar/studybuddy/pkg/observability"
	"github.com/redis/go-redis/v9"
)

// sessionCacheTTL bounds how stale a cached session snapshot can be.
const sessionCacheTTL = 10 * time.Minute

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis, nil when REDIS_URL is unset or unreachable.
	RedisClient *redis.Client

	// Repositories
	TaskRepo     task.Repository
	ScheduleRepo planningDomain.Repository
	SessionRepo  focusDomain.Repository
	OutboxRepo   outbox.Repository
	UnitOfWork   sharedApplication.UnitOfWork

	// Events
	EventBus        *eventbus.InProcessEventBus
	EventPublisher  eventbus.Publisher
	OutboxProcessor *outbox.Processor

	// Study
	AddTaskHandler     *studyCommands.AddTaskHandler
	ImportTasksHandler *studyCommands.ImportTasksHandler
	RemoveTaskHandler  *studyCommands.RemoveTaskHandler
	ListTasksHandler   *studyQueries.ListTasksHandler
	GetTaskHandler     *studyQueries.GetTaskHandler

	// Planning
	BuildScheduleHandler  *planningCommands.BuildScheduleHandler
	ExportScheduleHandler *planningCommands.ExportScheduleHandler
	GetScheduleHandler    *planningQueries.GetScheduleHandler

	// Focus
	FocusSettings     focusDomain.Settings
	SessionHandler    *focusCommands.SessionHandler
	GetSessionHandler *focusQueries.GetSessionHandler
}

// NewContainer connects storage and brokers and wires every handler.
// Postgres is used when DATABASE_URL is set, local SQLite otherwise.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
	}

	conn, err := database.NewConnection(ctx, database.Config{
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()

	applied, err := migrations.Run(ctx, conn, logger)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Debug("connected to database", "driver", c.DBDriver, "migrations_applied", len(applied))

	c.RedisClient = connectRedis(ctx, cfg, logger)

	c.TaskRepo = studyPersistence.NewSQLTaskRepository(conn)
	c.ScheduleRepo = planningPersistence.NewSQLScheduleRepository(conn)
	c.OutboxRepo = outbox.NewSQLRepository(conn)
	c.UnitOfWork = database.NewUnitOfWork(conn)

	var sessionRepo focusDomain.Repository = focusPersistence.NewSQLSessionRepository(conn)
	if c.RedisClient != nil {
		store := focusCache.NewRedisStore(c.RedisClient, "studybuddy:")
		sessionRepo = focusCache.NewCachedSessionRepository(sessionRepo, store, sessionCacheTTL, logger)
	}
	c.SessionRepo = sessionRepo

	builderCfg, err := builderConfig(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	// Study
	c.AddTaskHandler = studyCommands.NewAddTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.ImportTasksHandler = studyCommands.NewImportTasksHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.RemoveTaskHandler = studyCommands.NewRemoveTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.ListTasksHandler = studyQueries.NewListTasksHandler(c.TaskRepo)
	c.GetTaskHandler = studyQueries.NewGetTaskHandler(c.TaskRepo)

	// Planning
	c.BuildScheduleHandler = planningCommands.NewBuildScheduleHandler(
		c.TaskRepo,
		c.ScheduleRepo,
		c.OutboxRepo,
		c.UnitOfWork,
		planningServices.NewPriorityScorer(scorerConfig(cfg)),
		planningServices.NewScheduleBuilder(builderCfg),
		logger,
		c.Metrics,
	)
	c.ExportScheduleHandler = planningCommands.NewExportScheduleHandler(c.ScheduleRepo, calendarSink(cfg, logger), logger)
	c.GetScheduleHandler = planningQueries.NewGetScheduleHandler(c.ScheduleRepo)

	// Focus
	c.FocusSettings = focusDomain.Settings{
		WorkInterval:   cfg.Focus.WorkInterval,
		ShortBreak:     cfg.Focus.ShortBreak,
		LongBreak:      cfg.Focus.LongBreak,
		LongBreakEvery: cfg.Focus.LongBreakEvery,
	}
	c.SessionHandler = focusCommands.NewSessionHandler(
		c.SessionRepo,
		c.TaskRepo,
		c.ScheduleRepo,
		c.OutboxRepo,
		c.UnitOfWork,
		c.FocusSettings,
		logger,
		c.Metrics,
	)
	c.GetSessionHandler = focusQueries.NewGetSessionHandler(c.SessionRepo, c.FocusSettings)

	// Events: every message goes to the in-process consumers; RabbitMQ is
	// added behind a breaker when configured.
	c.EventBus = eventbus.NewInProcessEventBus(logger)
	c.EventBus.RegisterConsumer(planningSubs.NewStaleScheduleSubscriber(c.ScheduleRepo, logger))
	if c.ExportScheduleHandler.Enabled() {
		c.EventBus.RegisterConsumer(planningSubs.NewCalendarExportSubscriber(c.ExportScheduleHandler, logger))
	}
	c.EventPublisher = c.EventBus
	if cfg.RabbitMQURL != "" {
		rabbit, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			if !cfg.IsDevelopment() {
				c.Close()
				return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			logger.Warn("RabbitMQ not available, publishing in-process only", "error", err)
		} else {
			breaker := resilience.NewBreaker("rabbitmq", resilience.DefaultBreakerConfig(), logger)
			c.EventPublisher = eventbus.NewFanoutPublisher(c.EventBus, eventbus.NewBreakerPublisher(rabbit, breaker))
		}
	}

	processorCfg := outbox.DefaultProcessorConfig()
	if cfg.Outbox.PollInterval > 0 {
		processorCfg.PollInterval = cfg.Outbox.PollInterval
	}
	if cfg.Outbox.BatchSize > 0 {
		processorCfg.BatchSize = cfg.Outbox.BatchSize
	}
	if cfg.Outbox.MaxRetries > 0 {
		processorCfg.MaxRetries = cfg.Outbox.MaxRetries
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorCfg, logger, c.Metrics)

	return c, nil
}

// Flush delivers every pending outbox message. Short-lived commands call
// it before exiting; failures stay in the outbox for the next run.
func (c *Container) Flush(ctx context.Context) error {
	if c.OutboxProcessor == nil {
		return nil
	}
	return c.OutboxProcessor.Flush(ctx)
}

// Close releases connections. It is safe to call more than once.
func (c *Container) Close() {
	var errs []error
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}
	if c.EventPublisher != nil {
		errs = append(errs, c.EventPublisher.Close())
		c.EventPublisher = nil
	}
	if c.RedisClient != nil {
		errs = append(errs, c.RedisClient.Close())
		c.RedisClient = nil
	}
	if c.DBConn != nil {
		errs = append(errs, c.DBConn.Close())
		c.DBConn = nil
	}
	if err := errors.Join(errs...); err != nil {
		c.Logger.Warn("error while closing container", "error", err)
	}
}

func connectRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("invalid Redis URL, session cache disabled", "error", err)
		return nil
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis not available, session cache disabled", "error", err)
		client.Close()
		return nil
	}
	logger.Debug("connected to Redis")
	return client
}

func scorerConfig(cfg *config.Config) planningServices.ScorerConfig {
	sc := planningServices.DefaultScorerConfig()
	sc.UrgencyWeight = cfg.Scoring.UrgencyWeight
	sc.ImportanceWeight = cfg.Scoring.ImportanceWeight
	sc.MagnitudeWeight = cfg.Scoring.MagnitudeWeight
	sc.DecayPerDay = cfg.Scoring.DecayPerDay
	return sc
}

func builderConfig(cfg *config.Config) (planningServices.BuilderConfig, error) {
	dayStart, err := cfg.Planning.DayStartOffset()
	if err != nil {
		return planningServices.BuilderConfig{}, err
	}
	bc := planningServices.BuilderConfig{
		DailyCapacity:     cfg.Planning.DailyCapacity,
		BlockLength:       cfg.Planning.BlockLength,
		BreakLength:       cfg.Planning.BreakLength,
		BlocksBeforeBreak: cfg.Planning.BlocksBeforeBreak,
		DayStart:          dayStart,
	}
	return bc, bc.Validate()
}

func calendarSink(cfg *config.Config, logger *slog.Logger) planningCommands.CalendarSink {
	if !cfg.CalDAV.Enabled() {
		return nil
	}
	breaker := resilience.NewBreaker("caldav", resilience.DefaultBreakerConfig(), logger)
	return caldav.NewSink(caldav.Config{
		URL:          cfg.CalDAV.URL,
		Username:     cfg.CalDAV.Username,
		Password:     cfg.CalDAV.Password,
		Token:        cfg.CalDAV.Token,
		CalendarPath: cfg.CalDAV.CalendarPath,
	}, breaker, logger)
}
