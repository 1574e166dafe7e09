package main

import (
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/fujioka8700/Eitan/internal/config"
	"github.com/fujioka8700/Eitan/internal/domain"
	"github.com/fujioka8700/Eitan/internal/handler"
	"github.com/fujioka8700/Eitan/internal/history"
	"github.com/fujioka8700/Eitan/internal/localstore"
	"github.com/fujioka8700/Eitan/internal/middleware"
	"github.com/fujioka8700/Eitan/internal/progress"
	"github.com/fujioka8700/Eitan/internal/repository/postgres"
	"github.com/fujioka8700/Eitan/internal/service"
	"github.com/fujioka8700/Eitan/internal/session"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Eitan Bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully")

	// Device-local flashcard progress
	store, err := localstore.Open(cfg.LocalStorePath)
	if err != nil {
		logger.Fatal("Failed to open local store", zap.Error(err))
	}
	defer store.Close()

	// Wire the word supply and history sink: against the local database
	// by default, or against the HTTP API in remote mode
	var supply service.WordSupply
	var sink progress.HistorySink
	var histories handler.HistoryViewer
	var middlewares []tele.MiddlewareFunc

	if cfg.APIBaseURL != "" {
		logger.Info("Using remote word supply", zap.String("base_url", cfg.APIBaseURL))

		client := history.NewClient(cfg.APIBaseURL, cfg.APIToken)
		supply = client
		sink = client
		histories = remoteHistories{client: client}
	} else {
		db, err := connectDatabase(cfg.DSN(), logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		logger.Info("Database connection established")

		if err := runMigrations(db, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}

		logger.Info("Database migrations completed")

		wordRepo := postgres.NewWordRepo(db)
		historyRepo := postgres.NewHistoryRepo(db)
		userRepo := postgres.NewUserRepo(db)

		historyService := service.NewHistoryService(historyRepo, logger)
		authService := service.NewAuthService(userRepo)

		supply = wordRepo
		sink = historyService
		histories = localHistories{svc: historyService}
		middlewares = append(middlewares, middleware.EnsureUser(authService, logger))
	}

	wordPool := service.NewWordPoolService(supply)

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}
	for _, mw := range middlewares {
		bot.Use(mw)
	}

	logger.Info("Telegram bot initialized")

	timing := session.Timing{
		FlashcardLimitMs: cfg.Study.FlashcardLimitMs,
		FlashcardStepMs:  cfg.Study.FlashcardStepMs,
		FlashcardGraceMs: cfg.Study.FlashcardGraceMs,
		QuizLimitMs:      cfg.Study.QuizLimitMs,
		QuizStepMs:       cfg.Study.QuizStepMs,
		QuizReviewMs:     cfg.Study.QuizReviewMs,
	}

	h := handler.NewHandler(bot, wordPool, histories, store, sink, timing, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	bot.Stop()
	h.Shutdown()

	logger.Info("Bot stopped gracefully")
}

// localHistories reads learning histories straight from the database
type localHistories struct {
	svc *service.HistoryService
}

func (l localHistories) Histories(userID int64) ([]domain.LearningRecord, error) {
	return l.svc.History(userID)
}

// remoteHistories reads learning histories through the API. The bearer
// token identifies the user, so the ID is ignored.
type remoteHistories struct {
	client *history.Client
}

func (r remoteHistories) Histories(int64) ([]domain.LearningRecord, error) {
	return r.client.Histories()
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		// Test connection
		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		// Connection successful
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations applied")
	return nil
}
