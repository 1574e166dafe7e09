package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	BotToken string
	APIAddr  string

	// APIBaseURL switches the bot to remote mode: word supply and learning
	// history go through the HTTP API instead of the local database.
	APIBaseURL string
	APIToken   string

	LocalStorePath string

	Database DatabaseConfig
	Study    StudyConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// StudyConfig holds the timing values of the study session engine.
// All values are milliseconds.
type StudyConfig struct {
	FlashcardLimitMs int
	FlashcardStepMs  int
	FlashcardGraceMs int
	QuizLimitMs      int
	QuizStepMs       int
	QuizReviewMs     int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:       os.Getenv("BOT_TOKEN"),
		APIAddr:        getEnv("API_ADDR", ":8080"),
		APIBaseURL:     os.Getenv("API_BASE_URL"),
		APIToken:       os.Getenv("API_TOKEN"),
		LocalStorePath: getEnv("LOCAL_STORE_PATH", "eitan_local.db"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "eitan"),
			User:     getEnv("DB_USER", "eitan"),
			Password: os.Getenv("DB_PASSWORD"),
		},
		Study: StudyConfig{
			FlashcardLimitMs: getEnvInt("FLASHCARD_LIMIT_MS", 5000),
			FlashcardStepMs:  getEnvInt("FLASHCARD_STEP_MS", 1000),
			FlashcardGraceMs: getEnvInt("FLASHCARD_GRACE_MS", 1000),
			QuizLimitMs:      getEnvInt("QUIZ_LIMIT_MS", 10000),
			QuizStepMs:       getEnvInt("QUIZ_STEP_MS", 100),
			QuizReviewMs:     getEnvInt("QUIZ_REVIEW_MS", 2000),
		},
	}

	// Validate required fields
	if cfg.Database.Password == "" && cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required when API_BASE_URL is not set")
	}
	if cfg.Study.FlashcardStepMs <= 0 || cfg.Study.QuizStepMs <= 0 {
		return nil, fmt.Errorf("countdown step values must be positive")
	}
	if cfg.Study.FlashcardLimitMs <= 0 || cfg.Study.QuizLimitMs <= 0 {
		return nil, fmt.Errorf("countdown limit values must be positive")
	}

	return cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
