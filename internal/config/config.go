package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Store struct {
		Driver string // "postgres" or "memory"
		DSN    string
	}
	Kafka struct {
		Broker  string
		Topic   string
		GroupID string
	}
	API struct {
		Port     string
		BasePath string
	}
	Logging struct {
		Dir   string
		Level string
	}
	Crisis struct {
		Level1TimeoutMinutes int
		Level2TimeoutMinutes int
		HistoryWindowDays    int
		ResourceFile         string
	}
	Dispatch struct {
		QueueSize  int
		MaxWorkers int
	}
	Audit struct {
		QueueSize int
	}
	Email struct {
		SMTPServer string
		SMTPPort   int
		Username   string
		Password   string
		FromName   string
	}
	SMS struct {
		AccountSID string
		AuthToken  string
		FromNumber string
	}
	RateLimit struct {
		TelegramRateLimiter int
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	// Store settings
	cfg.Store.Driver = os.Getenv("STORE_DRIVER")
	cfg.Store.DSN = os.Getenv("DB_DSN")

	// Kafka settings (consumer is disabled when no broker is configured)
	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")
	cfg.Kafka.GroupID = os.Getenv("KAFKA_GROUP_ID")

	// API settings
	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")

	// Logging settings
	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	// Crisis engine settings
	if m, err := strconv.Atoi(os.Getenv("ESCALATION_LEVEL1_MINUTES")); err == nil {
		cfg.Crisis.Level1TimeoutMinutes = m
	}
	if m, err := strconv.Atoi(os.Getenv("ESCALATION_LEVEL2_MINUTES")); err == nil {
		cfg.Crisis.Level2TimeoutMinutes = m
	}
	if d, err := strconv.Atoi(os.Getenv("HISTORY_WINDOW_DAYS")); err == nil {
		cfg.Crisis.HistoryWindowDays = d
	}
	cfg.Crisis.ResourceFile = os.Getenv("RESOURCE_FILE")

	// Dispatch worker settings
	if qs, err := strconv.Atoi(os.Getenv("DISPATCH_QUEUE_SIZE")); err == nil {
		cfg.Dispatch.QueueSize = qs
	}
	if mw, err := strconv.Atoi(os.Getenv("DISPATCH_MAX_WORKERS")); err == nil {
		cfg.Dispatch.MaxWorkers = mw
	}
	if qs, err := strconv.Atoi(os.Getenv("AUDIT_QUEUE_SIZE")); err == nil {
		cfg.Audit.QueueSize = qs
	}

	// Email settings
	cfg.Email.SMTPServer = os.Getenv("EMAIL_SMTP_SERVER")
	if p, err := strconv.Atoi(os.Getenv("EMAIL_SMTP_PORT")); err == nil {
		cfg.Email.SMTPPort = p
	}
	cfg.Email.Username = os.Getenv("EMAIL_USERNAME")
	cfg.Email.Password = os.Getenv("EMAIL_PASSWORD")
	cfg.Email.FromName = os.Getenv("EMAIL_FROM_NAME")

	// SMS settings
	cfg.SMS.AccountSID = os.Getenv("SMS_ACCOUNT_SID")
	cfg.SMS.AuthToken = os.Getenv("SMS_AUTH_TOKEN")
	cfg.SMS.FromNumber = os.Getenv("SMS_FROM_NUMBER")

	// Rate limit settings
	if r, err := strconv.Atoi(os.Getenv("TELEGRAM_RATE_LIMIT")); err == nil {
		cfg.RateLimit.TelegramRateLimiter = r
	}

	// Apply defaults
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "postgres"
	}
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api/v0"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Crisis.Level1TimeoutMinutes == 0 {
		cfg.Crisis.Level1TimeoutMinutes = 5
	}
	if cfg.Crisis.Level2TimeoutMinutes == 0 {
		cfg.Crisis.Level2TimeoutMinutes = 15
	}
	if cfg.Crisis.HistoryWindowDays == 0 {
		cfg.Crisis.HistoryWindowDays = 30
	}
	if cfg.Dispatch.QueueSize == 0 {
		cfg.Dispatch.QueueSize = 500
	}
	if cfg.Dispatch.MaxWorkers == 0 {
		cfg.Dispatch.MaxWorkers = 10
	}
	if cfg.Audit.QueueSize == 0 {
		cfg.Audit.QueueSize = 1000
	}
	if cfg.RateLimit.TelegramRateLimiter == 0 {
		cfg.RateLimit.TelegramRateLimiter = 20
	}

	// Validate required settings
	missing := []string{}
	if cfg.Store.Driver == "postgres" && cfg.Store.DSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if cfg.Kafka.Broker != "" && cfg.Kafka.Topic == "" {
		missing = append(missing, "KAFKA_TOPIC")
	}
	if cfg.Crisis.Level2TimeoutMinutes <= cfg.Crisis.Level1TimeoutMinutes {
		return Config{}, fmt.Errorf("ESCALATION_LEVEL2_MINUTES (%d) must exceed ESCALATION_LEVEL1_MINUTES (%d)",
			cfg.Crisis.Level2TimeoutMinutes, cfg.Crisis.Level1TimeoutMinutes)
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	return cfg, nil
}
