package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// AppConfig is shared by the dashboard and the report service.
type AppConfig struct {
	LogLevel          string
	LogFile           string // Log destination while the terminal UI owns stdout
	Environment       string
	DatabaseURL       string        // Empty means the built-in sample data set
	ResolverStrategy  string        `validate:"oneof=local remote"`
	ReportServiceURL  string        `validate:"omitempty,url"`
	RemoteTimeout     time.Duration `validate:"gt=0"`
	RosterRefreshSpec string        `validate:"required"`
	SessionResetSpec  string        `validate:"required"`
	TelegramToken     string
	TelegramChatID    int64  // Chat notified when a new session starts; 0 disables
	Headless          bool   // Run without the terminal UI
	ReportListenAddr  string `validate:"required"`
}

var validate = validator.New()

// Load reads the environment, after merging a .env file when one exists.
// Variables already set win over the file.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.LogFile = os.Getenv("LOG_FILE")
	if cfg.LogFile == "" {
		cfg.LogFile = "dashboard.log"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.ResolverStrategy = strings.ToLower(strings.TrimSpace(os.Getenv("RESOLVER_STRATEGY")))
	if cfg.ResolverStrategy == "" {
		cfg.ResolverStrategy = "local"
	}

	cfg.ReportServiceURL = os.Getenv("REPORT_SERVICE_URL")

	cfg.RemoteTimeout = 10 * time.Second
	if v := os.Getenv("REMOTE_TIMEOUT"); v != "" {
		cfg.RemoteTimeout, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REMOTE_TIMEOUT: %w", err)
		}
	}

	cfg.RosterRefreshSpec = os.Getenv("ROSTER_REFRESH_SPEC")
	if cfg.RosterRefreshSpec == "" {
		cfg.RosterRefreshSpec = "@every 1m"
	}

	cfg.SessionResetSpec = os.Getenv("SESSION_RESET_SPEC")
	if cfg.SessionResetSpec == "" {
		cfg.SessionResetSpec = "0 8 * * 1-5" // 8:00 on weekdays
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")

	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		cfg.TelegramChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	}

	if v := os.Getenv("HEADLESS"); v != "" {
		cfg.Headless, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HEADLESS: %w", err)
		}
	}

	cfg.ReportListenAddr = os.Getenv("REPORT_LISTEN_ADDR")
	if cfg.ReportListenAddr == "" {
		cfg.ReportListenAddr = ":8081"
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.ResolverStrategy == "remote" && cfg.ReportServiceURL == "" {
		return nil, fmt.Errorf("REPORT_SERVICE_URL is not set (required for the remote resolver strategy)")
	}

	return cfg, nil
}

// UsesSampleData reports whether no database is configured.
func (c *AppConfig) UsesSampleData() bool {
	return c.DatabaseURL == ""
}
