package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPerformanceBands = "insatisfatorio:0,abaixo_expectativas:40,atende_expectativas:60,supera_expectativas:75,excepcional:90"
	DefaultBonusMultipliers = "insatisfatorio:0,abaixo_expectativas:0,atende_expectativas:1,supera_expectativas:1.5,excepcional:2"
)

type Config struct {
	Addr              string
	DatabaseURL       string
	JWTSecret         string
	TokenTTL          time.Duration
	DataEncryptionKey string
	Environment       string
	LogLevel          string
	BaseURL           string

	SeedAdminEmail    string
	SeedAdminPassword string
	RunMigrations     bool
	RunSeed           bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	CacheSize     int

	EmailFrom      string
	EmailEnabled   bool
	EmailSendDelay time.Duration
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPassword   string
	SMTPUseTLS     bool

	RatingScaleMin        float64
	RatingScaleMax        float64
	DivergenceThreshold   float64
	ConsensusReminderDays int
	PerformanceBands      string
	BonusMultipliers      string
	BonusEligibilityRule  string

	DiscrepancyAcceptablePct float64
	DiscrepancyAlertPct      float64

	SchedulerEnabled      bool
	DiscrepancyCron       string
	ConsensusReminderCron string
	GoalReminderCron      string
	GoalReminderWindow    int

	MaxBodyBytes       int64
	RateLimitPerMinute int
	MetricsEnabled     bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first without overriding variables that are
// already set.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "config: ignoring .env: %v\n", err)
	}
	return Config{
		Addr:              getEnv("APP_ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		TokenTTL:          getEnvDuration("TOKEN_TTL", 12*time.Hour),
		DataEncryptionKey: getEnv("DATA_ENCRYPTION_KEY", ""),
		Environment:       getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		BaseURL:           getEnv("APP_BASE_URL", "http://localhost:8080"),

		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
		RunMigrations:     getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:           getEnvBool("RUN_SEED", true),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", 5*time.Minute),
		CacheSize:     getEnvInt("CACHE_SIZE", 512),

		EmailFrom:      getEnv("EMAIL_FROM", "avd@uisa.com.br"),
		EmailEnabled:   getEnvBool("EMAIL_ENABLED", false),
		EmailSendDelay: getEnvDuration("EMAIL_SEND_DELAY", 500*time.Millisecond),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnvInt("SMTP_PORT", 587),
		SMTPUser:       getEnv("SMTP_USER", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:     getEnvBool("SMTP_USE_TLS", true),

		RatingScaleMin:        getEnvFloat("RATING_SCALE_MIN", 1),
		RatingScaleMax:        getEnvFloat("RATING_SCALE_MAX", 5),
		DivergenceThreshold:   getEnvFloat("CONSENSUS_DIVERGENCE_THRESHOLD", 20),
		ConsensusReminderDays: getEnvInt("CONSENSUS_REMINDER_DAYS", 3),
		PerformanceBands:      getEnv("PERFORMANCE_BANDS", DefaultPerformanceBands),
		BonusMultipliers:      getEnv("BONUS_MULTIPLIERS", DefaultBonusMultipliers),
		BonusEligibilityRule:  getEnv("BONUS_ELIGIBILITY_RULE", "all"),

		DiscrepancyAcceptablePct: getEnvFloat("DISCREPANCY_ACCEPTABLE_PCT", 10),
		DiscrepancyAlertPct:      getEnvFloat("DISCREPANCY_ALERT_PCT", 20),

		SchedulerEnabled:      getEnvBool("SCHEDULER_ENABLED", true),
		DiscrepancyCron:       getEnv("DISCREPANCY_CRON", "0 2 * * *"),
		ConsensusReminderCron: getEnv("CONSENSUS_REMINDER_CRON", "0 9 * * *"),
		GoalReminderCron:      getEnv("GOAL_REMINDER_CRON", "0 8 * * 1"),
		GoalReminderWindow:    getEnvInt("GOAL_REMINDER_WINDOW_DAYS", 7),

		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.IsProduction() && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.IsProduction() && c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
		return fmt.Errorf("SEED_ADMIN_PASSWORD must be set or RUN_SEED disabled in production")
	}
	if c.RatingScaleMin < 0 || c.RatingScaleMax <= c.RatingScaleMin {
		return fmt.Errorf("RATING_SCALE_MIN must be non-negative and below RATING_SCALE_MAX")
	}
	if c.DivergenceThreshold < 0 || c.DivergenceThreshold > 100 {
		return fmt.Errorf("CONSENSUS_DIVERGENCE_THRESHOLD must be between 0 and 100")
	}
	if c.ConsensusReminderDays <= 0 {
		return fmt.Errorf("CONSENSUS_REMINDER_DAYS must be positive")
	}
	if c.DiscrepancyAcceptablePct < 0 || c.DiscrepancyAlertPct < c.DiscrepancyAcceptablePct {
		return fmt.Errorf("DISCREPANCY_ALERT_PCT must be at least DISCREPANCY_ACCEPTABLE_PCT")
	}
	switch c.BonusEligibilityRule {
	case "all", "any":
	default:
		return fmt.Errorf("BONUS_ELIGIBILITY_RULE must be all or any")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("CACHE_SIZE must be positive")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	return nil
}
