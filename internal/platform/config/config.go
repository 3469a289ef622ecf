package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"rhmaster/internal/domain/payroll"
)

type Config struct {
	Addr                 string
	Environment          string
	LogLevel             string
	DatabaseURL          string
	RemotePingTimeout    time.Duration
	RunMigrations        bool
	LocalSnapshotPath    string
	LocalSnapshotKey     string
	SyncInterval         time.Duration
	AbsencePolicy        string
	OrphanRecordPolicy   string
	JWTSecret            string
	OperatorEmail        string
	OperatorPasswordHash string
	TokenTTL             time.Duration
	MaxBodyBytes         int64
}

// Load reads the environment. A .env file in the working directory, when
// present, fills variables that are not already set.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Addr:                 getEnv("APP_ADDR", ":8080"),
		Environment:          getEnv("APP_ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RemotePingTimeout:    getEnvDuration("REMOTE_PING_TIMEOUT", 5*time.Second),
		RunMigrations:        getEnvBool("RUN_MIGRATIONS", true),
		LocalSnapshotPath:    getEnv("LOCAL_SNAPSHOT_PATH", "data/rhmaster.json"),
		LocalSnapshotKey:     getEnv("LOCAL_SNAPSHOT_KEY", ""),
		SyncInterval:         getEnvDuration("SYNC_INTERVAL", 0),
		AbsencePolicy:        getEnv("ABSENCE_POLICY", string(payroll.AbsenceProratedDays)),
		OrphanRecordPolicy:   getEnv("ORPHAN_RECORD_POLICY", string(payroll.OrphanTolerate)),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		OperatorEmail:        getEnv("OPERATOR_EMAIL", ""),
		OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
		TokenTTL:             getEnvDuration("TOKEN_TTL", 8*time.Hour),
		MaxBodyBytes:         int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
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

// AuthEnabled reports whether an operator account is configured. Without
// one the API runs in demo mode.
func (c Config) AuthEnabled() bool {
	return strings.TrimSpace(c.OperatorEmail) != "" && strings.TrimSpace(c.OperatorPasswordHash) != ""
}

func (c Config) Validate() error {
	if _, err := payroll.ParseAbsencePolicy(c.AbsencePolicy); err != nil {
		return fmt.Errorf("ABSENCE_POLICY: %w", err)
	}
	if _, err := payroll.ParseOrphanPolicy(c.OrphanRecordPolicy); err != nil {
		return fmt.Errorf("ORPHAN_RECORD_POLICY: %w", err)
	}
	if c.AuthEnabled() && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required when OPERATOR_EMAIL is set")
	}
	if c.Environment == "production" && !c.AuthEnabled() {
		return fmt.Errorf("OPERATOR_EMAIL and OPERATOR_PASSWORD_HASH must be set in production")
	}
	if strings.TrimSpace(c.LocalSnapshotPath) == "" {
		return fmt.Errorf("LOCAL_SNAPSHOT_PATH is required")
	}
	if c.RemotePingTimeout <= 0 {
		return fmt.Errorf("REMOTE_PING_TIMEOUT must be positive")
	}
	if c.SyncInterval < 0 {
		return fmt.Errorf("SYNC_INTERVAL must not be negative")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	return nil
}
