package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr              string
	DatabaseURL       string
	AppSecret         string
	DataEncryptionKey string
	PublicBaseURL     string
	Environment       string

	TwilioAuthToken      string
	SkipTwilioValidation bool

	AnthropicAPIKey string
	AnthropicModel  string
	AITimeout       time.Duration

	PinTTL               time.Duration
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	AuditRetention       time.Duration

	MaxBodyBytes       int64
	MaxInputLength     int
	ReplyCharLimit     int
	RateLimitPerMinute int

	RunMigrations bool

	// Statutory payroll parameters. Rates are basis points, amounts kobo.
	PensionEmployeeBp   int64
	PensionEmployerBp   int64
	NHFBp               int64
	NHFMinBasicKobo     int64
	ReliefBp            int64
	ReliefCapAnnualKobo int64
	TaxBracketsJSON     string
}

func Load() Config {
	return Config{
		Addr:              getEnv("APP_ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		AppSecret:         getEnv("APP_SECRET", ""),
		DataEncryptionKey: getEnv("DATA_ENCRYPTION_KEY", ""),
		PublicBaseURL:     getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		Environment:       getEnv("APP_ENV", "development"),

		TwilioAuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
		SkipTwilioValidation: getEnvBool("SKIP_TWILIO_VALIDATION", false),

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		AITimeout:       getEnvDuration("AI_TIMEOUT", 5*time.Second),

		PinTTL:               getEnvDuration("PIN_TTL", 10*time.Minute),
		SessionTTL:           getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		AuditRetention:       getEnvDuration("AUDIT_RETENTION", 90*24*time.Hour),

		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 65536)),
		MaxInputLength:     getEnvInt("MAX_INPUT_LENGTH", 500),
		ReplyCharLimit:     getEnvInt("REPLY_CHAR_LIMIT", 4096),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		RunMigrations: getEnvBool("RUN_MIGRATIONS", true),

		PensionEmployeeBp:   getEnvInt64("PENSION_EMPLOYEE_BP", 800),
		PensionEmployerBp:   getEnvInt64("PENSION_EMPLOYER_BP", 1000),
		NHFBp:               getEnvInt64("NHF_BP", 250),
		NHFMinBasicKobo:     getEnvInt64("NHF_MIN_BASIC_KOBO", 0),
		ReliefBp:            getEnvInt64("RELIEF_BP", 2000),
		ReliefCapAnnualKobo: getEnvInt64("RELIEF_CAP_ANNUAL_KOBO", 50_000_000),
		TaxBracketsJSON:     getEnv("TAX_BRACKETS_JSON", ""),
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

func getEnvInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
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

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.AppSecret) == "" {
		return fmt.Errorf("APP_SECRET is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
		if c.SkipTwilioValidation {
			return fmt.Errorf("SKIP_TWILIO_VALIDATION must not be set in production")
		}
	}
	if c.PinTTL <= 0 {
		return fmt.Errorf("PIN_TTL must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.ReplyCharLimit < 160 {
		return fmt.Errorf("REPLY_CHAR_LIMIT must be at least 160")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}
