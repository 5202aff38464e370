// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AuthServiceConfig provides settings needed by staff sign-in.
type AuthServiceConfig interface {
	JWTConfig
	GetAccessTokenTTL() time.Duration
	GetStaffUsername() string
	GetStaffPasswordHash() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// RateLimitConfig provides settings for the public intake rate limiter.
type RateLimitConfig interface {
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

// SchedulerConfig provides Redis and asynq settings.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetSyncPendingCron() string
}

// LeapConfig provides settings for the LEAP CRM HTTP client.
type LeapConfig interface {
	GetLeapBaseURL() string
	GetLeapAPIToken() string
	GetLeapTimeout() time.Duration
	GetLeapLookupCacheTTL() time.Duration
}

// SyncConfig provides the CRM sync switch and the routing defaults applied to leads.
type SyncConfig interface {
	IsLeapSyncEnabled() bool
	GetDefaultTradeID() int64
	GetDefaultWorkTypeID() int64
	GetDefaultRepID() int64
	GetDefaultDivisionID() int64
	GetDefaultEventName() string
	GetResyncDelay() time.Duration
}

// BookingConfig provides the booking schedule source.
type BookingConfig interface {
	GetBookingTimezone() string
	GetBookingScheduleFile() string
}

// SMTPConfig provides settings for outgoing e-mail.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFromAddress() string
	GetSMTPFromName() string
	IsSMTPEnabled() bool
}

// TelemetryConfig provides OpenTelemetry exporter settings.
type TelemetryConfig interface {
	IsTelemetryEnabled() bool
	GetOTLPEndpoint() string
	GetSamplingRatio() float64
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	JWTAccessSecret     string
	AccessTokenTTL      time.Duration
	StaffUsername       string
	StaffPasswordHash   string
	CORSAllowAll        bool
	CORSOrigins         []string
	CORSAllowCreds      bool
	RateLimitRPS        float64
	RateLimitBurst      int
	RedisURL            string
	RedisTLSInsecure    bool
	AsynqQueueName      string
	AsynqConcurrency    int
	SyncPendingCron     string
	LeapSyncEnabled     bool
	LeapBaseURL         string
	LeapAPIToken        string
	LeapTimeout         time.Duration
	LeapLookupCacheTTL  time.Duration
	DefaultTradeID      int64
	DefaultWorkTypeID   int64
	DefaultRepID        int64
	DefaultDivisionID   int64
	DefaultEventName    string
	ResyncDelay         time.Duration
	BookingTimezone     string
	BookingScheduleFile string
	SMTPHost            string
	SMTPPort            int
	SMTPUsername        string
	SMTPPassword        string
	SMTPFromAddress     string
	SMTPFromName        string
	TelemetryEnabled    bool
	OTLPEndpoint        string
	SamplingRatio       float64
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// AuthServiceConfig implementation
func (c *Config) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }
func (c *Config) GetStaffUsername() string         { return c.StaffUsername }
func (c *Config) GetStaffPasswordHash() string     { return c.StaffPasswordHash }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// RateLimitConfig implementation
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int   { return c.AsynqConcurrency }
func (c *Config) GetSyncPendingCron() string { return c.SyncPendingCron }

// LeapConfig implementation
func (c *Config) GetLeapBaseURL() string               { return c.LeapBaseURL }
func (c *Config) GetLeapAPIToken() string              { return c.LeapAPIToken }
func (c *Config) GetLeapTimeout() time.Duration        { return c.LeapTimeout }
func (c *Config) GetLeapLookupCacheTTL() time.Duration { return c.LeapLookupCacheTTL }

// SyncConfig implementation
func (c *Config) IsLeapSyncEnabled() bool       { return c.LeapSyncEnabled }
func (c *Config) GetDefaultTradeID() int64      { return c.DefaultTradeID }
func (c *Config) GetDefaultWorkTypeID() int64   { return c.DefaultWorkTypeID }
func (c *Config) GetDefaultRepID() int64        { return c.DefaultRepID }
func (c *Config) GetDefaultDivisionID() int64   { return c.DefaultDivisionID }
func (c *Config) GetDefaultEventName() string   { return c.DefaultEventName }
func (c *Config) GetResyncDelay() time.Duration { return c.ResyncDelay }

// BookingConfig implementation
func (c *Config) GetBookingTimezone() string     { return c.BookingTimezone }
func (c *Config) GetBookingScheduleFile() string { return c.BookingScheduleFile }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string        { return c.SMTPHost }
func (c *Config) GetSMTPPort() int           { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string    { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string    { return c.SMTPPassword }
func (c *Config) GetSMTPFromAddress() string { return c.SMTPFromAddress }
func (c *Config) GetSMTPFromName() string    { return c.SMTPFromName }
func (c *Config) IsSMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFromAddress != ""
}

// TelemetryConfig implementation
func (c *Config) IsTelemetryEnabled() bool  { return c.TelemetryEnabled }
func (c *Config) GetOTLPEndpoint() string   { return c.OTLPEndpoint }
func (c *Config) GetSamplingRatio() float64 { return c.SamplingRatio }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:9000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	resyncDelay, err := time.ParseDuration(getEnv("SYNC_RESYNC_DELAY", "500ms"))
	if err != nil || resyncDelay <= 0 {
		return nil, fmt.Errorf("SYNC_RESYNC_DELAY must be a positive duration such as 500ms")
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		JWTAccessSecret:     getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:      mustDuration(getEnv("JWT_ACCESS_TTL", "12h")),
		StaffUsername:       getEnv("STAFF_USERNAME", "admin"),
		StaffPasswordHash:   getEnv("STAFF_PASSWORD_HASH", ""),
		CORSAllowAll:        corsAllowAll,
		CORSOrigins:         corsOrigins,
		CORSAllowCreds:      strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		RateLimitRPS:        mustFloat(getEnv("RATE_LIMIT_RPS", "2")),
		RateLimitBurst:      int(mustInt64(getEnv("RATE_LIMIT_BURST", "20"))),
		RedisURL:            getEnv("REDIS_URL", ""),
		RedisTLSInsecure:    strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:      getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:    int(mustInt64(getEnv("ASYNQ_CONCURRENCY", "5"))),
		SyncPendingCron:     getEnv("SYNC_PENDING_CRON", ""),
		LeapSyncEnabled:     strings.EqualFold(getEnv("ENABLE_LEAP_SYNC", "false"), "true"),
		LeapBaseURL:         getEnv("LEAP_API_BASE_URL", "https://api.jobprogress.com/api/v3"),
		LeapAPIToken:        getEnv("LEAP_API_TOKEN", ""),
		LeapTimeout:         time.Duration(mustInt64(getEnv("LEAP_API_TIMEOUT", "30000"))) * time.Millisecond,
		LeapLookupCacheTTL:  mustDuration(getEnv("LEAP_LOOKUP_CACHE_TTL", "10m")),
		DefaultTradeID:      mustInt64(getEnv("LEAP_DEFAULT_TRADE_ID", "105")),
		DefaultWorkTypeID:   mustInt64(getEnv("LEAP_DEFAULT_WORK_TYPE_ID", "91139")),
		DefaultRepID:        mustInt64(getEnv("LEAP_DEFAULT_REP_ID", "88443")),
		DefaultDivisionID:   mustInt64(getEnv("LEAP_DEFAULT_DIVISION_ID", "6496")),
		DefaultEventName:    getEnv("DEFAULT_EVENT_NAME", "Web Form Submission"),
		ResyncDelay:         resyncDelay,
		BookingTimezone:     getEnv("BOOKING_TIMEZONE", "America/Chicago"),
		BookingScheduleFile: getEnv("BOOKING_SCHEDULE_FILE", ""),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            int(mustInt64(getEnv("SMTP_PORT", "587"))),
		SMTPUsername:        getEnv("SMTP_USERNAME", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		SMTPFromAddress:     getEnv("SMTP_FROM_ADDRESS", ""),
		SMTPFromName:        getEnv("SMTP_FROM_NAME", "EventCollect"),
		TelemetryEnabled:    strings.EqualFold(getEnv("OTEL_ENABLED", "false"), "true"),
		OTLPEndpoint:        getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		SamplingRatio:       mustFloat(getEnv("OTEL_SAMPLING_RATIO", "1")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.LeapSyncEnabled && cfg.LeapAPIToken == "" {
		return nil, fmt.Errorf("LEAP_API_TOKEN is required when ENABLE_LEAP_SYNC is true")
	}
	if cfg.LeapTimeout <= 0 {
		return nil, fmt.Errorf("LEAP_API_TIMEOUT must be a positive number of milliseconds")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.SamplingRatio < 0 || cfg.SamplingRatio > 1 {
		cfg.SamplingRatio = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
