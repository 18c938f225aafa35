package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	PublicBaseURL  string
	DatabaseURL    string
	UseMemoryQueue bool
	WorkerCount    int

	CORSAllowedOrigins []string
	AdminJWTSecret     string

	// Rate limiting for booking endpoints, per client IP
	BookingRateLimit float64
	BookingRateBurst int

	// Scheduling
	SlotGranularityMinutes int
	BufferMinutes          int

	// Spa identity used in confirmations and manager alerts
	SpaName         string
	SpaAddress      string
	SpaPhone        string
	SpaManagerEmail string
	SpaTimezone     string

	// Redis (spa profile store)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// AWS (SQS notification queue, SES email)
	AWSRegion            string
	AWSAccessKeyID       string
	AWSSecretAccessKey   string
	AWSEndpointOverride  string
	NotificationQueueURL string

	// Email
	EmailProvider     string // "sendgrid", "ses" or "stub"
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string

	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		PublicBaseURL:  getEnv("PUBLIC_BASE_URL", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", false),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 2),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),

		BookingRateLimit: getEnvAsFloat("BOOKING_RATE_LIMIT", 5),
		BookingRateBurst: getEnvAsInt("BOOKING_RATE_BURST", 10),

		SlotGranularityMinutes: getEnvAsInt("SLOT_GRANULARITY_MINUTES", 15),
		BufferMinutes:          getEnvAsInt("BUFFER_MINUTES", 15),

		SpaName:         getEnv("SPA_NAME", "Luxury Spa & Wellness"),
		SpaAddress:      getEnv("SPA_ADDRESS", "123 Wellness Street, City, State 12345"),
		SpaPhone:        getEnv("SPA_PHONE", "+1 (555) 123-4567"),
		SpaManagerEmail: getEnv("SPA_MANAGER_EMAIL", "manager@yourspa.com"),
		SpaTimezone:     getEnv("SPA_TIMEZONE", "America/New_York"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AWSRegion:            getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:       getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride:  getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		NotificationQueueURL: getEnv("NOTIFICATION_QUEUE_URL", ""),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "noreply@yourspa.com"),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Luxury Spa & Wellness"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", "noreply@yourspa.com"),
		SESFromName:       getEnv("SES_FROM_NAME", "Luxury Spa & Wellness"),

		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
