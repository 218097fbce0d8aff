package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerHost     string
	SurveyPort     string
	AdminPort      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64
	PublicOrigin   string
	TokenTTL       time.Duration

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers  []string
	KafkaGroupID  string
	FeedbackTopic string

	// Identity provider (admin auth is fully delegated)
	IdPIssuer       string
	IdPClientID     string
	IdPClientSecret string

	// Stats
	StatsCacheTTL   time.Duration
	StatsTopReasons int

	// Catalog / privacy rule overrides
	QuestionCatalogPath string
	PrivacyRulesPath    string

	// Admin gateway
	AdminRequestTimeout time.Duration
	AdminRateLimitRPS   int
	AdminRateLimitBurst int
}

func Load() *Config {
	return &Config{
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		SurveyPort:     getEnv("SURVEY_SERVICE_PORT", "8080"),
		AdminPort:      getEnv("ADMIN_SERVICE_PORT", "8081"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1*1024*1024)),
		PublicOrigin:   getEnv("PUBLIC_ORIGIN", "http://localhost:5173"),
		TokenTTL:       getDuration("LINK_TOKEN_TTL", 24*time.Hour),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "civicpulse"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "civicpulse123"),
		PostgresDB:       getEnv("POSTGRES_DB", "civicpulse"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:  getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:  getEnv("KAFKA_GROUP_ID", "civicpulse-feedback"),
		FeedbackTopic: getEnv("FEEDBACK_EVENTS_TOPIC", "feedback-events"),

		IdPIssuer:       getEnv("IDP_ISSUER", ""),
		IdPClientID:     getEnv("IDP_CLIENT_ID", ""),
		IdPClientSecret: getEnv("IDP_CLIENT_SECRET", ""),

		StatsCacheTTL:   getDuration("STATS_CACHE_TTL", 5*time.Minute),
		StatsTopReasons: getIntEnv("STATS_TOP_REASONS", 5),

		QuestionCatalogPath: getEnv("QUESTION_CATALOG_PATH", ""),
		PrivacyRulesPath:    getEnv("PRIVACY_RULES_PATH", ""),

		AdminRequestTimeout: getDuration("ADMIN_REQUEST_TIMEOUT", 10*time.Second),
		AdminRateLimitRPS:   getIntEnv("ADMIN_RATE_LIMIT_RPS", 50),
		AdminRateLimitBurst: getIntEnv("ADMIN_RATE_LIMIT_BURST", 100),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return []string{value}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
