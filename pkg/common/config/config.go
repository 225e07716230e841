package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	// Local runs keep their settings in a .env file. Missing file is fine.
	_ = godotenv.Load()
}

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64
	APIToken       string

	// Rate limiting
	RateLimitRPS   int
	RateLimitBurst int

	// Reference data (empty path selects the built-in defaults)
	PatternsPath string
	CatalogPath  string

	// Audit trail
	AuditCSVPath string
	AuditToDB    bool

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
	ResultTTL     time.Duration

	// Kafka
	KafkaBrokers         []string
	KafkaGroupID         string
	KafkaEvaluationTopic string

	// External OCR collaborator
	OCRServiceURL   string
	OCRTimeout      time.Duration
	OCRTokenURL     string
	OCRClientID     string
	OCRClientSecret string
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 15*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 10*1024*1024)),
		APIToken:       getEnv("API_TOKEN", ""),

		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),

		PatternsPath: getEnv("PATTERNS_PATH", ""),
		CatalogPath:  getEnv("CATALOG_PATH", ""),

		AuditCSVPath: getEnv("AUDIT_CSV_PATH", "epimind_audit.csv"),
		AuditToDB:    getBoolEnv("AUDIT_TO_DB", false),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "epimind"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "epimind123"),
		PostgresDB:       getEnv("POSTGRES_DB", "epimind"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		ResultTTL:     getDuration("RESULT_TTL", 24*time.Hour),

		KafkaBrokers:         getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:         getEnv("KAFKA_GROUP_ID", "epimind"),
		KafkaEvaluationTopic: getEnv("KAFKA_TOPIC_EVALUATIONS", "epimind.evaluations"),

		OCRServiceURL:   getEnv("OCR_SERVICE_URL", ""),
		OCRTimeout:      getDuration("OCR_TIMEOUT", 30*time.Second),
		OCRTokenURL:     getEnv("OCR_TOKEN_URL", ""),
		OCRClientID:     getEnv("OCR_CLIENT_ID", ""),
		OCRClientSecret: getEnv("OCR_CLIENT_SECRET", ""),
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

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
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
