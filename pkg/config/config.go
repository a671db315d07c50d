package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API      APIConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	HTTP     HTTPConfig
	Engine   EngineConfig
	Alerting AlertingConfig
	SMTP     SMTPConfig
}

type APIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers       []string
	TopicAlerts   string
	NumPartitions int
}

type HTTPConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// EngineConfig controls the aggregation passes. Source selects where
// readings come from: "http" for the upstream PlantCare API, "postgres"
// for a local database.
type EngineConfig struct {
	Source          string
	Timeframe       string
	RefreshInterval time.Duration
	ReadingLimit    int
}

type AlertingConfig struct {
	SeenTTL      time.Duration
	EvalInterval time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	config := &Config{
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", "http://localhost:3000"),
			Token:   getEnv("API_TOKEN", ""),
			Timeout: getEnvAsDuration("API_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "plantcare_user"),
			Password: getEnv("DB_PASSWORD", "plantcare_pass"),
			DBName:   getEnv("DB_NAME", "plantcare_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicAlerts:   getEnv("KAFKA_TOPIC_ALERTS", "plantcare.alerts"),
			NumPartitions: getEnvAsInt("KAFKA_NUM_PARTITIONS", 10),
		},
		HTTP: HTTPConfig{
			Port:            getEnvAsInt("HTTP_PORT", 8090),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Engine: EngineConfig{
			Source:          getEnv("ENGINE_SOURCE", "http"),
			Timeframe:       getEnv("ENGINE_TIMEFRAME", "hour"),
			RefreshInterval: getEnvAsDuration("ENGINE_REFRESH_INTERVAL", 30*time.Second),
			ReadingLimit:    getEnvAsInt("ENGINE_READING_LIMIT", 200),
		},
		Alerting: AlertingConfig{
			SeenTTL:      getEnvAsDuration("ALERT_SEEN_TTL", 24*time.Hour),
			EvalInterval: getEnvAsDuration("ALERT_EVAL_INTERVAL", time.Minute),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "plantcare@example.com"),
			To:       getEnv("SMTP_TO", "admin@example.com"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
