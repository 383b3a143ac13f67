package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the meetmii services, loaded from
// environment variables. Every binary loads the full struct and uses the
// sections it needs.
type Config struct {
	Environment string

	Server     ServerConfig
	Logging    LoggingConfig
	MySQL      MySQLConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Clickhouse ClickhouseConfig
	JWT        JWTConfig
	Gemini     GeminiConfig
	QR         QRConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

type MySQLConfig struct {
	DSN string
}

type RedisConfig struct {
	URL      string
	DB       int
	PoolSize int
}

type KafkaConfig struct {
	Brokers []string
	// Topic carrying profile scan events.
	Topic string
	// GroupID used by the analytics consumer.
	GroupID string
}

type ClickhouseConfig struct {
	URL      string
	Username string
	Password string
	Database string
}

type JWTConfig struct {
	Secret        string
	ExpireMinutes int
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type QRConfig struct {
	// Domain is the public profile host encoded into QR codes.
	Domain string
}

// Load builds Config from the environment with development defaults.
// A .env file in the working directory is honoured when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Environment: GetEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Logging: LoggingConfig{
			Level:  GetEnv("LOG_LEVEL", "info"),
			Format: GetEnv("LOG_FORMAT", "console"),
		},
		MySQL: MySQLConfig{
			DSN: GetEnv("MYSQL_DSN", "meetmii:meetmii@tcp(localhost:3306)/meetmii?charset=utf8mb4&parseTime=True&loc=UTC"),
		},
		Redis: RedisConfig{
			URL:      GetEnv("REDIS_URL", "redis://localhost:6379"),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 20),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(GetEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   GetEnv("KAFKA_SCAN_TOPIC", "qr-scanned"),
			GroupID: GetEnv("KAFKA_GROUP_ID", "analytics"),
		},
		Clickhouse: ClickhouseConfig{
			URL:      GetEnv("CLICKHOUSE_URL", "localhost:9000"),
			Username: GetEnv("CLICKHOUSE_USERNAME", "default"),
			Password: os.Getenv("CLICKHOUSE_PASSWORD"),
			Database: GetEnv("CLICKHOUSE_DATABASE", "meetmii"),
		},
		JWT: JWTConfig{
			Secret:        GetEnv("JWT_SECRET_KEY", "change-me"),
			ExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 30),
		},
		Gemini: GeminiConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Model:   GetEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			BaseURL: GetEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		},
		QR: QRConfig{
			Domain: GetEnv("QR_PROFILE_DOMAIN", "meetmii.com"),
		},
	}
}

// TokenExpiry returns the configured JWT lifetime.
func (c *Config) TokenExpiry() time.Duration {
	return time.Duration(c.JWT.ExpireMinutes) * time.Minute
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return !c.IsProduction()
}

// GetEnv returns the value of key or def when unset or empty.
func GetEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
