package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName       string
	AppVersion    string
	Environment   string
	HTTPAddr      string
	PublicBaseURL string
	FrontendURL   string

	OTLPEndpoint string

	// NodeID is the snowflake node of this process, 0..1023. Every API
	// replica needs its own.
	NodeID int64

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Auth    AuthConfig
	Redis   RedisConfig
	Email   EmailConfig
	Report  ReportQueueConfig
	Metrics MetricsConfig
}

type AuthConfig struct {
	TokenSecret   string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ActivationTTL time.Duration
	// RateLimit is the number of token requests per minute per client.
	RateLimit int
	Password  PasswordConfig
}

// PasswordConfig is the password policy. Zero values fall back to the
// password package defaults.
type PasswordConfig struct {
	MinLength     int
	HashTime      int
	HashMemoryKiB int
	HashThreads   int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c EmailConfig) Enabled() bool {
	return strings.TrimSpace(c.Host) != ""
}

const (
	QueueRedis = "redis"
	QueueKafka = "kafka"
)

type ReportQueueConfig struct {
	Backend      string
	RedisListKey string
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
	Workers      int
}

type MetricsConfig struct {
	Enabled   bool
	Exporter  string
	Endpoint  string
	AuthToken string
	Interval  time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	secret := strings.TrimSpace(getenv("AUTH_TOKEN_SECRET", ""))
	if secret == "" && environment != "production" {
		secret = "birracraft-dev-secret"
	}

	return Config{
		AppName:       getenv("APP_SERVICE", "birracraft"),
		AppVersion:    getenv("APP_VERSION", "0.1.0"),
		Environment:   environment,
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		PublicBaseURL: strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		FrontendURL:   strings.TrimRight(getenv("FRONTEND_URL", "http://localhost:3000"), "/"),
		OTLPEndpoint:  getenv("OTLP_ENDPOINT", "localhost:4317"),
		NodeID:        int64(getenvInt("SNOWFLAKE_NODE_ID", 1)),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "birracraft"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		Auth: AuthConfig{
			TokenSecret:   secret,
			AccessTTL:     getenvDuration("AUTH_ACCESS_TTL", 5*time.Minute),
			RefreshTTL:    getenvDuration("AUTH_REFRESH_TTL", 24*time.Hour),
			ActivationTTL: getenvDuration("AUTH_ACTIVATION_TTL", 72*time.Hour),
			RateLimit:     getenvInt("AUTH_RATE_LIMIT", 20),
			Password: PasswordConfig{
				MinLength:     getenvInt("AUTH_PASSWORD_MIN_LENGTH", 8),
				HashTime:      getenvInt("AUTH_PASSWORD_HASH_TIME", 1),
				HashMemoryKiB: getenvInt("AUTH_PASSWORD_HASH_MEMORY_KIB", 64*1024),
				HashThreads:   getenvInt("AUTH_PASSWORD_HASH_THREADS", 4),
			},
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Email: EmailConfig{
			Host:     strings.TrimSpace(getenv("SMTP_HOST", "")),
			Port:     getenvInt("SMTP_PORT", 587),
			Username: getenv("SMTP_USERNAME", ""),
			Password: getenv("SMTP_PASSWORD", ""),
			From:     getenv("SMTP_FROM", "no-reply@birracraft.local"),
		},
		Report: ReportQueueConfig{
			Backend:      strings.ToLower(getenv("REPORT_QUEUE_BACKEND", QueueRedis)),
			RedisListKey: getenv("REPORT_QUEUE_REDIS_KEY", "birracraft:reports"),
			KafkaBrokers: splitList(getenv("REPORT_QUEUE_KAFKA_BROKERS", "")),
			KafkaTopic:   getenv("REPORT_QUEUE_KAFKA_TOPIC", "birracraft.reports"),
			KafkaGroupID: getenv("REPORT_QUEUE_KAFKA_GROUP", "birracraft-report-worker"),
			Workers:      getenvInt("REPORT_WORKERS", 1),
		},
		Metrics: MetricsConfig{
			Enabled:   getenvBool("BIZ_METRICS_ENABLED", false),
			Exporter:  strings.ToLower(getenv("BIZ_METRICS_EXPORTER", "")),
			Endpoint:  strings.TrimSpace(getenv("BIZ_METRICS_ENDPOINT", "")),
			AuthToken: strings.TrimSpace(getenv("BIZ_METRICS_AUTH_TOKEN", "")),
			Interval:  getenvDuration("BIZ_METRICS_INTERVAL", time.Minute),
		},
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
