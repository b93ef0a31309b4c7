package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig
	Backend       BackendConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Logging       LoggingConfig
	CORS          CORSConfig
	Notifications NotificationsConfig
	RBAC          RBACConfig
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// remote REST API that owns orders, pricing, dispatch and notifications
type BackendConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RetryMax  int
	UserAgent string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	SigningKey string
	Issuer     string
	Expiry     time.Duration
}

type LoggingConfig struct {
	Level      string
	Format     string
	Filename   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type NotificationsConfig struct {
	// "memory" or "redis"
	CacheBackend    string
	CacheTTL        time.Duration
	DefaultPageSize int
	PushChannel     string
	PushQueue       string
	// live items kept per user, oldest dropped first; 0 disables the cap
	LiveLimit int
	// reconcilers unused for this long are evicted every SweepInterval
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

type RBACConfig struct {
	// optional YAML role table; built-in table is used when empty
	PolicyFile string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Backend: BackendConfig{
			BaseURL:   strings.TrimRight(getEnv("BACKEND_BASE_URL", "http://localhost:9000/api"), "/"),
			Timeout:   getEnvDuration("BACKEND_TIMEOUT", 15*time.Second),
			RetryMax:  getEnvInt("BACKEND_RETRY_MAX", 0),
			UserAgent: getEnv("BACKEND_USER_AGENT", "courier-console"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			SigningKey: getEnv("JWT_SIGNING_KEY", "default-signing-key-change-in-production"),
			Issuer:     getEnv("JWT_ISSUER", "courier-backend"),
			Expiry:     getEnvDuration("JWT_EXPIRY", 24*time.Hour),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "text"),
			Filename:   getEnv("LOG_FILE", "logs/console.log"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAge:     getEnvInt("LOG_MAX_AGE_DAYS", 28),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods:   getEnvList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PATCH", "OPTIONS"}),
			AllowedHeaders:   getEnvList("CORS_ALLOWED_HEADERS", []string{"Accept", "Authorization", "Content-Type"}),
			ExposedHeaders:   getEnvList("CORS_EXPOSED_HEADERS", []string{"X-Request-ID"}),
			AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           getEnvInt("CORS_MAX_AGE", 300),
		},
		Notifications: NotificationsConfig{
			CacheBackend:    getEnv("NOTIFICATIONS_CACHE", "memory"),
			CacheTTL:        getEnvDuration("NOTIFICATIONS_CACHE_TTL", time.Hour),
			DefaultPageSize: getEnvInt("NOTIFICATIONS_PAGE_SIZE", 20),
			PushChannel:     getEnv("NOTIFICATIONS_PUSH_CHANNEL", "notifications:push"),
			PushQueue:       getEnv("NOTIFICATIONS_PUSH_QUEUE", "default"),
			LiveLimit:       getEnvInt("NOTIFICATIONS_LIVE_LIMIT", 200),
			IdleTTL:         getEnvDuration("NOTIFICATIONS_IDLE_TTL", 30*time.Minute),
			SweepInterval:   getEnvDuration("NOTIFICATIONS_SWEEP_INTERVAL", time.Minute),
		},
		RBAC: RBACConfig{
			PolicyFile: getEnv("RBAC_POLICY_FILE", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// comma separated, blanks dropped
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
