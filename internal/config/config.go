package config

import "time"

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env        string `env:"ENV" env-required:"true"`
	HTTP       HTTPConfig
	Postgres   PostgresConfig
	JWT        JWTConfig
	Log        LogConfig
	RateLimit  RateLimitConfig
	Completion CompletionConfig
}

type HTTPConfig struct {
	Host            string        `env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" env-default:"8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type PostgresConfig struct {
	Host           string        `env:"POSTGRES_HOST" env-required:"true"`
	Port           int           `env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `env:"POSTGRES_USERNAME" env-required:"true"`
	Password       string        `env:"POSTGRES_PASSWORD" env-required:"true"`
	Database       string        `env:"POSTGRES_DATABASE" env-required:"true"`
	SSLMode        string        `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
}

type JWTConfig struct {
	Issuer          string        `env:"JWT_ISSUER" env-default:"taskforge"`
	SigningKey      string        `env:"JWT_SIGNING_KEY" env-required:"true"`
	AccessTokenTTL  time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `env:"JWT_REFRESH_TOKEN_TTL" env-default:"720h"`
}

type LogConfig struct {
	// File enables rotating file output when non-empty; stdout
	// is used otherwise.
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" env-default:"10"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" env-default:"3"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" env-default:"28"`
}

// RateLimitConfig holds the per-bucket token rates. Each bucket
// refills Rate tokens per Window and allows bursts up to Burst.
type RateLimitConfig struct {
	Window time.Duration `env:"RATE_LIMIT_WINDOW" env-default:"1m"`

	TaskRate          int `env:"RATE_LIMIT_TASK_RATE" env-default:"60"`
	TaskBurst         int `env:"RATE_LIMIT_TASK_BURST" env-default:"10"`
	CommentRate       int `env:"RATE_LIMIT_COMMENT_RATE" env-default:"30"`
	CommentBurst      int `env:"RATE_LIMIT_COMMENT_BURST" env-default:"10"`
	PreferencesRate   int `env:"RATE_LIMIT_PREFERENCES_RATE" env-default:"30"`
	PreferencesBurst  int `env:"RATE_LIMIT_PREFERENCES_BURST" env-default:"5"`
	ChatRate          int `env:"RATE_LIMIT_CHAT_RATE" env-default:"30"`
	ChatBurst         int `env:"RATE_LIMIT_CHAT_BURST" env-default:"5"`
	ChatSendRate      int `env:"RATE_LIMIT_CHAT_SEND_RATE" env-default:"10"`
	ChatSendBurst     int `env:"RATE_LIMIT_CHAT_SEND_BURST" env-default:"3"`
}

type CompletionConfig struct {
	Timeout time.Duration `env:"COMPLETION_TIMEOUT" env-default:"30s"`
}
