package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Rate limit store backends.
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

type Config struct {
	Env            string
	Port           int
	APIPrefix      string
	PublicBaseURL  string
	TrustedProxies []string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Security  SecurityConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	ConnTimeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RateLimitRule is a fixed-window budget for one class of operation.
type RateLimitRule struct {
	MaxRequests int
	Window      time.Duration
}

// RateLimitConfig selects the limiter backend and the per-operation budgets.
type RateLimitConfig struct {
	Store         string
	SweepInterval time.Duration
	CreateEvent   RateLimitRule
	Submit        RateLimitRule
	VerifyCode    RateLimitRule
}

// SecurityConfig holds admin code storage and export link signing options.
type SecurityConfig struct {
	HashAdminCodes bool
	DownloadSecret string
	DownloadTTL    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.PublicBaseURL = strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/")
	cfg.TrustedProxies = splitAndTrim(v.GetString("TRUSTED_PROXIES"))

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnTimeout:  parseDuration(v.GetString("DB_CONNECT_TIMEOUT"), 10*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	store := strings.ToLower(v.GetString("RATE_LIMIT_STORE"))
	if store != RateLimitStoreRedis {
		store = RateLimitStoreMemory
	}
	cfg.RateLimit = RateLimitConfig{
		Store:         store,
		SweepInterval: parseDuration(v.GetString("RATE_LIMIT_SWEEP_INTERVAL"), time.Minute),
		CreateEvent:   loadRule(v, "CREATE", 10, time.Minute),
		Submit:        loadRule(v, "SUBMIT", 30, time.Minute),
		VerifyCode:    loadRule(v, "VERIFY", 10, time.Minute),
	}

	cfg.Security = SecurityConfig{
		HashAdminCodes: v.GetBool("ADMIN_CODE_HASHING"),
		DownloadSecret: v.GetString("DOWNLOAD_SIGNING_SECRET"),
		DownloadTTL:    parseDuration(v.GetString("DOWNLOAD_LINK_TTL"), 15*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:3000")
	v.SetDefault("TRUSTED_PROXIES", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "whenfree")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONNECT_TIMEOUT", "10s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("RATE_LIMIT_STORE", RateLimitStoreMemory)
	v.SetDefault("RATE_LIMIT_SWEEP_INTERVAL", "1m")
	v.SetDefault("RATE_LIMIT_CREATE_MAX", 10)
	v.SetDefault("RATE_LIMIT_CREATE_WINDOW", "1m")
	v.SetDefault("RATE_LIMIT_SUBMIT_MAX", 30)
	v.SetDefault("RATE_LIMIT_SUBMIT_WINDOW", "1m")
	v.SetDefault("RATE_LIMIT_VERIFY_MAX", 10)
	v.SetDefault("RATE_LIMIT_VERIFY_WINDOW", "1m")

	v.SetDefault("ADMIN_CODE_HASHING", false)
	v.SetDefault("DOWNLOAD_SIGNING_SECRET", "")
	v.SetDefault("DOWNLOAD_LINK_TTL", "15m")
}

func loadRule(v *viper.Viper, name string, fallbackMax int, fallbackWindow time.Duration) RateLimitRule {
	limit := v.GetInt("RATE_LIMIT_" + name + "_MAX")
	if limit <= 0 {
		limit = fallbackMax
	}
	return RateLimitRule{
		MaxRequests: limit,
		Window:      parseDuration(v.GetString("RATE_LIMIT_"+name+"_WINDOW"), fallbackWindow),
	}
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
