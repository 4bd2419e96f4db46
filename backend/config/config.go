package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Env         string
	CORSOrigins []string

	Store        string
	MongoURI     string
	MongoDBName  string
	RedisURL     string
	LogFile      string
	LogLevel     string
	JWTSecret    string
	JWTExpire    time.Duration
	AuthRequired bool

	RateLimit       int
	RateLimitWindow time.Duration

	BreakerTimeout     time.Duration
	BreakerMaxFailures uint32
	RequestTimeout     time.Duration
}

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("STORE", StoreMongo)
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB_NAME", "mesatech")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("LOG_FILE", "logs/mesatech.log")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "mesatech-dev-secret")
	v.SetDefault("JWT_EXPIRE", "7d")
	v.SetDefault("AUTH_REQUIRED", false)
	v.SetDefault("RATE_LIMIT", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "10m")
	v.SetDefault("BREAKER_TIMEOUT", "30s")
	v.SetDefault("BREAKER_MAX_FAILURES", 5)
	v.SetDefault("REQUEST_TIMEOUT", "15s")
}

func fromViper(v *viper.Viper) (*Config, error) {
	jwtExpire, err := ParseDuration(v.GetString("JWT_EXPIRE"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRE: %w", err)
	}
	window, err := ParseDuration(v.GetString("RATE_LIMIT_WINDOW"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW: %w", err)
	}
	breakerTimeout, err := ParseDuration(v.GetString("BREAKER_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("BREAKER_TIMEOUT: %w", err)
	}
	requestTimeout, err := ParseDuration(v.GetString("REQUEST_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Port:               v.GetString("PORT"),
		Env:                v.GetString("APP_ENV"),
		CORSOrigins:        splitList(v.GetString("CORS_ORIGINS")),
		Store:              strings.ToLower(v.GetString("STORE")),
		MongoURI:           v.GetString("MONGODB_URI"),
		MongoDBName:        v.GetString("MONGO_DB_NAME"),
		RedisURL:           v.GetString("REDIS_URL"),
		LogFile:            v.GetString("LOG_FILE"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTExpire:          jwtExpire,
		AuthRequired:       v.GetBool("AUTH_REQUIRED"),
		RateLimit:          v.GetInt("RATE_LIMIT"),
		RateLimitWindow:    window,
		BreakerTimeout:     breakerTimeout,
		BreakerMaxFailures: v.GetUint32("BREAKER_MAX_FAILURES"),
		RequestTimeout:     requestTimeout,
	}

	if cfg.Store != StoreMongo && cfg.Store != StoreMemory {
		return nil, fmt.Errorf("STORE must be %q or %q, got %q", StoreMongo, StoreMemory, cfg.Store)
	}
	if cfg.BreakerMaxFailures == 0 {
		return nil, fmt.Errorf("BREAKER_MAX_FAILURES must be positive")
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ParseDuration accepts Go durations plus a whole-day form such as "7d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
