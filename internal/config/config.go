package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// StoreMemory keeps the user record store in process memory.
	StoreMemory = "memory"
	// StoreMySQL keeps the user record store in MySQL through GORM.
	StoreMySQL = "mysql"
)

// Config holds application level configuration.
//
// Values come from defaults, then an optional YAML file, then environment variables.
type Config struct {
	ServerPort   string        `yaml:"server_port"`
	StoreDriver  string        `yaml:"store_driver"`
	MySQLDSN     string        `yaml:"mysql_dsn"`
	RedisAddr    string        `yaml:"redis_addr"` // empty keeps session slots in process memory
	RedisDB      int           `yaml:"redis_db"`
	RedisPass    string        `yaml:"redis_password"`
	JWTSecret    string        `yaml:"jwt_secret"`
	SecureCookie bool          `yaml:"secure_cookie"`
	AuthLatency  time.Duration `yaml:"auth_latency"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	SessionIdle  time.Duration `yaml:"session_idle"` // in-memory session state is dropped after this long unused
	ChatEndpoint string        `yaml:"chat_endpoint"`
	ChatTimeout  time.Duration `yaml:"chat_timeout"`
	LogLevel     string        `yaml:"log_level"`
	SwaggerHost  string        `yaml:"swagger_host"`
}

// Defaults returns the development configuration.
func Defaults() *Config {
	return &Config{
		ServerPort:  "8080",
		StoreDriver: StoreMemory,
		MySQLDSN:    "user:password@tcp(localhost:3306)/krishi?charset=utf8mb4&parseTime=True&loc=Local",
		JWTSecret:   "change-me",
		AuthLatency: time.Second,
		SessionTTL:  30 * 24 * time.Hour,
		SessionIdle: 5 * time.Minute,
		ChatTimeout: 15 * time.Second,
		LogLevel:    "info",
	}
}

// Load builds Config from defaults, the YAML file at path (if any) and the environment.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		path = os.Getenv("KRISHI_CONFIG")
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreMySQL:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret must not be empty")
	}
	if c.AuthLatency < 0 || c.ChatTimeout < 0 || c.SessionTTL < 0 || c.SessionIdle < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.StoreDriver = getEnv("STORE_DRIVER", cfg.StoreDriver)
	cfg.MySQLDSN = getEnv("MYSQL_DSN", cfg.MySQLDSN)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.RedisPass = getEnv("REDIS_PASSWORD", cfg.RedisPass)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.SecureCookie = getEnvBool("SECURE_COOKIE", cfg.SecureCookie)
	cfg.AuthLatency = getEnvDuration("AUTH_LATENCY", cfg.AuthLatency)
	cfg.SessionTTL = getEnvDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.SessionIdle = getEnvDuration("SESSION_IDLE", cfg.SessionIdle)
	cfg.ChatEndpoint = getEnv("CHAT_ENDPOINT", cfg.ChatEndpoint)
	cfg.ChatTimeout = getEnvDuration("CHAT_TIMEOUT", cfg.ChatTimeout)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.SwaggerHost = getEnv("SWAGGER_HOST", cfg.SwaggerHost)
}

func getEnv(key, def string) string {
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

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
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
