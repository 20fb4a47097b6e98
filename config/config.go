package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultCORSOrigins are the browser origins the notes frontend is served from.
var DefaultCORSOrigins = []string{
	"http://localhost:5173",
	"https://smart-notes-app-jeet.vercel.app",
	"https://smart-notes-app-gray.vercel.app",
}

// Config is built once at startup and passed by value to whatever needs it.
type Config struct {
	Port        string
	DBDriver    string
	DSN         string
	JWTSecret   []byte
	TokenTTL    time.Duration
	CORSOrigins []string
	APIPrefix   string
	LogLevel    logrus.Level
}

// Load reads the configuration from the environment, loading a .env file
// first when one is present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Infof("Notice: .env file not found: %v. Using system environment variables", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:        envDefault("PORT", "5000"),
		DBDriver:    strings.ToLower(envDefault("DB_DRIVER", "mysql")),
		DSN:         os.Getenv("DSN"),
		JWTSecret:   []byte(os.Getenv("JWT_SECRET")),
		CORSOrigins: DefaultCORSOrigins,
		APIPrefix:   envDefault("API_PREFIX", "/api"),
		TokenTTL:    24 * time.Hour,
		LogLevel:    logrus.InfoLevel,
	}

	if cfg.DBDriver != "mysql" && cfg.DBDriver != "sqlite" {
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.DSN == "" {
		return Config{}, fmt.Errorf("missing required env DSN")
	}
	if len(cfg.JWTSecret) == 0 {
		return Config{}, fmt.Errorf("missing required env JWT_SECRET")
	}

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl < 0 {
			return Config{}, fmt.Errorf("invalid TOKEN_TTL %q", v)
		}
		cfg.TokenTTL = ttl
	}

	if origins := csv(os.Getenv("CORS_ORIGINS")); len(origins) > 0 {
		cfg.CORSOrigins = origins
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		lvl, err := logrus.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL %q", v)
		}
		cfg.LogLevel = lvl
	}

	cfg.APIPrefix = "/" + strings.Trim(cfg.APIPrefix, "/")
	if cfg.APIPrefix == "/" {
		cfg.APIPrefix = ""
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func csv(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimRight(strings.TrimSpace(p), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
