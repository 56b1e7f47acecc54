package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port     string
	DBDSN    string
	LogFile  string
	SeedFile string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	CookieSecure bool

	TracingEnabled bool
	JaegerEndpoint string

	TemplateDir string
	StaticDir   string
}

func Load() Config {
	cfg := Config{
		Port:           env("PORT", "8080"),
		DBDSN:          env("DB_DSN", "earnhub.db"), // sqlite file in project root
		LogFile:        env("LOG_FILE", "./earnhub.log"),
		SeedFile:       env("SEED_FILE", "./seed/opportunities.yaml"),
		RedisAddr:      os.Getenv("REDIS_ADDR"), // empty: in-process cache
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        envInt("REDIS_DB", 0),
		CacheTTL:       envDuration("CACHE_TTL", 2*time.Minute),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       envDuration("TOKEN_TTL", time.Hour),
		CookieSecure:   envBool("COOKIE_SECURE", false),
		TracingEnabled: envBool("TRACING_ENABLED", false),
		JaegerEndpoint: env("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		TemplateDir:    env("TEMPLATE_DIR", "./web/templates"),
		StaticDir:      env("STATIC_DIR", "./web/static"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s SEED_FILE=%s REDIS_ADDR=%q TRACING=%t",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.SeedFile, cfg.RedisAddr, cfg.TracingEnabled)
	return cfg
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}

// envDuration accepts Go durations ("90s") or plain seconds.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
