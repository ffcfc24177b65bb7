package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv        string
	HTTPAddr      string
	MetricsAddr   string
	MySQLDSN      string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	RegistrarBase string
	RegistrarKey  string
	JWTSecret     string
	JWTAudience   string
	JWTIssuer     string
	Workers       int
	Term          string
	CourseCodes   []string
	CacheTTL      time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:        env("APP_ENV", "prod"),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MetricsAddr:   env("METRICS_ADDR", ":9100"),
		MySQLDSN:      env("MYSQL_DSN", "root:root@tcp(localhost:3306)/campus?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		RedisPass:     env("REDIS_PASSWORD", ""),
		RedisDB:       atoi("REDIS_DB", 0),
		RegistrarBase: env("REGISTRAR_BASE_URL", "https://registrar.example.edu/api/v1"),
		RegistrarKey:  env("REGISTRAR_API_KEY", ""),
		JWTSecret:     env("JWT_SECRET", ""),
		JWTAudience:   env("JWT_AUDIENCE", "campus-catalog"),
		JWTIssuer:     env("JWT_ISSUER", "campus-auth"),
		Workers:       atoi("INGEST_WORKERS", 8),
		Term:          env("INGEST_TERM", "2026F"),
		CourseCodes:   splitCSV(env("INGEST_COURSE_CODES", "")),
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.RegistrarKey == "" {
		log.Warn().Msg("REGISTRAR_API_KEY is empty")
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; review submission will reject all tokens")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
