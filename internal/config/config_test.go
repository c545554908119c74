package config

import (
	"log/slog"
	"testing"
	"time"
)

// setEnvs устанавливает переменные окружения для теста.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

// minimalEnvs возвращает минимальный набор обязательных переменных.
func minimalEnvs() map[string]string {
	return map[string]string{
		"BLOG_DB_HOST":     "localhost",
		"BLOG_DB_USER":     "blog",
		"BLOG_DB_PASSWORD": "secret",
		"BLOG_JWT_SECRET":  "test-jwt-secret",
	}
}

func TestLoad_MinimalConfig(t *testing.T) {
	setEnvs(t, minimalEnvs())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	// Проверяем значения по умолчанию
	if cfg.Port != 8000 {
		t.Errorf("Port = %d, ожидается 8000", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, ожидается Info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, ожидается json", cfg.LogFormat)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, ожидается 5432", cfg.DBPort)
	}
	if cfg.DBName != "blog" {
		t.Errorf("DBName = %q, ожидается blog", cfg.DBName)
	}
	if cfg.DBConnectRetries != 5 {
		t.Errorf("DBConnectRetries = %d, ожидается 5", cfg.DBConnectRetries)
	}
	if cfg.DBConnectRetryDelay != 5*time.Second {
		t.Errorf("DBConnectRetryDelay = %v, ожидается 5s", cfg.DBConnectRetryDelay)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, ожидается 24h", cfg.TokenTTL)
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure = false, ожидается true")
	}
	if cfg.CacheEnabled() {
		t.Error("CacheEnabled() = true без BLOG_CACHE_REDIS_ADDR")
	}
	if cfg.CacheTTL != 24*time.Hour {
		t.Errorf("CacheTTL = %v, ожидается 24h", cfg.CacheTTL)
	}
	if !cfg.CacheInvalidateOnWrite {
		t.Error("CacheInvalidateOnWrite = false, ожидается true")
	}
	if !cfg.CategoryDeleteGuard {
		t.Error("CategoryDeleteGuard = false, ожидается true")
	}
	if cfg.PostsDir != "" {
		t.Errorf("PostsDir = %q, ожидается пустая строка", cfg.PostsDir)
	}
	if cfg.PostsSyncSchedule != "@hourly" {
		t.Errorf("PostsSyncSchedule = %q, ожидается @hourly", cfg.PostsSyncSchedule)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 5s", cfg.ShutdownTimeout)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name string
		omit string
	}{
		{"без DB_HOST", "BLOG_DB_HOST"},
		{"без DB_USER", "BLOG_DB_USER"},
		{"без DB_PASSWORD", "BLOG_DB_PASSWORD"},
		{"без JWT_SECRET", "BLOG_JWT_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envs := minimalEnvs()
			delete(envs, tt.omit)
			setEnvs(t, envs)
			t.Setenv(tt.omit, "")

			if _, err := Load(); err == nil {
				t.Errorf("Load() без %s должен вернуть ошибку", tt.omit)
			}
		})
	}
}

func TestLoad_CacheEnabled(t *testing.T) {
	setEnvs(t, minimalEnvs())
	t.Setenv("BLOG_CACHE_REDIS_ADDR", "redis:6379")
	t.Setenv("BLOG_CACHE_TTL", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	if !cfg.CacheEnabled() {
		t.Error("CacheEnabled() = false при заданном BLOG_CACHE_REDIS_ADDR")
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("CacheTTL = %v, ожидается 1h", cfg.CacheTTL)
	}
}

func TestLoad_TokenTTLOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		ttl  string
	}{
		{"меньше часа", "30m"},
		{"больше недели", "200h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnvs(t, minimalEnvs())
			t.Setenv("BLOG_TOKEN_TTL", tt.ttl)

			if _, err := Load(); err == nil {
				t.Errorf("Load() с BLOG_TOKEN_TTL=%s должен вернуть ошибку", tt.ttl)
			}
		})
	}
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	setEnvs(t, minimalEnvs())
	t.Setenv("BLOG_LOG_FORMAT", "xml")

	if _, err := Load(); err == nil {
		t.Error("Load() с BLOG_LOG_FORMAT=xml должен вернуть ошибку")
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.local",
		DBPort:     5433,
		DBName:     "blog",
		DBUser:     "blog",
		DBPassword: "pw",
		DBSSLMode:  "disable",
	}

	want := "host=db.local port=5433 dbname=blog user=blog password=pw sslmode=disable"
	if got := cfg.DatabaseDSN(); got != want {
		t.Errorf("DatabaseDSN() = %q, ожидается %q", got, want)
	}
}
