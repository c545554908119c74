// Пакет config — загрузка и валидация конфигурации блог-сервера
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации блог-сервера.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string
	// Количество попыток подключения к БД при старте
	DBConnectRetries int
	// Пауза между попытками подключения
	DBConnectRetryDelay time.Duration

	// --- Сессии ---

	// Секрет для подписи JWT (обязательный)
	JWTSecret string
	// Время жизни токена сессии (1h-168h)
	TokenTTL time.Duration
	// Secure-флаг для session cookie (true при HTTPS)
	CookieSecure bool

	// --- Кэш (Redis) ---

	// Адрес Redis (host:port). Пустое значение — кэш выключен.
	CacheRedisAddr string
	// Пароль Redis
	CacheRedisPassword string
	// Номер базы Redis
	CacheRedisDB int
	// Время жизни записей кэша
	CacheTTL time.Duration
	// Инвалидировать кэш при записи (create/update/delete постов)
	CacheInvalidateOnWrite bool

	// --- Markdown-источник ---

	// Каталог с markdown-статьями. Пустое значение — источник выключен.
	PostsDir string
	// Cron-расписание синхронизации markdown-каталога с БД
	PostsSyncSchedule string

	// --- Политики ---

	// Запрещать удаление категории, на которую ссылаются статьи
	CategoryDeleteGuard bool

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// BLOG_PORT — порт HTTP-сервера (по умолчанию 8000)
	cfg.Port, err = getEnvInt("BLOG_PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("BLOG_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("BLOG_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// BLOG_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("BLOG_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("BLOG_LOG_LEVEL: %w", err)
	}

	// BLOG_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("BLOG_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("BLOG_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- PostgreSQL ---

	// BLOG_DB_HOST — хост PostgreSQL (обязательный)
	cfg.DBHost, err = getEnvRequired("BLOG_DB_HOST")
	if err != nil {
		return nil, err
	}

	// BLOG_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("BLOG_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("BLOG_DB_PORT: %w", err)
	}

	// BLOG_DB_NAME — имя базы данных (по умолчанию blog)
	cfg.DBName = getEnvDefault("BLOG_DB_NAME", "blog")

	// BLOG_DB_USER — пользователь PostgreSQL (обязательный)
	cfg.DBUser, err = getEnvRequired("BLOG_DB_USER")
	if err != nil {
		return nil, err
	}

	// BLOG_DB_PASSWORD — пароль PostgreSQL (обязательный)
	cfg.DBPassword, err = getEnvRequired("BLOG_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// BLOG_DB_SSLMODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("BLOG_DB_SSLMODE", "disable")

	// BLOG_DB_CONNECT_RETRIES — количество попыток подключения (по умолчанию 5)
	cfg.DBConnectRetries, err = getEnvInt("BLOG_DB_CONNECT_RETRIES", 5)
	if err != nil {
		return nil, fmt.Errorf("BLOG_DB_CONNECT_RETRIES: %w", err)
	}
	if cfg.DBConnectRetries < 0 {
		return nil, fmt.Errorf("BLOG_DB_CONNECT_RETRIES: значение %d не может быть отрицательным", cfg.DBConnectRetries)
	}

	// BLOG_DB_CONNECT_RETRY_DELAY — пауза между попытками (по умолчанию 5s)
	cfg.DBConnectRetryDelay, err = getEnvDuration("BLOG_DB_CONNECT_RETRY_DELAY", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BLOG_DB_CONNECT_RETRY_DELAY: %w", err)
	}

	// --- Сессии ---

	// BLOG_JWT_SECRET — секрет подписи токенов (обязательный)
	cfg.JWTSecret, err = getEnvRequired("BLOG_JWT_SECRET")
	if err != nil {
		return nil, err
	}

	// BLOG_TOKEN_TTL — время жизни токена (по умолчанию 24h, диапазон 1h-168h)
	cfg.TokenTTL, err = getEnvDuration("BLOG_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("BLOG_TOKEN_TTL: %w", err)
	}
	if cfg.TokenTTL < time.Hour || cfg.TokenTTL > 168*time.Hour {
		return nil, fmt.Errorf("BLOG_TOKEN_TTL: значение %v вне допустимого диапазона 1h-168h", cfg.TokenTTL)
	}

	// BLOG_COOKIE_SECURE — Secure-флаг cookie (по умолчанию true)
	cfg.CookieSecure, err = getEnvBool("BLOG_COOKIE_SECURE", true)
	if err != nil {
		return nil, fmt.Errorf("BLOG_COOKIE_SECURE: %w", err)
	}

	// --- Кэш ---

	// BLOG_CACHE_REDIS_ADDR — адрес Redis; пустое значение выключает кэш
	cfg.CacheRedisAddr = getEnvDefault("BLOG_CACHE_REDIS_ADDR", "")

	// BLOG_CACHE_REDIS_PASSWORD — пароль Redis (по умолчанию пустой)
	cfg.CacheRedisPassword = getEnvDefault("BLOG_CACHE_REDIS_PASSWORD", "")

	// BLOG_CACHE_REDIS_DB — номер базы Redis (по умолчанию 0)
	cfg.CacheRedisDB, err = getEnvInt("BLOG_CACHE_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("BLOG_CACHE_REDIS_DB: %w", err)
	}

	// BLOG_CACHE_TTL — время жизни записей кэша (по умолчанию 24h)
	cfg.CacheTTL, err = getEnvDuration("BLOG_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("BLOG_CACHE_TTL: %w", err)
	}

	// BLOG_CACHE_INVALIDATE_ON_WRITE — инвалидация при записи (по умолчанию true)
	cfg.CacheInvalidateOnWrite, err = getEnvBool("BLOG_CACHE_INVALIDATE_ON_WRITE", true)
	if err != nil {
		return nil, fmt.Errorf("BLOG_CACHE_INVALIDATE_ON_WRITE: %w", err)
	}

	// --- Markdown-источник ---

	// BLOG_POSTS_DIR — каталог markdown-статей; пустое значение выключает источник
	cfg.PostsDir = getEnvDefault("BLOG_POSTS_DIR", "")

	// BLOG_POSTS_SYNC_SCHEDULE — cron-расписание синхронизации (по умолчанию @hourly)
	cfg.PostsSyncSchedule = getEnvDefault("BLOG_POSTS_SYNC_SCHEDULE", "@hourly")

	// --- Политики ---

	// BLOG_CATEGORY_DELETE_GUARD — защита категорий от удаления (по умолчанию true)
	cfg.CategoryDeleteGuard, err = getEnvBool("BLOG_CATEGORY_DELETE_GUARD", true)
	if err != nil {
		return nil, fmt.Errorf("BLOG_CATEGORY_DELETE_GUARD: %w", err)
	}

	// --- Graceful shutdown ---

	// BLOG_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("BLOG_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BLOG_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// CacheEnabled сообщает, настроен ли удалённый кэш.
func (c *Config) CacheEnabled() bool {
	return c.CacheRedisAddr != ""
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
