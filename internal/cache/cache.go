// Пакет cache — best-effort кэш поверх Redis по схеме cache-aside.
// Кэш включается только при заданном адресе Redis; без него каждая
// операция — гарантированный промах/no-op. Любая ошибка транспорта
// логируется и никогда не доходит до обработчика запроса.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/bigkaa/goblog/internal/config"
)

// KeyPrefix — общий префикс всех ключей кэша.
const KeyPrefix = "blog:"

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_cache_hits_total",
		Help: "Общее количество попаданий в Redis-кэш.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_cache_misses_total",
		Help: "Общее количество промахов Redis-кэша (включая ошибки транспорта и выключенный кэш).",
	})
	cacheErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_cache_errors_total",
		Help: "Количество проглоченных ошибок Redis (транспорт/кодек).",
	})
)

// Cache — удалённый кэш с best-effort семантикой.
// Значения сериализуются в JSON. Экземпляр разделяется всеми запросами.
type Cache struct {
	rdb     *redis.Client
	enabled bool
	ttl     time.Duration
	logger  *slog.Logger
}

// New создаёт кэш. Если адрес Redis не задан в конфигурации — кэш
// выключен и все операции безопасно вырождаются в промах/no-op.
func New(cfg *config.Config, logger *slog.Logger) *Cache {
	c := &Cache{
		enabled: cfg.CacheEnabled(),
		ttl:     cfg.CacheTTL,
		logger:  logger.With(slog.String("component", "cache")),
	}

	if c.enabled {
		c.rdb = redis.NewClient(&redis.Options{
			Addr:         cfg.CacheRedisAddr,
			Password:     cfg.CacheRedisPassword,
			DB:           cfg.CacheRedisDB,
			DialTimeout:  3 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		})
		c.logger.Info("Redis-кэш включён",
			slog.String("addr", cfg.CacheRedisAddr),
			slog.Duration("ttl", cfg.CacheTTL),
		)
	} else {
		c.logger.Info("Redis-кэш выключен: BLOG_CACHE_REDIS_ADDR не задан")
	}

	return c
}

// Enabled сообщает, настроен ли кэш.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Get читает значение по ключу и десериализует его в dest.
// Возвращает true только при попадании. Ошибки транспорта и кодека
// считаются промахом.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if !c.enabled {
		cacheMissesTotal.Inc()
		return false
	}

	data, err := c.rdb.Get(ctx, KeyPrefix+key).Bytes()
	if err != nil {
		cacheMissesTotal.Inc()
		if !errors.Is(err, redis.Nil) {
			cacheErrorsTotal.Inc()
			c.logger.Warn("Ошибка чтения из кэша",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		cacheMissesTotal.Inc()
		cacheErrorsTotal.Inc()
		c.logger.Warn("Ошибка десериализации значения кэша",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}

	cacheHitsTotal.Inc()
	return true
}

// Set записывает значение с TTL по умолчанию.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	c.SetTTL(ctx, key, value, c.ttl)
}

// SetTTL записывает значение с указанным TTL. Ошибки проглатываются.
func (c *Cache) SetTTL(ctx context.Context, key string, value any, ttl time.Duration) {
	if !c.enabled {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		cacheErrorsTotal.Inc()
		c.logger.Warn("Ошибка сериализации значения кэша",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := c.rdb.Set(ctx, KeyPrefix+key, data, ttl).Err(); err != nil {
		cacheErrorsTotal.Inc()
		c.logger.Warn("Ошибка записи в кэш",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// Delete удаляет ключи. Ошибки проглатываются.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if !c.enabled || len(keys) == 0 {
		return
	}

	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = KeyPrefix + k
	}

	if err := c.rdb.Del(ctx, prefixed...).Err(); err != nil {
		cacheErrorsTotal.Inc()
		c.logger.Warn("Ошибка удаления из кэша",
			slog.String("error", err.Error()),
		)
	}
}

// ClearPrefix удаляет все ключи с указанным префиксом (после KeyPrefix).
// Обход через SCAN, чтобы не блокировать Redis командой KEYS.
func (c *Cache) ClearPrefix(ctx context.Context, prefix string) {
	if !c.enabled {
		return
	}

	iter := c.rdb.Scan(ctx, 0, KeyPrefix+prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		cacheErrorsTotal.Inc()
		c.logger.Warn("Ошибка сканирования ключей кэша",
			slog.String("prefix", prefix),
			slog.String("error", err.Error()),
		)
		return
	}

	if len(keys) > 0 {
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			cacheErrorsTotal.Inc()
			c.logger.Warn("Ошибка очистки кэша",
				slog.String("prefix", prefix),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Ping проверяет доступность Redis (для /health/ready).
// Для выключенного кэша всегда успешен.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}
