package cache

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/bigkaa/goblog/internal/config"
)

// disabledCache возвращает кэш без настроенного Redis.
func disabledCache() *Cache {
	cfg := &config.Config{
		CacheRedisAddr: "",
		CacheTTL:       24 * time.Hour,
	}
	return New(cfg, slog.Default())
}

// TestCache_DisabledGet проверяет, что выключенный кэш всегда промахивается.
func TestCache_DisabledGet(t *testing.T) {
	c := disabledCache()

	if c.Enabled() {
		t.Fatal("Enabled() = true без адреса Redis")
	}

	var dest string
	if ok := c.Get(context.Background(), "posts:slug:test", &dest); ok {
		t.Error("Get на выключенном кэше вернул попадание")
	}
	if dest != "" {
		t.Errorf("dest = %q, значение не должно было записаться", dest)
	}
}

// TestCache_DisabledSetDeleteNoop проверяет, что записи и удаления
// на выключенном кэше — безопасные no-op без паник и ошибок.
func TestCache_DisabledSetDeleteNoop(t *testing.T) {
	c := disabledCache()
	ctx := context.Background()

	c.Set(ctx, "k", map[string]int{"a": 1})
	c.SetTTL(ctx, "k", "v", time.Minute)
	c.Delete(ctx, "k", "k2")
	c.ClearPrefix(ctx, "posts:")

	// После записи чтение всё равно промахивается
	var dest map[string]int
	if ok := c.Get(ctx, "k", &dest); ok {
		t.Error("Get после Set на выключенном кэше вернул попадание")
	}
}

// TestCache_DisabledPing проверяет, что Ping выключенного кэша успешен.
func TestCache_DisabledPing(t *testing.T) {
	c := disabledCache()
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping() выключенного кэша вернул ошибку: %v", err)
	}
}
