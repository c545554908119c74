// Точка входа блог-платформы.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// поднимает Redis-кэш и markdown-источник, создаёт сервисный слой и
// API handlers, запускает cron-синхронизацию и HTTP-сервер
// с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/bigkaa/goblog/internal/adminui"
	"github.com/bigkaa/goblog/internal/api/handlers"
	"github.com/bigkaa/goblog/internal/api/middleware"
	"github.com/bigkaa/goblog/internal/cache"
	"github.com/bigkaa/goblog/internal/config"
	"github.com/bigkaa/goblog/internal/database"
	"github.com/bigkaa/goblog/internal/mdsource"
	"github.com/bigkaa/goblog/internal/repository"
	"github.com/bigkaa/goblog/internal/server"
	"github.com/bigkaa/goblog/internal/service"
	"github.com/bigkaa/goblog/internal/token"
)

func main() {
	// .env удобен при локальной разработке; в продакшене его нет.
	_ = godotenv.Load()

	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Блог-сервер запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5. Redis-кэш (выключен при пустом BLOG_CACHE_REDIS_ADDR)
	cacheClient := cache.New(cfg, logger)
	if cacheClient.Enabled() {
		logger.Info("Кэш включён", slog.String("addr", cfg.CacheRedisAddr))
	} else {
		logger.Info("Кэш выключен, все чтения идут в БД")
	}

	// 6. Repositories
	postRepo := repository.NewPostRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	douyinRepo := repository.NewDouyinRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	// 7. Token service и request gate
	tokens := token.New([]byte(cfg.JWTSecret), cfg.TokenTTL)
	gate := middleware.NewGate(tokens, logger)

	// 8. Markdown-источник (опционально)
	var md *mdsource.Source
	if cfg.PostsDir != "" {
		md = mdsource.New(cfg.PostsDir, 256, cfg.CacheTTL, logger)
		logger.Info("Markdown-источник подключён", slog.String("dir", cfg.PostsDir))
	}

	// 9. Services
	contentSvc := service.NewContentService(
		postRepo, categoryRepo, cacheClient, md, txRunner,
		cfg.CacheInvalidateOnWrite,
		logger,
	)
	categorySvc := service.NewCategoryService(
		categoryRepo, postRepo,
		cfg.CategoryDeleteGuard,
		logger,
	)
	authSvc := service.NewAuthService(adminRepo, tokens, logger)
	douyinSvc := service.NewDouyinService(douyinRepo, logger)

	// 10. Синхронизация markdown-каталога: раз при старте и по расписанию
	var scheduler *cron.Cron
	if md != nil {
		if err := contentSvc.SyncFromDisk(ctx); err != nil {
			logger.Warn("Начальная синхронизация markdown не удалась",
				slog.String("error", err.Error()),
			)
		}

		scheduler = cron.New()
		if _, err := scheduler.AddFunc(cfg.PostsSyncSchedule, func() {
			if err := contentSvc.SyncFromDisk(context.Background()); err != nil {
				logger.Warn("Плановая синхронизация markdown не удалась",
					slog.String("error", err.Error()),
				)
			}
		}); err != nil {
			logger.Error("Некорректное расписание синхронизации",
				slog.String("schedule", cfg.PostsSyncSchedule),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		scheduler.Start()
		logger.Info("Плановая синхронизация запущена",
			slog.String("schedule", cfg.PostsSyncSchedule),
		)
	}

	// 11. Readiness checkers и handlers
	pgChecker := database.NewReadinessChecker(pool)
	healthHandler := handlers.NewHealthHandler(pgChecker, cacheClient)

	apiHandler := handlers.NewHandler(
		healthHandler,
		contentSvc,
		categorySvc,
		authSvc,
		douyinSvc,
		cfg.CookieSecure,
		int(cfg.TokenTTL.Seconds()),
		logger,
	)

	// 12. Страницы админки
	var adminPages http.Handler = adminui.Handler()

	// 13. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler, gate, adminPages)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 14. Graceful shutdown фоновых задач
	if scheduler != nil {
		logger.Info("Останавливаем плановую синхронизацию...")
		<-scheduler.Stop().Done()
	}

	logger.Info("Блог-сервер остановлен")
}
