// Пакет server — HTTP-сервер блог-платформы с graceful shutdown.
// Без TLS — HTTPS терминируется на reverse proxy перед сервисом.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goblog/internal/api/handlers"
	"github.com/bigkaa/goblog/internal/api/middleware"
	"github.com/bigkaa/goblog/internal/config"
)

// Server — HTTP-сервер блог-платформы.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными маршрутами и middleware.
// admin — обработчик страниц /admin; может быть nil, тогда страницы
// админки не поднимаются (API-only режим).
func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handler, gate *middleware.Gate, admin http.Handler) *Server {
	router := NewRouter(logger, h, gate, admin)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает таблицу маршрутов. Вынесен отдельно для тестов.
func NewRouter(logger *slog.Logger, h *handlers.Handler, gate *middleware.Gate, admin http.Handler) *chi.Mux {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко всем маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	router.Route("/api", func(r chi.Router) {
		r.Route("/posts", func(r chi.Router) {
			// Публичное чтение с мягкой идентификацией: сессия
			// расширяет видимость до черновиков.
			r.With(gate.Identify()).Get("/", h.ListPosts)
			r.With(gate.Identify()).Get("/{id}", h.GetPost)
			r.With(gate.Identify()).Get("/slug/{slug}", h.GetPostBySlug)

			// Запись только для аутентифицированных.
			r.Group(func(r chi.Router) {
				r.Use(gate.RequireAPI())
				r.Post("/", h.CreatePost)
				r.Put("/", h.UpdatePost)
				r.Delete("/", h.DeletePost)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/list", h.ListAllCategories)

			r.Group(func(r chi.Router) {
				r.Use(gate.RequireAPI())
				r.Get("/", h.ListCategories)
				r.Get("/{id}", h.GetCategory)
				r.Post("/", h.CreateCategory)
				r.Put("/", h.UpdateCategory)
				r.Delete("/", h.DeleteCategory)
			})
		})

		r.Route("/user", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Post("/register", h.Register)
		})

		r.Route("/douyin", func(r chi.Router) {
			r.Post("/parse", h.DouyinParse)
			r.Get("/play", h.DouyinPlay)
		})
	})

	router.Get("/health/live", h.HealthLive)
	router.Get("/health/ready", h.HealthReady)
	router.Get("/metrics", h.GetMetrics)

	// Страницы админки: без сессии — redirect на форму входа.
	// Сама форма входа из-под gate исключена.
	if admin != nil {
		router.Get("/admin/login", admin.ServeHTTP)
		router.Route("/admin", func(r chi.Router) {
			r.Use(gate.RequirePages("/admin/login"))
			r.Handle("/*", admin)
			r.Handle("/", admin)
		})
	}

	return router
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
