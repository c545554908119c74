// handler.go — обработчики HTTP API блог-платформы.
// Объединяет доменные обработчики и делегирует запросы в сервисный слой.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bigkaa/goblog/internal/api/response"
	"github.com/bigkaa/goblog/internal/service"
)

// Handler — основной обработчик API блог-платформы.
type Handler struct {
	health     *HealthHandler
	content    *service.ContentService
	categories *service.CategoryService
	auth       *service.AuthService
	douyin     *service.DouyinService
	// cookieSecure и cookieMaxAge задают параметры сессионной cookie.
	cookieSecure bool
	cookieMaxAge int
	logger       *slog.Logger
}

// NewHandler создаёт основной обработчик API.
func NewHandler(
	health *HealthHandler,
	content *service.ContentService,
	categories *service.CategoryService,
	auth *service.AuthService,
	douyin *service.DouyinService,
	cookieSecure bool,
	cookieMaxAge int,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		health:       health,
		content:      content,
		categories:   categories,
		auth:         auth,
		douyin:       douyin,
		cookieSecure: cookieSecure,
		cookieMaxAge: cookieMaxAge,
		logger:       logger.With(slog.String("component", "api_handler")),
	}
}

// HealthLive — liveness probe (делегируется в HealthHandler).
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe (делегируется в HealthHandler).
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// decodeBody разбирает JSON-тело запроса. При ошибке пишет 400 и
// возвращает false.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		response.Fail(w, http.StatusBadRequest, "请求格式错误")
		return false
	}
	return true
}

// serviceError переводит ошибку сервисного слоя в конверт ответа.
// notFoundMsg — сообщение для ErrNotFound конкретного ресурса.
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Fail(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrNotFound):
		response.Fail(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, service.ErrUnauthorized):
		response.Fail(w, http.StatusUnauthorized, "未登录")
	default:
		h.logger.Error("Внутренняя ошибка обработчика",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		response.Fail(w, http.StatusInternalServerError, "服务器内部错误")
	}
}
