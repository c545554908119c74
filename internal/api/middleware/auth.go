// auth.go — request gate: проверка сессионного cookie на защищённых маршрутах.
// Для API-маршрутов отказ — 401 с единым конвертом; для страниц /admin —
// redirect на форму входа. Причина отказа наружу не различается.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bigkaa/goblog/internal/api/response"
	"github.com/bigkaa/goblog/internal/token"
)

// CookieName — имя cookie с сессионным токеном.
const CookieName = "admin-token"

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

// ContextKeyAdminID — id аутентифицированного администратора в контексте запроса.
const ContextKeyAdminID contextKey = "admin_id"

// Gate — middleware аутентификации по сессионному cookie.
type Gate struct {
	tokens *token.Service
	logger *slog.Logger
}

// NewGate создаёт request gate.
func NewGate(tokens *token.Service, logger *slog.Logger) *Gate {
	return &Gate{
		tokens: tokens,
		logger: logger.With(slog.String("component", "auth_gate")),
	}
}

// Check извлекает и проверяет сессионный токен запроса без блокировки.
// Возвращает (adminID, true) при валидной сессии. Используется
// обработчиками с условной защитой (детали черновика, фильтр статуса).
func (g *Gate) Check(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return g.tokens.Verify(cookie.Value)
}

// RequireAPI возвращает middleware для защищённых API-маршрутов.
// Отсутствующий cookie — 401 "未登录"; невалидный токен — 401 "token无效".
// При успехе id администратора помещается в контекст запроса.
func (g *Gate) RequireAPI() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				response.Fail(w, http.StatusUnauthorized, "未登录")
				return
			}

			adminID, ok := g.tokens.Verify(cookie.Value)
			if !ok {
				g.logger.Debug("Отклонён невалидный сессионный токен",
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr),
				)
				response.Fail(w, http.StatusUnauthorized, "token无效")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAdminID, adminID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Identify возвращает middleware мягкой идентификации: при валидной
// сессии id администратора попадает в контекст, иначе запрос проходит
// анонимно. Используется на публичных маршрутах с расширенным
// поведением для сессии (список с черновиками, детали черновика).
func (g *Gate) Identify() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminID, ok := g.Check(r); ok {
				r = r.WithContext(context.WithValue(r.Context(), ContextKeyAdminID, adminID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePages возвращает middleware для страниц админки.
// Конечные состояния: запрос пропущен (валидная сессия) либо
// redirect на loginPath (cookie отсутствует или токен невалиден).
func (g *Gate) RequirePages(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			adminID, ok := g.Check(r)
			if !ok {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAdminID, adminID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminIDFromContext извлекает id администратора из контекста запроса.
// Пустая строка — запрос не проходил через gate.
func AdminIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyAdminID).(string)
	return id
}
