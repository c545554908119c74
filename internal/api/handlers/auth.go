// auth.go — обработчики /api/user: вход, выход, регистрация.
// Сессия хранится в HttpOnly cookie admin-token.
package handlers

import (
	"net/http"

	"github.com/bigkaa/goblog/internal/api/middleware"
	"github.com/bigkaa/goblog/internal/api/response"
)

// credentialsRequest — тело login/register.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login — POST /api/user/login.
// При успехе устанавливает сессионную cookie и возвращает токен в теле.
// При любой ошибке cookie не устанавливается.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	tok, _, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.serviceError(w, r, err, "用户不存在")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    tok,
		Path:     "/",
		MaxAge:   h.cookieMaxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	response.SuccessMsg(w, map[string]string{"token": tok}, "登录成功")
}

// Logout — POST /api/user/logout. Сбрасывает сессионную cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	response.SuccessMsg(w, nil, "退出成功")
}

// Register — POST /api/user/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	admin, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.serviceError(w, r, err, "用户不存在")
		return
	}

	response.SuccessMsg(w, admin, "注册成功")
}
