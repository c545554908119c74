// Пакет adminui — встроенные страницы админки блога.
// HTML встраивается в бинарник через //go:embed и раздаётся как есть;
// страницы работают с /api через fetch, серверного рендеринга нет.
package adminui

import (
	"embed"
	"net/http"
	"strings"
)

//go:embed pages/*.html
var content embed.FS

// Handler возвращает обработчик страниц /admin.
// /admin/login — форма входа; любой другой путь — оболочка админки
// (маршрутизация внутри неё клиентская).
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := "pages/index.html"
		if strings.HasSuffix(r.URL.Path, "/login") {
			page = "pages/login.html"
		}

		data, err := content.ReadFile(page)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(data)
	})
}
