// Пакет response — единый конверт JSON-ответов API.
// Формат: {"data": T|null, "message": string, "showType": "..."}.
// Списки дополнительно несут внутри data пагинацию
// {list, total, hasMore, currentPage, totalPages}.
package response

import (
	"encoding/json"
	"net/http"
)

// ShowType — подсказка фронтенду, как показывать сообщение.
type ShowType string

// Допустимые значения showType.
const (
	ShowSilent  ShowType = "silent"
	ShowError   ShowType = "error"
	ShowSuccess ShowType = "success"
	ShowWarning ShowType = "warning"
)

// Envelope — единый конверт ответа.
type Envelope struct {
	// Data — полезная нагрузка или null.
	Data any `json:"data"`
	// Message — сообщение пользователю.
	Message string `json:"message"`
	// ShowType — способ отображения сообщения.
	ShowType ShowType `json:"showType"`
}

// ListData — полезная нагрузка списочных ответов.
type ListData struct {
	// List — элементы текущей страницы.
	List any `json:"list"`
	// Total — общее количество элементов.
	Total int `json:"total"`
	// HasMore — page*limit < total.
	HasMore bool `json:"hasMore"`
	// CurrentPage — номер страницы (с 1).
	CurrentPage int `json:"currentPage"`
	// TotalPages — ceil(total/limit), минимум 1.
	TotalPages int `json:"totalPages"`
}

// write сериализует конверт с указанным статусом.
func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// Success — 200 с данными, сообщение не показывается.
func Success(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, Envelope{Data: data, Message: "操作成功", ShowType: ShowSilent})
}

// SuccessMsg — 200 с данными и видимым сообщением об успехе.
func SuccessMsg(w http.ResponseWriter, data any, message string) {
	write(w, http.StatusOK, Envelope{Data: data, Message: message, ShowType: ShowSuccess})
}

// Fail — ошибка с указанным HTTP-статусом.
func Fail(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Data: nil, Message: message, ShowType: ShowError})
}

// List — 200 со списочной нагрузкой и вычисленной пагинацией.
// page — 1-based, limit > 0. Элементы items не должны быть nil —
// пустая страница отдаётся как пустой массив, а не null.
func List(w http.ResponseWriter, items any, total, page, limit int) {
	write(w, http.StatusOK, Envelope{
		Data:     NewListData(items, total, page, limit),
		Message:  "操作成功",
		ShowType: ShowSilent,
	})
}

// NewListData собирает списочную нагрузку с пагинацией.
func NewListData(items any, total, page, limit int) ListData {
	totalPages := 1
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
		if totalPages < 1 {
			totalPages = 1
		}
	}
	return ListData{
		List:        items,
		Total:       total,
		HasMore:     page*limit < total,
		CurrentPage: page,
		TotalPages:  totalPages,
	}
}
