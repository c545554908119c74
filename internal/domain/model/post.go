// Пакет model — доменные модели блог-платформы.
package model

import "time"

// Статусы статьи.
const (
	// StatusDraft — черновик, виден только после входа в админку.
	StatusDraft = "draft"
	// StatusPublished — опубликованная статья.
	StatusPublished = "published"
)

// CategoryRef — краткая ссылка на категорию внутри статьи.
type CategoryRef struct {
	// ID — UUID категории.
	ID string `json:"id"`
	// Title — название категории.
	Title string `json:"title"`
	// Slug — URL-идентификатор категории.
	Slug string `json:"slug"`
}

// Post — статья блога.
type Post struct {
	// ID — UUID статьи.
	ID string `json:"id"`
	// Title — заголовок (обязателен, до 100 символов).
	Title string `json:"title"`
	// Content — содержимое в Markdown. Пустое в списках (списки отдаются без тела).
	Content string `json:"content,omitempty"`
	// Category — категория статьи.
	Category CategoryRef `json:"category"`
	// Summary — краткое описание (до 200 символов).
	Summary string `json:"summary,omitempty"`
	// Tags — упорядоченный список тегов.
	Tags []string `json:"tags,omitempty"`
	// Status — draft или published.
	Status string `json:"status"`
	// PublishDate — дата публикации (назначается сервером при создании).
	PublishDate time.Time `json:"publishDate"`
	// UpdateDate — дата последнего изменения (назначается сервером).
	UpdateDate time.Time `json:"updateDate"`
	// ViewCount — счётчик просмотров, только растёт.
	ViewCount int64 `json:"viewCount"`
	// Author — идентификатор автора (admin id).
	Author string `json:"author"`
	// Slug — уникальный URL-идентификатор в нижнем регистре.
	Slug string `json:"slug"`
	// CreatedAt / UpdatedAt — служебные временные метки.
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
