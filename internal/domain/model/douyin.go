package model

import "time"

// Типы контента douyin.
const (
	// DouyinTypeVideo — одиночное видео.
	DouyinTypeVideo = "video"
	// DouyinTypeImages — набор изображений.
	DouyinTypeImages = "images"
)

// DouyinRecord — результат разбора douyin-ссылки со счётчиком скачиваний.
// Повторный разбор того же AwemeID увеличивает Downloads, а не создаёт дубль.
type DouyinRecord struct {
	// ID — UUID записи.
	ID string `json:"id"`
	// AwemeID — уникальный внешний идентификатор контента.
	AwemeID string `json:"awemeId"`
	// AuthorName — ник автора.
	AuthorName string `json:"name"`
	// Title — заголовок/описание контента.
	Title string `json:"title"`
	// VideoURL — адрес видео (пустой для типа images).
	VideoURL string `json:"video,omitempty"`
	// CoverURL — адрес обложки.
	CoverURL string `json:"cover"`
	// ImageURLs — список изображений (для типа images).
	ImageURLs []string `json:"images"`
	// Type — video или images.
	Type string `json:"type"`
	// Downloads — счётчик скачиваний.
	Downloads int64 `json:"downloads"`
	// CreatedAt / UpdatedAt — служебные временные метки.
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
