package model

import "time"

// Category — категория статей.
type Category struct {
	// ID — UUID категории.
	ID string `json:"id"`
	// Title — уникальное название.
	Title string `json:"title"`
	// Slug — уникальный URL-идентификатор в нижнем регистре.
	Slug string `json:"slug"`
	// CreatedAt / UpdatedAt — служебные временные метки.
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
