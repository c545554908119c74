package model

import "time"

// Admin — учётная запись администратора.
// PasswordHash — bcrypt-хэш; открытый пароль никогда не сохраняется.
type Admin struct {
	// ID — UUID администратора.
	ID string `json:"id"`
	// Username — уникальное имя пользователя.
	Username string `json:"username"`
	// PasswordHash — bcrypt-хэш пароля. Никогда не отдаётся в API.
	PasswordHash string `json:"-"`
	// CreatedAt / UpdatedAt — служебные временные метки.
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
