// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — ресурс не найден. Нормальный, не исключительный исход:
	// обработчики переводят его в конверт 400/404, а не в 500.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrUnauthorized — операция требует валидной сессии.
	ErrUnauthorized = errors.New("требуется аутентификация")
)

// ValidationError — ошибка валидации входных данных с сообщением
// для пользователя (отдаётся в конверте как есть).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// validationErr создаёт ValidationError с указанным сообщением.
func validationErr(message string) error {
	return &ValidationError{Message: message}
}
