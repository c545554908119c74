// Пакет token — выпуск и проверка сессионных JWT.
// HS256 с единым секретом из конфигурации; токен несёт один claim
// идентичности (subject = admin id) плюс iat/exp.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Service — сервис сессионных токенов.
type Service struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
}

// New создаёт сервис токенов с указанным секретом и временем жизни.
func New(secret []byte, ttl time.Duration) *Service {
	return &Service{
		secret: secret,
		ttl:    ttl,
		// Принимаем только HS256 — алгоритм из заголовка токена не доверяем.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// TTL возвращает время жизни выпускаемых токенов.
// Используется для Max-Age session cookie: cookie живёт ровно столько,
// сколько подписанный срок действия.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue выпускает подписанный токен для администратора adminID.
func (s *Service) Issue(adminID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   adminID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return signed, nil
}

// Verify проверяет подпись и срок действия токена.
// Возвращает (adminID, true) для валидного токена. Любая причина отказа
// (повреждённый токен, истёкший срок, неверная подпись) даёт единый
// результат ("", false) — причина не различается, чтобы не раскрывать
// детали валидации.
func (s *Service) Verify(tokenString string) (string, bool) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := s.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
