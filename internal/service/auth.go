package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/bigkaa/goblog/internal/domain/model"
	"github.com/bigkaa/goblog/internal/repository"
	"github.com/bigkaa/goblog/internal/token"
)

// bcryptCost — стоимость хэширования пароля администратора.
const bcryptCost = 10

// AuthService — вход, регистрация и выпуск сессионных токенов.
type AuthService struct {
	admins repository.AdminRepository
	tokens *token.Service
	logger *slog.Logger
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(admins repository.AdminRepository, tokens *token.Service, logger *slog.Logger) *AuthService {
	return &AuthService{
		admins: admins,
		tokens: tokens,
		logger: logger.With(slog.String("component", "auth_service")),
	}
}

// Login проверяет учётные данные и возвращает подписанный токен.
// Неверный пароль и несуществующий пользователь — ValidationError,
// токен при этом не выпускается.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, validationErr("用户名或密码不能为空")
	}

	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, validationErr("用户不存在")
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Неверный пароль", slog.String("username", username))
		return "", nil, validationErr("密码错误")
	}

	tok, err := s.tokens.Issue(admin.ID)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("Администратор вошёл", slog.String("username", username))
	return tok, admin, nil
}

// Register создаёт учётную запись администратора.
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, validationErr("用户名或密码不能为空")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	admin, err := s.admins.Create(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, validationErr("用户名已存在")
		}
		return nil, err
	}

	s.logger.Info("Администратор зарегистрирован", slog.String("username", username))
	return admin, nil
}
