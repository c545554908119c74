package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/goblog/internal/domain/model"
)

// AdminRepository — интерфейс доступа к учётным записям администраторов.
// В таблице хранится только bcrypt-хэш пароля.
type AdminRepository interface {
	// GetByUsername возвращает администратора по имени пользователя.
	GetByUsername(ctx context.Context, username string) (*model.Admin, error)
	// Create создаёт администратора. passwordHash — уже посчитанный bcrypt-хэш.
	Create(ctx context.Context, username, passwordHash string) (*model.Admin, error)
}

// adminRepo — реализация AdminRepository через pgx.
type adminRepo struct {
	db DBTX
}

// NewAdminRepository создаёт репозиторий администраторов.
func NewAdminRepository(db DBTX) AdminRepository {
	return &adminRepo{db: db}
}

// GetByUsername возвращает администратора или ErrNotFound.
func (r *adminRepo) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	query := `SELECT id, username, password_hash, created_at, updated_at
		FROM admins WHERE username = $1`

	a := &model.Admin{}
	err := r.db.QueryRow(ctx, query, username).Scan(
		&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения администратора: %w", err)
	}
	return a, nil
}

// Create создаёт администратора. Дубль имени возвращает ErrConflict.
func (r *adminRepo) Create(ctx context.Context, username, passwordHash string) (*model.Admin, error) {
	query := `INSERT INTO admins (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, password_hash, created_at, updated_at`

	a := &model.Admin{}
	err := r.db.QueryRow(ctx, query, username, passwordHash).Scan(
		&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("ошибка создания администратора: %w", err)
	}
	return a, nil
}
