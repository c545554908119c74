package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/goblog/internal/domain/model"
)

// categoryColumns — список столбцов таблицы categories для SELECT-запросов.
const categoryColumns = `id, title, slug, created_at, updated_at`

// CategoryRepository — интерфейс доступа к категориям.
type CategoryRepository interface {
	// List возвращает страницу категорий (новые первыми) и общее количество.
	List(ctx context.Context, limit, offset int) ([]*model.Category, int, error)
	// ListAll возвращает все категории, отсортированные по названию.
	ListAll(ctx context.Context) ([]*model.Category, error)
	// GetByID возвращает категорию по UUID.
	GetByID(ctx context.Context, id string) (*model.Category, error)
	// Create создаёт категорию.
	Create(ctx context.Context, category *model.Category) (*model.Category, error)
	// Update обновляет название и/или slug.
	Update(ctx context.Context, id string, title, slug *string) (*model.Category, error)
	// Delete удаляет категорию.
	Delete(ctx context.Context, id string) error
	// GetOrCreateByTitle возвращает категорию по названию, создавая её при отсутствии.
	// Используется при синхронизации markdown-каталога.
	GetOrCreateByTitle(ctx context.Context, title, slug string) (*model.Category, error)
}

// categoryRepo — реализация CategoryRepository через pgx.
type categoryRepo struct {
	db DBTX
}

// NewCategoryRepository создаёт репозиторий категорий.
func NewCategoryRepository(db DBTX) CategoryRepository {
	return &categoryRepo{db: db}
}

func scanCategory(row pgx.Row) (*model.Category, error) {
	c := &model.Category{}
	err := row.Scan(&c.ID, &c.Title, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List возвращает страницу категорий, отсортированных по дате создания (новые первыми).
func (r *categoryRepo) List(ctx context.Context, limit, offset int) ([]*model.Category, int, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM categories ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		categoryColumns,
	)

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выборки категорий: %w", err)
	}
	defer rows.Close()

	var result []*model.Category
	for rows.Next() {
		c := &model.Category{}
		if err := rows.Scan(&c.ID, &c.Title, &c.Slug, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования категории: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка итерации результатов: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта категорий: %w", err)
	}

	return result, total, nil
}

// ListAll возвращает все категории, отсортированные по названию.
func (r *categoryRepo) ListAll(ctx context.Context) ([]*model.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories ORDER BY title ASC`, categoryColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки категорий: %w", err)
	}
	defer rows.Close()

	var result []*model.Category
	for rows.Next() {
		c := &model.Category{}
		if err := rows.Scan(&c.ID, &c.Title, &c.Slug, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования категории: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// GetByID возвращает категорию по UUID или ErrNotFound.
func (r *categoryRepo) GetByID(ctx context.Context, id string) (*model.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE id = $1`, categoryColumns)

	category, err := scanCategory(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения категории: %w", err)
	}
	return category, nil
}

// Create создаёт категорию. Дубль названия или slug возвращает ErrConflict.
func (r *categoryRepo) Create(ctx context.Context, category *model.Category) (*model.Category, error) {
	query := fmt.Sprintf(
		`INSERT INTO categories (title, slug) VALUES ($1, $2) RETURNING %s`,
		categoryColumns,
	)

	created, err := scanCategory(r.db.QueryRow(ctx, query, category.Title, category.Slug))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("ошибка создания категории: %w", err)
	}
	return created, nil
}

// Update обновляет название и/или slug категории.
func (r *categoryRepo) Update(ctx context.Context, id string, title, slug *string) (*model.Category, error) {
	query := fmt.Sprintf(`
		UPDATE categories SET
			title      = COALESCE($2, title),
			slug       = COALESCE($3, slug),
			updated_at = now()
		WHERE id = $1
		RETURNING %s`, categoryColumns)

	category, err := scanCategory(r.db.QueryRow(ctx, query, id, title, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("ошибка обновления категории: %w", err)
	}
	return category, nil
}

// Delete удаляет категорию или возвращает ErrNotFound.
func (r *categoryRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		// На категорию ссылаются статьи: ссылочная целостность держит
		// удаление даже в обход прикладной защиты.
		if isForeignKeyViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("ошибка удаления категории: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetOrCreateByTitle возвращает категорию по названию, создавая её при отсутствии.
func (r *categoryRepo) GetOrCreateByTitle(ctx context.Context, title, slug string) (*model.Category, error) {
	query := fmt.Sprintf(`
		INSERT INTO categories (title, slug) VALUES ($1, $2)
		ON CONFLICT (title) DO UPDATE SET updated_at = categories.updated_at
		RETURNING %s`, categoryColumns)

	category, err := scanCategory(r.db.QueryRow(ctx, query, title, slug))
	if err != nil {
		return nil, fmt.Errorf("ошибка get-or-create категории: %w", err)
	}
	return category, nil
}
