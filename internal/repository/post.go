package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/goblog/internal/domain/model"
)

// postColumns — список столбцов для SELECT одной статьи (с JOIN категории).
// DRY: одно место для всех SELECT'ов детальной выборки.
const postColumns = `p.id, p.title, p.content, p.summary, p.tags, p.status,
	p.publish_date, p.update_date, p.view_count, p.author, p.slug,
	p.created_at, p.updated_at, c.id, c.title, c.slug`

// listColumns — столбцы для списков: без content (списки отдаются без тела статьи).
const listColumns = `p.id, p.title, p.summary, p.tags, p.status,
	p.publish_date, p.update_date, p.view_count, p.author, p.slug,
	p.created_at, p.updated_at, c.id, c.title, c.slug`

// ListParams — параметры выборки списка статей.
// Все фильтры — указатели, nil = фильтр не применяется.
type ListParams struct {
	// Search — регистронезависимый поиск подстроки по заголовку статьи
	// и названию категории.
	Search *string
	// Category — фильтр по slug или UUID категории.
	Category *string
	// Status — фильтр по статусу (draft/published).
	Status *string
	// Limit — количество результатов.
	Limit int
	// Offset — смещение.
	Offset int
}

// PostUpdate — частичное обновление статьи. nil-поля не меняются.
type PostUpdate struct {
	Title      *string
	Content    *string
	CategoryID *string
	Summary    *string
	Tags       *[]string
	Status     *string
	Slug       *string
}

// PostRepository — интерфейс доступа к статьям.
type PostRepository interface {
	// List возвращает страницу статей (без content) и общее количество.
	List(ctx context.Context, params ListParams) ([]*model.Post, int, error)
	// GetByID возвращает статью по UUID без учёта просмотра.
	GetByID(ctx context.Context, id string) (*model.Post, error)
	// GetAndCountView атомарно увеличивает счётчик просмотров и возвращает
	// статью со свежим значением. При publishedOnly черновик не засчитывается
	// и не возвращается (ErrNotFound).
	GetAndCountView(ctx context.Context, id string, publishedOnly bool) (*model.Post, error)
	// GetBySlug возвращает статью по slug.
	GetBySlug(ctx context.Context, slug string) (*model.Post, error)
	// Create создаёт статью, возвращает её с заполненными полями.
	Create(ctx context.Context, post *model.Post) (*model.Post, error)
	// Update применяет частичное обновление и возвращает результат.
	Update(ctx context.Context, id string, upd PostUpdate, updateDate time.Time) (*model.Post, error)
	// Delete удаляет статью.
	Delete(ctx context.Context, id string) error
	// UpsertBySlug вставляет или обновляет статью по slug (источник — markdown-каталог).
	UpsertBySlug(ctx context.Context, post *model.Post) error
	// CountByCategory возвращает количество статей, ссылающихся на категорию.
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}

// postRepo — реализация PostRepository через pgx.
type postRepo struct {
	db DBTX
}

// NewPostRepository создаёт репозиторий статей.
func NewPostRepository(db DBTX) PostRepository {
	return &postRepo{db: db}
}

// scanPost сканирует строку детальной выборки.
func scanPost(row pgx.Row) (*model.Post, error) {
	p := &model.Post{}
	err := row.Scan(
		&p.ID, &p.Title, &p.Content, &p.Summary, &p.Tags, &p.Status,
		&p.PublishDate, &p.UpdateDate, &p.ViewCount, &p.Author, &p.Slug,
		&p.CreatedAt, &p.UpdatedAt,
		&p.Category.ID, &p.Category.Title, &p.Category.Slug,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List возвращает страницу статей с динамическими фильтрами и общим количеством.
// Сортировка — по дате публикации, новые первыми.
func (r *postRepo) List(ctx context.Context, params ListParams) ([]*model.Post, int, error) {
	where, args := buildPostWhere(params)
	argNum := len(args) + 1

	dataQuery := fmt.Sprintf(
		`SELECT %s FROM posts p JOIN categories c ON c.id = p.category_id
		%s ORDER BY p.publish_date DESC LIMIT $%d OFFSET $%d`,
		listColumns, where, argNum, argNum+1,
	)
	dataArgs := append(append([]any{}, args...), params.Limit, params.Offset)

	rows, err := r.db.Query(ctx, dataQuery, dataArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выборки статей: %w", err)
	}
	defer rows.Close()

	var result []*model.Post
	for rows.Next() {
		p := &model.Post{}
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Summary, &p.Tags, &p.Status,
			&p.PublishDate, &p.UpdateDate, &p.ViewCount, &p.Author, &p.Slug,
			&p.CreatedAt, &p.UpdatedAt,
			&p.Category.ID, &p.Category.Title, &p.Category.Slug,
		); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования статьи: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка итерации результатов: %w", err)
	}

	countQuery := fmt.Sprintf(
		`SELECT COUNT(*) FROM posts p JOIN categories c ON c.id = p.category_id %s`, where,
	)

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта статей: %w", err)
	}

	return result, total, nil
}

// buildPostWhere строит WHERE-условие для List.
func buildPostWhere(params ListParams) (string, []any) {
	var conds []string
	var args []any
	argNum := 1

	if params.Search != nil && *params.Search != "" {
		conds = append(conds, fmt.Sprintf("(p.title ILIKE $%d OR c.title ILIKE $%d)", argNum, argNum))
		args = append(args, "%"+*params.Search+"%")
		argNum++
	}
	if params.Category != nil && *params.Category != "" {
		conds = append(conds, fmt.Sprintf("(c.slug = $%d OR c.id::text = $%d)", argNum, argNum))
		args = append(args, *params.Category)
		argNum++
	}
	if params.Status != nil && *params.Status != "" {
		conds = append(conds, fmt.Sprintf("p.status = $%d", argNum))
		args = append(args, *params.Status)
		argNum++
	}

	if len(conds) == 0 {
		return "", args
	}
	where := "WHERE " + conds[0]
	for _, c := range conds[1:] {
		where += " AND " + c
	}
	return where, args
}

// GetByID возвращает статью по UUID или ErrNotFound.
func (r *postRepo) GetByID(ctx context.Context, id string) (*model.Post, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM posts p JOIN categories c ON c.id = p.category_id WHERE p.id = $1`,
		postColumns,
	)

	post, err := scanPost(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения статьи: %w", err)
	}
	return post, nil
}

// GetAndCountView увеличивает счётчик просмотров атомарно
// (UPDATE ... SET view_count = view_count + 1) и возвращает статью:
// N конкурентных чтений дают ровно +N без потерянных обновлений.
// Условие статуса входит в WHERE того же запроса, поэтому при
// publishedOnly черновик не может быть ни засчитан, ни прочитан,
// даже если статус меняется конкурентно.
func (r *postRepo) GetAndCountView(ctx context.Context, id string, publishedOnly bool) (*model.Post, error) {
	query := fmt.Sprintf(`
		WITH bumped AS (
			UPDATE posts SET view_count = view_count + 1
			WHERE id = $1 AND (NOT $2 OR status = 'published')
			RETURNING *
		)
		SELECT %s FROM bumped p JOIN categories c ON c.id = p.category_id`, postColumns)

	post, err := scanPost(r.db.QueryRow(ctx, query, id, publishedOnly))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка учёта просмотра: %w", err)
	}
	return post, nil
}

// GetBySlug возвращает статью по slug или ErrNotFound.
func (r *postRepo) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM posts p JOIN categories c ON c.id = p.category_id WHERE p.slug = $1`,
		postColumns,
	)

	post, err := scanPost(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения статьи по slug: %w", err)
	}
	return post, nil
}

// Create создаёт статью. Дублирующийся slug возвращает ErrConflict.
func (r *postRepo) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	query := `
		INSERT INTO posts (title, content, category_id, summary, tags, status,
			publish_date, update_date, author, slug)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	var id string
	err := r.db.QueryRow(ctx, query,
		post.Title, post.Content, post.Category.ID, post.Summary, post.Tags,
		post.Status, post.PublishDate, post.UpdateDate, post.Author, post.Slug,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("ошибка создания статьи: %w", err)
	}

	return r.GetByID(ctx, id)
}

// Update применяет частичное обновление: COALESCE оставляет прежние значения
// для не переданных полей. updateDate назначается сервером при каждом изменении.
func (r *postRepo) Update(ctx context.Context, id string, upd PostUpdate, updateDate time.Time) (*model.Post, error) {
	query := `
		UPDATE posts SET
			title       = COALESCE($2, title),
			content     = COALESCE($3, content),
			category_id = COALESCE($4, category_id),
			summary     = COALESCE($5, summary),
			tags        = COALESCE($6, tags),
			status      = COALESCE($7, status),
			slug        = COALESCE($8, slug),
			update_date = $9,
			updated_at  = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		id, upd.Title, upd.Content, upd.CategoryID, upd.Summary, upd.Tags,
		upd.Status, upd.Slug, updateDate,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("ошибка обновления статьи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete удаляет статью или возвращает ErrNotFound.
func (r *postRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления статьи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertBySlug вставляет статью или обновляет содержимое по slug.
// Счётчик просмотров при обновлении сохраняется.
func (r *postRepo) UpsertBySlug(ctx context.Context, post *model.Post) error {
	query := `
		INSERT INTO posts (title, content, category_id, summary, tags, status,
			publish_date, update_date, author, slug)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (slug) DO UPDATE SET
			title       = EXCLUDED.title,
			content     = EXCLUDED.content,
			category_id = EXCLUDED.category_id,
			summary     = EXCLUDED.summary,
			tags        = EXCLUDED.tags,
			status      = EXCLUDED.status,
			publish_date = EXCLUDED.publish_date,
			update_date = EXCLUDED.update_date,
			updated_at  = now()`

	_, err := r.db.Exec(ctx, query,
		post.Title, post.Content, post.Category.ID, post.Summary, post.Tags,
		post.Status, post.PublishDate, post.UpdateDate, post.Author, post.Slug,
	)
	if err != nil {
		return fmt.Errorf("ошибка upsert статьи: %w", err)
	}
	return nil
}

// CountByCategory возвращает количество статей, ссылающихся на категорию.
func (r *postRepo) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM posts WHERE category_id = $1`, categoryID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта статей категории: %w", err)
	}
	return count, nil
}
