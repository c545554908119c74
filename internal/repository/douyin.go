package repository

import (
	"context"
	"fmt"

	"github.com/bigkaa/goblog/internal/domain/model"
)

// DouyinRepository — интерфейс доступа к записям douyin-загрузок.
type DouyinRepository interface {
	// Upsert вставляет запись или, при существующем aweme_id, атомарно
	// увеличивает счётчик скачиваний и обновляет метаданные.
	// Возвращает сохранённую запись с актуальным счётчиком.
	Upsert(ctx context.Context, rec *model.DouyinRecord) (*model.DouyinRecord, error)
}

// douyinRepo — реализация DouyinRepository через pgx.
type douyinRepo struct {
	db DBTX
}

// NewDouyinRepository создаёт репозиторий douyin-записей.
func NewDouyinRepository(db DBTX) DouyinRepository {
	return &douyinRepo{db: db}
}

// Upsert — INSERT ... ON CONFLICT: повторный разбор того же aweme_id
// увеличивает downloads на 1 вместо создания дубля. Инкремент атомарен
// на уровне одного SQL-запроса.
func (r *douyinRepo) Upsert(ctx context.Context, rec *model.DouyinRecord) (*model.DouyinRecord, error) {
	query := `
		INSERT INTO douyin_records (aweme_id, author_name, title, video_url,
			cover_url, image_urls, type, downloads)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1)
		ON CONFLICT (aweme_id) DO UPDATE SET
			author_name = EXCLUDED.author_name,
			title       = EXCLUDED.title,
			video_url   = EXCLUDED.video_url,
			cover_url   = EXCLUDED.cover_url,
			image_urls  = EXCLUDED.image_urls,
			type        = EXCLUDED.type,
			downloads   = douyin_records.downloads + 1,
			updated_at  = now()
		RETURNING id, aweme_id, author_name, title, video_url, cover_url,
			image_urls, type, downloads, created_at, updated_at`

	stored := &model.DouyinRecord{}
	err := r.db.QueryRow(ctx, query,
		rec.AwemeID, rec.AuthorName, rec.Title, rec.VideoURL,
		rec.CoverURL, rec.ImageURLs, rec.Type,
	).Scan(
		&stored.ID, &stored.AwemeID, &stored.AuthorName, &stored.Title,
		&stored.VideoURL, &stored.CoverURL, &stored.ImageURLs, &stored.Type,
		&stored.Downloads, &stored.CreatedAt, &stored.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка upsert douyin-записи: %w", err)
	}
	return stored, nil
}
