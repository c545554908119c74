// content.go — сервис содержимого: чтение статей через cache-aside,
// CRUD с валидацией и политикой инвалидации, синхронизация
// с markdown-каталогом.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goblog/internal/domain/model"
	"github.com/bigkaa/goblog/internal/mdsource"
	"github.com/bigkaa/goblog/internal/repository"
)

// Лимиты пагинации списка статей.
const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Prometheus-метрики содержимого.
var (
	postViewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_post_views_total",
		Help: "Общее количество детальных чтений статей (инкрементов счётчика просмотров).",
	})
	mdSyncPostsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_mdsync_posts_total",
		Help: "Количество статей, загруженных из markdown-каталога при синхронизации.",
	})
)

// Cache — интерфейс кэша, используемый сервисом содержимого.
// Реализуется cache.Cache; все операции best-effort.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any)
	Delete(ctx context.Context, keys ...string)
	ClearPrefix(ctx context.Context, prefix string)
}

// ListQuery — запрос списка статей.
type ListQuery struct {
	// Page — номер страницы, с 1.
	Page int
	// Limit — размер страницы (по умолчанию 10, максимум 100).
	Limit int
	// Search — регистронезависимый поиск подстроки (заголовок, категория).
	Search string
	// Category — slug или UUID категории.
	Category string
	// Status — фильтр статуса; доступен только аутентифицированным.
	Status string
	// Authenticated — запрос с валидной сессией: видны черновики.
	Authenticated bool
}

// PostPage — страница статей с общим количеством.
type PostPage struct {
	Items []*model.Post `json:"items"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// PostInput — входные данные создания статьи.
type PostInput struct {
	Title      string
	Content    string
	CategoryID string
	Summary    string
	Tags       []string
	Status     string
	Slug       string
}

// PostUpdateInput — частичное обновление статьи; nil-поля не меняются.
type PostUpdateInput struct {
	Title      *string
	Content    *string
	CategoryID *string
	Summary    *string
	Tags       *[]string
	Status     *string
	Slug       *string
}

// ContentService — бизнес-логика статей.
type ContentService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	cache      Cache
	md         *mdsource.Source
	// tx — опциональный раннер транзакций: синхронизация с диска
	// пишет категорию и статью атомарно. nil — без транзакций.
	tx *repository.TxRunner
	// invalidateOnWrite — чистить кэш списков/деталей при записи.
	// false воспроизводит согласованность, ограниченную только TTL.
	invalidateOnWrite bool
	logger            *slog.Logger
}

// NewContentService создаёт сервис содержимого.
// md может быть nil — файловый источник выключен.
func NewContentService(
	posts repository.PostRepository,
	categories repository.CategoryRepository,
	cache Cache,
	md *mdsource.Source,
	tx *repository.TxRunner,
	invalidateOnWrite bool,
	logger *slog.Logger,
) *ContentService {
	return &ContentService{
		posts:             posts,
		categories:        categories,
		cache:             cache,
		md:                md,
		tx:                tx,
		invalidateOnWrite: invalidateOnWrite,
		logger:            logger.With(slog.String("component", "content_service")),
	}
}

// ListPosts возвращает страницу статей.
// Анонимные запросы видят только published; фильтр статуса игнорируется.
// Кэшируются только анонимные выборки: черновики в кэш не попадают,
// а админский список всегда читает источник истины.
func (s *ContentService) ListPosts(ctx context.Context, q ListQuery) (*PostPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}

	params := repository.ListParams{
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	}
	if q.Search != "" {
		params.Search = &q.Search
	}
	if q.Category != "" {
		params.Category = &q.Category
	}
	if q.Authenticated {
		if q.Status != "" {
			if q.Status != model.StatusDraft && q.Status != model.StatusPublished {
				return nil, validationErr("无效的状态")
			}
			params.Status = &q.Status
		}
	} else {
		published := model.StatusPublished
		params.Status = &published
	}

	cacheable := !q.Authenticated
	key := listCacheKey(q)

	if cacheable {
		page := &PostPage{}
		if s.cache.Get(ctx, key, page) {
			return page, nil
		}
	}

	items, total, err := s.posts.List(ctx, params)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*model.Post{}
	}

	page := &PostPage{Items: items, Total: total, Page: q.Page, Limit: q.Limit}

	if cacheable {
		s.cache.Set(ctx, key, page)
	}
	return page, nil
}

// listCacheKey строит ключ кэша списка из параметров запроса.
func listCacheKey(q ListQuery) string {
	return fmt.Sprintf("posts:list:p%d:l%d:s%s:c%s", q.Page, q.Limit, q.Search, q.Category)
}

// slugCacheKey строит ключ кэша детальной статьи.
func slugCacheKey(slug string) string {
	return "posts:slug:" + slug
}

// GetPostByID возвращает статью по id, засчитывая просмотр.
// Инкремент и проверка статуса — один SQL-запрос: черновик без
// аутентификации не засчитывается и не возвращается (ErrUnauthorized).
func (s *ContentService) GetPostByID(ctx context.Context, id string, authenticated bool) (*model.Post, error) {
	post, err := s.posts.GetAndCountView(ctx, id, !authenticated)
	if err == nil {
		postViewsTotal.Inc()
		return post, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// Либо статьи нет, либо это черновик, скрытый от анонимного
	// запроса. Различаем обычным чтением без учёта просмотра.
	if !authenticated {
		if hidden, herr := s.posts.GetByID(ctx, id); herr == nil && hidden.Status == model.StatusDraft {
			return nil, ErrUnauthorized
		}
	}
	return nil, ErrNotFound
}

// GetPostBySlug возвращает статью по slug по схеме cache-aside:
// кэш → БД → markdown-каталог (с до-синхронизацией в БД).
// Черновик для анонимного запроса неотличим от отсутствующей статьи:
// это касается и fallback-пути через markdown-каталог.
// Отсутствие статьи — ErrNotFound, нормальный исход.
func (s *ContentService) GetPostBySlug(ctx context.Context, slug string, authenticated bool) (*model.Post, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, ErrNotFound
	}

	// В кэше лежат только опубликованные статьи, попадание безопасно
	// для любого запроса.
	key := slugCacheKey(slug)
	cached := &model.Post{}
	if s.cache.Get(ctx, key, cached) {
		return cached, nil
	}

	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		// В БД нет — пробуем файловый источник истины, если настроен.
		post, err = s.syncSlugFromDisk(ctx, slug)
		if err != nil {
			return nil, err
		}
	}

	if post.Status != model.StatusPublished {
		if !authenticated {
			return nil, ErrNotFound
		}
		return post, nil
	}

	s.cache.Set(ctx, key, post)
	return post, nil
}

// syncSlugFromDisk подтягивает одну статью из markdown-каталога в БД.
func (s *ContentService) syncSlugFromDisk(ctx context.Context, slug string) (*model.Post, error) {
	if s.md == nil {
		return nil, ErrNotFound
	}

	entry, err := s.md.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotFound
	}

	if err := s.upsertEntry(ctx, entry); err != nil {
		return nil, err
	}

	post, err := s.posts.GetBySlug(ctx, entry.Slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

// CreatePost валидирует входные данные и создаёт статью.
// publishDate и updateDate назначаются сервером.
func (s *ContentService) CreatePost(ctx context.Context, in PostInput, author string) (*model.Post, error) {
	if err := validatePostInput(&in); err != nil {
		return nil, err
	}

	if _, err := s.categories.GetByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validationErr("分类不存在")
		}
		return nil, err
	}

	now := time.Now()
	post := &model.Post{
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		Category:    model.CategoryRef{ID: in.CategoryID},
		Summary:     strings.TrimSpace(in.Summary),
		Tags:        in.Tags,
		Status:      in.Status,
		PublishDate: now,
		UpdateDate:  now,
		Author:      author,
		Slug:        strings.ToLower(strings.TrimSpace(in.Slug)),
	}

	created, err := s.posts.Create(ctx, post)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, validationErr("Slug已存在")
		}
		return nil, err
	}

	s.invalidatePostCache(ctx, created.Slug)
	return created, nil
}

// UpdatePost применяет частичное обновление; updateDate назначается сервером.
func (s *ContentService) UpdatePost(ctx context.Context, id string, in PostUpdateInput) (*model.Post, error) {
	if err := validatePostUpdate(&in); err != nil {
		return nil, err
	}

	if in.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, validationErr("分类不存在")
			}
			return nil, err
		}
	}

	// Прежний slug нужен для инвалидации детального ключа при переименовании.
	var oldSlug string
	if prev, err := s.posts.GetByID(ctx, id); err == nil {
		oldSlug = prev.Slug
	}

	upd := repository.PostUpdate{
		Title:      in.Title,
		Content:    in.Content,
		CategoryID: in.CategoryID,
		Summary:    in.Summary,
		Tags:       in.Tags,
		Status:     in.Status,
		Slug:       in.Slug,
	}

	updated, err := s.posts.Update(ctx, id, upd, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrConflict):
			return nil, validationErr("Slug已存在")
		}
		return nil, err
	}

	s.invalidatePostCache(ctx, updated.Slug)
	if oldSlug != "" && oldSlug != updated.Slug {
		s.invalidatePostCache(ctx, oldSlug)
	}
	return updated, nil
}

// DeletePost удаляет статью.
func (s *ContentService) DeletePost(ctx context.Context, id string) error {
	var slug string
	if prev, err := s.posts.GetByID(ctx, id); err == nil {
		slug = prev.Slug
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.invalidatePostCache(ctx, slug)
	return nil
}

// invalidatePostCache чистит кэш списков и детальный ключ согласно политике.
func (s *ContentService) invalidatePostCache(ctx context.Context, slug string) {
	if !s.invalidateOnWrite {
		return
	}
	s.cache.ClearPrefix(ctx, "posts:list:")
	if slug != "" {
		s.cache.Delete(ctx, slugCacheKey(slug))
	}
}

// SyncFromDisk выполняет полный проход по markdown-каталогу и upsert'ит
// все статьи в БД. Вызывается по cron-расписанию и один раз при старте.
func (s *ContentService) SyncFromDisk(ctx context.Context) error {
	if s.md == nil {
		return nil
	}

	entries, err := s.md.List()
	if err != nil {
		return fmt.Errorf("ошибка чтения markdown-каталога: %w", err)
	}

	var synced int
	for _, entry := range entries {
		if err := s.upsertEntry(ctx, entry); err != nil {
			s.logger.Warn("Статья не синхронизирована",
				slog.String("slug", entry.Slug),
				slog.String("error", err.Error()),
			)
			continue
		}
		synced++
		mdSyncPostsTotal.Inc()
	}

	s.logger.Info("Синхронизация markdown-каталога завершена",
		slog.Int("total", len(entries)),
		slog.Int("synced", synced),
	)

	if s.invalidateOnWrite && synced > 0 {
		s.cache.ClearPrefix(ctx, "posts:")
	}
	return nil
}

// upsertEntry превращает markdown-статью в Post и upsert'ит её по slug.
// При наличии TxRunner категория и статья пишутся в одной транзакции.
func (s *ContentService) upsertEntry(ctx context.Context, entry *mdsource.Entry) error {
	if s.tx == nil {
		return s.writeEntry(ctx, s.categories, s.posts, entry)
	}
	return s.tx.RunInTx(ctx, func(db repository.DBTX) error {
		return s.writeEntry(ctx, repository.NewCategoryRepository(db), repository.NewPostRepository(db), entry)
	})
}

func (s *ContentService) writeEntry(
	ctx context.Context,
	categories repository.CategoryRepository,
	posts repository.PostRepository,
	entry *mdsource.Entry,
) error {
	categoryTitle := entry.Category
	if categoryTitle == "" {
		categoryTitle = "未分类"
	}

	category, err := categories.GetOrCreateByTitle(ctx, categoryTitle, Slugify(categoryTitle))
	if err != nil {
		return err
	}

	author := entry.Author
	if author == "" {
		author = "mdsource"
	}

	post := &model.Post{
		Title:       entry.Title,
		Content:     entry.Content,
		Category:    model.CategoryRef{ID: category.ID},
		Summary:     entry.Summary,
		Tags:        entry.Tags,
		Status:      entry.Status,
		PublishDate: entry.Date,
		UpdateDate:  entry.Date,
		Author:      author,
		Slug:        entry.Slug,
	}

	return posts.UpsertBySlug(ctx, post)
}

// --- Валидация ---

// validatePostInput проверяет обязательные поля и лимиты создания статьи.
func validatePostInput(in *PostInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return validationErr("标题是必需的")
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Title)) > 100 {
		return validationErr("标题不能超过100个字符")
	}
	if in.Content == "" {
		return validationErr("内容是必需的")
	}
	if in.CategoryID == "" {
		return validationErr("分类是必需的")
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Summary)) > 200 {
		return validationErr("摘要不能超过200个字符")
	}
	if strings.TrimSpace(in.Slug) == "" {
		return validationErr("Slug是必需的")
	}
	if in.Status == "" {
		in.Status = model.StatusDraft
	}
	if in.Status != model.StatusDraft && in.Status != model.StatusPublished {
		return validationErr("无效的状态")
	}
	return nil
}

// validatePostUpdate проверяет лимиты переданных полей обновления.
func validatePostUpdate(in *PostUpdateInput) error {
	if in.Title != nil {
		trimmed := strings.TrimSpace(*in.Title)
		if trimmed == "" {
			return validationErr("标题是必需的")
		}
		if utf8.RuneCountInString(trimmed) > 100 {
			return validationErr("标题不能超过100个字符")
		}
	}
	if in.Content != nil && *in.Content == "" {
		return validationErr("内容是必需的")
	}
	if in.Summary != nil && utf8.RuneCountInString(strings.TrimSpace(*in.Summary)) > 200 {
		return validationErr("摘要不能超过200个字符")
	}
	if in.Status != nil && *in.Status != model.StatusDraft && *in.Status != model.StatusPublished {
		return validationErr("无效的状态")
	}
	if in.Slug != nil {
		normalized := strings.ToLower(strings.TrimSpace(*in.Slug))
		if normalized == "" {
			return validationErr("Slug是必需的")
		}
		*in.Slug = normalized
	}
	return nil
}

// Slugify приводит строку к URL-безопасному slug в нижнем регистре.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r > 127:
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
