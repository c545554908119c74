package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/bigkaa/goblog/internal/domain/model"
	"github.com/bigkaa/goblog/internal/repository"
)

// CategoryPage — страница категорий с общим количеством.
type CategoryPage struct {
	Items []*model.Category `json:"items"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// CategoryService — бизнес-логика категорий.
type CategoryService struct {
	categories repository.CategoryRepository
	posts      repository.PostRepository
	// deleteGuard — запрещать удаление непустой категории.
	deleteGuard bool
	logger      *slog.Logger
}

// NewCategoryService создаёт сервис категорий.
func NewCategoryService(
	categories repository.CategoryRepository,
	posts repository.PostRepository,
	deleteGuard bool,
	logger *slog.Logger,
) *CategoryService {
	return &CategoryService{
		categories:  categories,
		posts:       posts,
		deleteGuard: deleteGuard,
		logger:      logger.With(slog.String("component", "category_service")),
	}
}

// ListCategories возвращает страницу категорий (новые первыми).
func (s *CategoryService) ListCategories(ctx context.Context, page, limit int) (*CategoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	items, total, err := s.categories.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*model.Category{}
	}
	return &CategoryPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// ListAllCategories возвращает все категории для выпадающих списков.
func (s *CategoryService) ListAllCategories(ctx context.Context) ([]*model.Category, error) {
	items, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*model.Category{}
	}
	return items, nil
}

// GetCategory возвращает категорию по id.
func (s *CategoryService) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return category, nil
}

// CreateCategory валидирует и создаёт категорию.
// Slug при отсутствии выводится из названия.
func (s *CategoryService) CreateCategory(ctx context.Context, title, slug string) (*model.Category, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validationErr("分类名称是必需的")
	}
	if utf8.RuneCountInString(title) > 50 {
		return nil, validationErr("分类名称不能超过50个字符")
	}

	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, validationErr("Slug是必需的")
	}

	created, err := s.categories.Create(ctx, &model.Category{Title: title, Slug: slug})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, validationErr("分类已存在")
		}
		return nil, err
	}
	return created, nil
}

// UpdateCategory обновляет название и/или slug категории.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, title, slug *string) (*model.Category, error) {
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			return nil, validationErr("分类名称是必需的")
		}
		if utf8.RuneCountInString(trimmed) > 50 {
			return nil, validationErr("分类名称不能超过50个字符")
		}
		*title = trimmed
	}
	if slug != nil {
		normalized := strings.ToLower(strings.TrimSpace(*slug))
		if normalized == "" {
			return nil, validationErr("Slug是必需的")
		}
		*slug = normalized
	}

	updated, err := s.categories.Update(ctx, id, title, slug)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrConflict):
			return nil, validationErr("分类已存在")
		}
		return nil, err
	}
	return updated, nil
}

// DeleteCategory удаляет категорию.
// При включённой защите отказывает, если в категории остались статьи.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	if s.deleteGuard {
		count, err := s.posts.CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return validationErr("分类下存在文章，无法删除")
		}
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrNotFound
		case errors.Is(err, repository.ErrConflict):
			// Ссылочная целостность сработала раньше прикладной защиты.
			return validationErr("分类下存在文章，无法删除")
		}
		return err
	}
	return nil
}
