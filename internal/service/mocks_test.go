package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bigkaa/goblog/internal/domain/model"
	"github.com/bigkaa/goblog/internal/repository"
)

// mockPostRepo — in-memory реализация PostRepository для тестов сервисов.
type mockPostRepo struct {
	mu    sync.Mutex
	posts map[string]*model.Post
	// listErr / getErr подменяют результат соответствующих методов.
	listErr error
	getErr  error
	nextID  int
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: map[string]*model.Post{}}
}

func (m *mockPostRepo) add(p *model.Post) *model.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		m.nextID++
		p.ID = fmt.Sprintf("post-%d", m.nextID)
	}
	m.posts[p.ID] = p
	return p
}

func (m *mockPostRepo) List(ctx context.Context, params repository.ListParams) ([]*model.Post, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Post
	for _, p := range m.posts {
		if params.Status != nil && p.Status != *params.Status {
			continue
		}
		if params.Search != nil && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(*params.Search)) {
			continue
		}
		if params.Category != nil && p.Category.Slug != *params.Category && p.Category.ID != *params.Category {
			continue
		}
		out = append(out, p)
	}
	total := len(out)
	if params.Offset >= len(out) {
		return []*model.Post{}, total, nil
	}
	out = out[params.Offset:]
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, total, nil
}

func (m *mockPostRepo) GetByID(ctx context.Context, id string) (*model.Post, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPostRepo) GetAndCountView(ctx context.Context, id string, publishedOnly bool) (*model.Post, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if publishedOnly && p.Status != model.StatusPublished {
		return nil, repository.ErrNotFound
	}
	p.ViewCount++
	cp := *p
	return &cp, nil
}

func (m *mockPostRepo) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockPostRepo) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	m.mu.Lock()
	for _, p := range m.posts {
		if p.Slug == post.Slug {
			m.mu.Unlock()
			return nil, repository.ErrConflict
		}
	}
	m.mu.Unlock()
	m.nextID++
	post.ID = post.Slug + "-id"
	return m.add(post), nil
}

func (m *mockPostRepo) Update(ctx context.Context, id string, upd repository.PostUpdate, updateDate time.Time) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if upd.Slug != nil {
		for _, other := range m.posts {
			if other.ID != id && other.Slug == *upd.Slug {
				return nil, repository.ErrConflict
			}
		}
		p.Slug = *upd.Slug
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Content != nil {
		p.Content = *upd.Content
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	p.UpdateDate = updateDate
	cp := *p
	return &cp, nil
}

func (m *mockPostRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *mockPostRepo) UpsertBySlug(ctx context.Context, post *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.Slug == post.Slug {
			p.Title = post.Title
			p.Content = post.Content
			return nil
		}
	}
	post.ID = post.Slug + "-id"
	m.posts[post.ID] = post
	return nil
}

func (m *mockPostRepo) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, p := range m.posts {
		if p.Category.ID == categoryID {
			count++
		}
	}
	return count, nil
}

// mockCategoryRepo — in-memory реализация CategoryRepository.
type mockCategoryRepo struct {
	mu         sync.Mutex
	categories map[string]*model.Category
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: map[string]*model.Category{}}
}

func (m *mockCategoryRepo) add(c *model.Category) *model.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = c.Slug + "-id"
	}
	m.categories[c.ID] = c
	return c
}

func (m *mockCategoryRepo) List(ctx context.Context, limit, offset int) ([]*model.Category, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Category
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *mockCategoryRepo) ListAll(ctx context.Context) ([]*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Category
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id string) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *model.Category) (*model.Category, error) {
	m.mu.Lock()
	for _, c := range m.categories {
		if c.Title == category.Title || c.Slug == category.Slug {
			m.mu.Unlock()
			return nil, repository.ErrConflict
		}
	}
	m.mu.Unlock()
	return m.add(category), nil
}

func (m *mockCategoryRepo) Update(ctx context.Context, id string, title, slug *string) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if title != nil {
		c.Title = *title
	}
	if slug != nil {
		c.Slug = *slug
	}
	return c, nil
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepo) GetOrCreateByTitle(ctx context.Context, title, slug string) (*model.Category, error) {
	m.mu.Lock()
	for _, c := range m.categories {
		if c.Title == title {
			m.mu.Unlock()
			return c, nil
		}
	}
	m.mu.Unlock()
	return m.add(&model.Category{Title: title, Slug: slug}), nil
}

// mockAdminRepo — in-memory реализация AdminRepository.
type mockAdminRepo struct {
	mu     sync.Mutex
	admins map[string]*model.Admin
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{admins: map[string]*model.Admin{}}
}

func (m *mockAdminRepo) GetByUsername(ctx context.Context, username string) (*model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (m *mockAdminRepo) Create(ctx context.Context, username, passwordHash string) (*model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.admins[username]; ok {
		return nil, repository.ErrConflict
	}
	a := &model.Admin{ID: username + "-id", Username: username, PasswordHash: passwordHash}
	m.admins[username] = a
	return a, nil
}

// mockDouyinRepo — in-memory реализация DouyinRepository со счётчиком.
type mockDouyinRepo struct {
	mu      sync.Mutex
	records map[string]*model.DouyinRecord
}

func newMockDouyinRepo() *mockDouyinRepo {
	return &mockDouyinRepo{records: map[string]*model.DouyinRecord{}}
}

func (m *mockDouyinRepo) Upsert(ctx context.Context, rec *model.DouyinRecord) (*model.DouyinRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.records[rec.AwemeID]; ok {
		prev.Downloads++
		cp := *prev
		return &cp, nil
	}
	rec.ID = rec.AwemeID + "-id"
	rec.Downloads = 1
	m.records[rec.AwemeID] = rec
	cp := *rec
	return &cp, nil
}

// mockCache — in-memory кэш с JSON-сериализацией, как в настоящем.
type mockCache struct {
	mu      sync.Mutex
	store   map[string][]byte
	hits    int
	sets    int
	deletes int
	clears  int
}

func newMockCache() *mockCache {
	return &mockCache{store: map[string][]byte{}}
}

func (m *mockCache) Get(ctx context.Context, key string, dest any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.store[key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}
	m.hits++
	return true
}

func (m *mockCache) Set(ctx context.Context, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	m.store[key] = raw
	m.sets++
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.store, k)
	}
	m.deletes++
}

func (m *mockCache) ClearPrefix(ctx context.Context, prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.store {
		if strings.HasPrefix(k, prefix) {
			delete(m.store, k)
		}
	}
	m.clears++
}
