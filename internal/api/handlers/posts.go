// posts.go — обработчики /api/posts.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goblog/internal/api/middleware"
	"github.com/bigkaa/goblog/internal/api/response"
	"github.com/bigkaa/goblog/internal/service"
)

// postRequest — тело POST /api/posts.
type postRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	CategoryID string   `json:"category"`
	Summary    string   `json:"summary"`
	Tags       []string `json:"tags"`
	Status     string   `json:"status"`
	Slug       string   `json:"slug"`
}

// postUpdateRequest — тело PUT /api/posts; id обязателен, остальные
// поля опциональны (nil — не менять).
type postUpdateRequest struct {
	ID         string    `json:"id"`
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	CategoryID *string   `json:"category"`
	Summary    *string   `json:"summary"`
	Tags       *[]string `json:"tags"`
	Status     *string   `json:"status"`
	Slug       *string   `json:"slug"`
}

// ListPosts — GET /api/posts.
// Без сессии видны только опубликованные; с сессией — все плюс фильтр
// статуса.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	authenticated := middleware.AdminIDFromContext(r.Context()) != ""

	result, err := h.content.ListPosts(r.Context(), service.ListQuery{
		Page:          page,
		Limit:         limit,
		Search:        q.Get("search"),
		Category:      q.Get("category"),
		Status:        q.Get("status"),
		Authenticated: authenticated,
	})
	if err != nil {
		h.serviceError(w, r, err, "文章不存在")
		return
	}

	response.List(w, result.Items, result.Total, result.Page, result.Limit)
}

// GetPost — GET /api/posts/{id}. Засчитывает просмотр.
// Черновик без сессии — 401.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Fail(w, http.StatusBadRequest, "缺少文章ID")
		return
	}

	authenticated := middleware.AdminIDFromContext(r.Context()) != ""

	post, err := h.content.GetPostByID(r.Context(), id, authenticated)
	if err != nil {
		h.serviceError(w, r, err, "文章不存在")
		return
	}

	response.Success(w, post)
}

// GetPostBySlug — GET /api/posts/slug/{slug}.
// Читает через кэш с fallback на markdown-каталог.
// Черновики видны только под сессией, для остальных это 404.
func (h *Handler) GetPostBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		response.Fail(w, http.StatusBadRequest, "缺少文章Slug")
		return
	}

	authenticated := middleware.AdminIDFromContext(r.Context()) != ""
	post, err := h.content.GetPostBySlug(r.Context(), slug, authenticated)
	if err != nil {
		h.serviceError(w, r, err, "文章不存在")
		return
	}

	response.Success(w, post)
}

// CreatePost — POST /api/posts. Требует сессии.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	author := middleware.AdminIDFromContext(r.Context())

	post, err := h.content.CreatePost(r.Context(), service.PostInput{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		Summary:    req.Summary,
		Tags:       req.Tags,
		Status:     req.Status,
		Slug:       req.Slug,
	}, author)
	if err != nil {
		h.serviceError(w, r, err, "文章不存在")
		return
	}

	response.SuccessMsg(w, post, "创建成功")
}

// UpdatePost — PUT /api/posts. Требует сессии; id в теле запроса.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req postUpdateRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" {
		response.Fail(w, http.StatusBadRequest, "缺少文章ID")
		return
	}

	post, err := h.content.UpdatePost(r.Context(), req.ID, service.PostUpdateInput{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		Summary:    req.Summary,
		Tags:       req.Tags,
		Status:     req.Status,
		Slug:       req.Slug,
	})
	if err != nil {
		h.serviceError(w, r, err, "文章不存在")
		return
	}

	response.SuccessMsg(w, post, "更新成功")
}

// DeletePost — DELETE /api/posts?id=. Требует сессии.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		response.Fail(w, http.StatusBadRequest, "缺少文章ID")
		return
	}

	if err := h.content.DeletePost(r.Context(), id); err != nil {
		h.serviceError(w, r, err, "文章不存在")
		return
	}

	response.SuccessMsg(w, nil, "删除成功")
}
