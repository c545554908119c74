// categories.go — обработчики /api/categories.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/goblog/internal/api/response"
)

// categoryRequest — тело POST /api/categories.
type categoryRequest struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// categoryUpdateRequest — тело PUT /api/categories.
type categoryUpdateRequest struct {
	ID    string  `json:"id"`
	Title *string `json:"title"`
	Slug  *string `json:"slug"`
}

// ListCategories — GET /api/categories. Постраничный список для админки.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.categories.ListCategories(r.Context(), page, limit)
	if err != nil {
		h.serviceError(w, r, err, "分类不存在")
		return
	}

	response.List(w, result.Items, result.Total, result.Page, result.Limit)
}

// ListAllCategories — GET /api/categories/list. Полный список, без сессии.
func (h *Handler) ListAllCategories(w http.ResponseWriter, r *http.Request) {
	items, err := h.categories.ListAllCategories(r.Context())
	if err != nil {
		h.serviceError(w, r, err, "分类不存在")
		return
	}

	response.Success(w, items)
}

// GetCategory — GET /api/categories/{id}.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Fail(w, http.StatusBadRequest, "缺少分类ID")
		return
	}

	category, err := h.categories.GetCategory(r.Context(), id)
	if err != nil {
		h.serviceError(w, r, err, "分类不存在")
		return
	}

	response.Success(w, category)
}

// CreateCategory — POST /api/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	category, err := h.categories.CreateCategory(r.Context(), req.Title, req.Slug)
	if err != nil {
		h.serviceError(w, r, err, "分类不存在")
		return
	}

	response.SuccessMsg(w, category, "创建成功")
}

// UpdateCategory — PUT /api/categories.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryUpdateRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" {
		response.Fail(w, http.StatusBadRequest, "缺少分类ID")
		return
	}

	category, err := h.categories.UpdateCategory(r.Context(), req.ID, req.Title, req.Slug)
	if err != nil {
		h.serviceError(w, r, err, "分类不存在")
		return
	}

	response.SuccessMsg(w, category, "更新成功")
}

// DeleteCategory — DELETE /api/categories?id=.
// При включённой защите отказывает для непустой категории.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		response.Fail(w, http.StatusBadRequest, "缺少分类ID")
		return
	}

	if err := h.categories.DeleteCategory(r.Context(), id); err != nil {
		h.serviceError(w, r, err, "分类不存在")
		return
	}

	response.SuccessMsg(w, nil, "删除成功")
}
