// douyin.go — обработчики /api/douyin: разбор share-ссылок и
// проксирование медиа.
package handlers

import (
	"errors"
	"net/http"

	"github.com/bigkaa/goblog/internal/api/response"
	"github.com/bigkaa/goblog/internal/service"
)

// douyinParseRequest — тело POST /api/douyin/parse.
type douyinParseRequest struct {
	URL string `json:"url"`
}

// DouyinParse — POST /api/douyin/parse.
// Принимает произвольный share-текст со ссылкой v.douyin.com.
func (h *Handler) DouyinParse(w http.ResponseWriter, r *http.Request) {
	var req douyinParseRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		response.Fail(w, http.StatusBadRequest, "缺少分享链接")
		return
	}

	rec, err := h.douyin.Parse(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, service.ErrParseFailed) {
			response.Fail(w, http.StatusBadRequest, "解析失败")
			return
		}
		h.serviceError(w, r, err, "解析失败")
		return
	}

	response.SuccessMsg(w, rec, "解析成功")
}

// DouyinPlay — GET /api/douyin/play?url=. Проксирует удалённое медиа.
func (h *Handler) DouyinPlay(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		response.Fail(w, http.StatusBadRequest, "缺少媒体地址")
		return
	}

	if err := h.douyin.Play(r.Context(), w, url); err != nil {
		// Заголовки ещё не отправлены только при ошибке исходящего запроса.
		response.Fail(w, http.StatusBadGateway, "媒体源不可用")
	}
}
