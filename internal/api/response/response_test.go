package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

// TestFail_EnvelopeShape проверяет форму конверта ошибки.
func TestFail_EnvelopeShape(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, 400, "密码错误")

	if rec.Code != 400 {
		t.Errorf("status = %d, ожидается 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, ожидается application/json", ct)
	}

	var env struct {
		Data     *json.RawMessage `json:"data"`
		Message  string           `json:"message"`
		ShowType string           `json:"showType"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("ошибка разбора ответа: %v", err)
	}
	if env.Data != nil && string(*env.Data) != "null" {
		t.Errorf("data = %s, ожидается null", *env.Data)
	}
	if env.Message != "密码错误" {
		t.Errorf("message = %q, ожидается 密码错误", env.Message)
	}
	if env.ShowType != "error" {
		t.Errorf("showType = %q, ожидается error", env.ShowType)
	}
}

// TestSuccess_Silent проверяет silent showType успешного ответа.
func TestSuccess_Silent(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]string{"id": "1"})

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("ошибка разбора ответа: %v", err)
	}
	if env.ShowType != ShowSilent {
		t.Errorf("showType = %q, ожидается silent", env.ShowType)
	}
	if rec.Code != 200 {
		t.Errorf("status = %d, ожидается 200", rec.Code)
	}
}

// TestNewListData_Pagination проверяет пагинационную арифметику:
// hasMore == page*limit < total, totalPages == ceil(total/limit).
func TestNewListData_Pagination(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		page       int
		limit      int
		hasMore    bool
		totalPages int
	}{
		{"пустой список", 0, 1, 10, false, 1},
		{"одна неполная страница", 5, 1, 10, false, 1},
		{"ровно одна страница", 10, 1, 10, false, 1},
		{"первая из трёх", 25, 1, 10, true, 3},
		{"вторая из трёх", 25, 2, 10, true, 3},
		{"последняя из трёх", 25, 3, 10, false, 3},
		{"страница за пределами", 25, 5, 10, false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ld := NewListData([]int{}, tt.total, tt.page, tt.limit)
			if ld.HasMore != tt.hasMore {
				t.Errorf("HasMore = %v, ожидается %v", ld.HasMore, tt.hasMore)
			}
			if ld.TotalPages != tt.totalPages {
				t.Errorf("TotalPages = %d, ожидается %d", ld.TotalPages, tt.totalPages)
			}
			if ld.CurrentPage != tt.page {
				t.Errorf("CurrentPage = %d, ожидается %d", ld.CurrentPage, tt.page)
			}
			if ld.Total != tt.total {
				t.Errorf("Total = %d, ожидается %d", ld.Total, tt.total)
			}
		})
	}
}
