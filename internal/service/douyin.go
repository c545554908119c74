// douyin.go — разбор share-ссылок douyin и проксирование медиа.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goblog/internal/domain/model"
	"github.com/bigkaa/goblog/internal/repository"
)

// Ошибки разбора douyin-ссылок. Текст виден пользователю.
var (
	// ErrInvalidShareLink — текст не содержит короткой douyin-ссылки.
	ErrInvalidShareLink = validationErr("非抖音分享链接")
	// ErrUserProfileLink — ссылка ведёт на профиль, а не на контент.
	ErrUserProfileLink = validationErr("不支持解析用户主页分享")
	// ErrParseFailed — страница получена, но данные извлечь не удалось.
	ErrParseFailed = errors.New("解析失败")
)

var (
	// shareLinkRe — короткая ссылка внутри произвольного share-текста.
	shareLinkRe = regexp.MustCompile(`https://v\.douyin\.com/(\w+)/?`)
	// routerDataRe — встроенный JSON состояния страницы.
	routerDataRe = regexp.MustCompile(`(?s)_ROUTER_DATA\s*=\s*(\{.*?\});`)
	// digitsRe — числовой идентификатор контента в развёрнутом URL.
	// Идентификаторы aweme длинные, короткие числа (порт, версия) не подходят.
	digitsRe = regexp.MustCompile(`\d{10,}`)
)

// mobileUA — мобильный User-Agent: десктопным страница share/video не отдаётся.
const mobileUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) " +
	"AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Mobile/15E148 Safari/604.1"

var douyinParseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "blog_douyin_parse_total",
	Help: "Разборы douyin-ссылок по результату.",
}, []string{"status"})

// routerData — минимальная проекция _ROUTER_DATA страницы share/video.
type routerData struct {
	LoaderData map[string]struct {
		VideoInfoRes struct {
			ItemList []douyinItem `json:"item_list"`
		} `json:"videoInfoRes"`
	} `json:"loaderData"`
}

// douyinItem — единица контента внутри item_list.
type douyinItem struct {
	AwemeID string `json:"aweme_id"`
	Desc    string `json:"desc"`
	Author  struct {
		Nickname string `json:"nickname"`
	} `json:"author"`
	Video struct {
		PlayAddr struct {
			URI string `json:"uri"`
		} `json:"play_addr"`
		Cover struct {
			URLList []string `json:"url_list"`
		} `json:"cover"`
	} `json:"video"`
	Images []struct {
		URLList []string `json:"url_list"`
	} `json:"images"`
}

// DouyinService — разбор share-ссылок с учётом скачиваний.
type DouyinService struct {
	records repository.DouyinRepository
	// noRedirect — клиент без следования редиректам: нужен Location.
	noRedirect *http.Client
	client     *http.Client
	// shareBase/pageBase переопределяются в тестах на httptest-серверы.
	shareBase string
	pageBase  string
	logger    *slog.Logger
}

// NewDouyinService создаёт сервис разбора douyin-ссылок.
func NewDouyinService(records repository.DouyinRepository, logger *slog.Logger) *DouyinService {
	return &DouyinService{
		records: records,
		noRedirect: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		client:    &http.Client{Timeout: 30 * time.Second},
		shareBase: "https://v.douyin.com",
		pageBase:  "https://www.iesdouyin.com",
		logger:    logger.With(slog.String("component", "douyin_service")),
	}
}

// Parse извлекает из share-текста короткую ссылку, разворачивает её,
// разбирает страницу контента и сохраняет результат со счётчиком скачиваний.
func (s *DouyinService) Parse(ctx context.Context, shareText string) (*model.DouyinRecord, error) {
	rec, err := s.parse(ctx, shareText)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			douyinParseTotal.WithLabelValues("invalid").Inc()
		} else {
			douyinParseTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	douyinParseTotal.WithLabelValues("ok").Inc()
	return rec, nil
}

func (s *DouyinService) parse(ctx context.Context, shareText string) (*model.DouyinRecord, error) {
	m := shareLinkRe.FindStringSubmatch(shareText)
	if m == nil {
		return nil, ErrInvalidShareLink
	}

	realURL, err := s.expandShortLink(ctx, m[1])
	if err != nil {
		return nil, err
	}

	if strings.Contains(realURL, "iesdouyin.com/share/user") {
		return nil, ErrUserProfileLink
	}

	videoID := digitsRe.FindString(realURL)
	if videoID == "" {
		return nil, fmt.Errorf("%w: идентификатор не найден в %q", ErrParseFailed, realURL)
	}

	item, err := s.fetchItem(ctx, videoID)
	if err != nil {
		return nil, err
	}

	rec := buildRecord(item)
	stored, err := s.records.Upsert(ctx, rec)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// expandShortLink получает настоящий адрес из Location короткой ссылки.
func (s *DouyinService) expandShortLink(ctx context.Context, code string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.shareBase+"/"+code+"/", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", mobileUA)

	resp, err := s.noRedirect.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: короткая ссылка недоступна: %v", ErrParseFailed, err)
	}
	defer resp.Body.Close()

	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", fmt.Errorf("%w: короткая ссылка не ведёт на контент", ErrParseFailed)
	}
	return loc, nil
}

// fetchItem скачивает страницу контента и извлекает из неё item_list[0].
func (s *DouyinService) fetchItem(ctx context.Context, videoID string) (*douyinItem, error) {
	pageURL := fmt.Sprintf("%s/share/video/%s/", s.pageBase, videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", mobileUA)
	req.Header.Set("Referer", "https://www.douyin.com/")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: страница контента недоступна: %v", ErrParseFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: ошибка чтения страницы: %v", ErrParseFailed, err)
	}

	m := routerDataRe.FindSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("%w: _ROUTER_DATA не найдена", ErrParseFailed)
	}

	var data routerData
	if err := json.Unmarshal(m[1], &data); err != nil {
		return nil, fmt.Errorf("%w: некорректный JSON состояния: %v", ErrParseFailed, err)
	}

	page, ok := data.LoaderData["video_("+videoID+")/page"]
	if !ok || len(page.VideoInfoRes.ItemList) == 0 {
		return nil, fmt.Errorf("%w: item_list пуст", ErrParseFailed)
	}
	return &page.VideoInfoRes.ItemList[0], nil
}

// buildRecord строит доменную запись из разобранного item.
func buildRecord(item *douyinItem) *model.DouyinRecord {
	rec := &model.DouyinRecord{
		AwemeID:    item.AwemeID,
		AuthorName: item.Author.Nickname,
		Title:      item.Desc,
	}

	if len(item.Video.Cover.URLList) > 0 {
		rec.CoverURL = item.Video.Cover.URLList[0]
	}

	if len(item.Images) > 0 {
		rec.Type = model.DouyinTypeImages
		for _, img := range item.Images {
			if len(img.URLList) > 0 {
				rec.ImageURLs = append(rec.ImageURLs, img.URLList[0])
			}
		}
		return rec
	}

	rec.Type = model.DouyinTypeVideo
	uri := item.Video.PlayAddr.URI
	if uri != "" {
		if strings.Contains(uri, "mp3") {
			rec.VideoURL = uri
		} else {
			rec.VideoURL = fmt.Sprintf(
				"https://aweme.snssdk.com/aweme/v1/play/?video_id=%s&ratio=1080p&line=0", uri)
		}
	}
	return rec
}

// proxyHeaders — заголовки ответа источника, пробрасываемые клиенту.
var proxyHeaders = []string{
	"Content-Length",
	"Content-Type",
	"Content-Disposition",
	"Accept-Ranges",
	"Cache-Control",
}

// Play проксирует удалённое медиа клиенту: исходящий GET с браузерными
// заголовками, проброс белого списка заголовков и потоковая отдача тела.
func (s *DouyinService) Play(ctx context.Context, w http.ResponseWriter, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", mobileUA)
	req.Header.Set("Referer", "https://www.douyin.com/")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("источник медиа недоступен: %w", err)
	}
	defer resp.Body.Close()

	for _, h := range proxyHeaders {
		if v := resp.Header.Get(h); v != "" {
			w.Header().Set(h, v)
		}
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		s.logger.Warn("Проксирование медиа прервано", slog.String("error", err.Error()))
	}
	return nil
}
