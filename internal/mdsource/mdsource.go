// Пакет mdsource — файловый источник статей: каталог markdown-файлов
// с YAML frontmatter. Альтернативный путь наполнения для деплоев,
// которые пишут статьи в git, а не в админке. Разобранные файлы
// кэшируются в expirable LRU по пути и времени модификации.
package mdsource

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"gopkg.in/yaml.v3"
)

// frontmatterDelim — разделитель YAML frontmatter.
const frontmatterDelim = "---"

// Entry — статья из markdown-каталога.
type Entry struct {
	// Slug — путь файла относительно корня каталога без расширения,
	// разделители нормализованы к "/", нижний регистр.
	Slug string
	// Title — заголовок из frontmatter.
	Title string
	// Date — дата публикации из frontmatter.
	Date time.Time
	// Category — название категории из frontmatter.
	Category string
	// Content — тело статьи (markdown без frontmatter).
	Content string
	// Summary — краткое описание (опционально).
	Summary string
	// Tags — теги (опционально).
	Tags []string
	// Status — draft или published (по умолчанию published).
	Status string
	// Author — автор (опционально).
	Author string
}

// frontmatter — сырые поля YAML-заголовка файла.
type frontmatter struct {
	Title    string   `yaml:"title"`
	Date     string   `yaml:"date"`
	Category string   `yaml:"category"`
	Summary  string   `yaml:"summary"`
	Tags     []string `yaml:"tags"`
	Status   string   `yaml:"status"`
	Author   string   `yaml:"author"`
}

// Source — файловый источник статей.
type Source struct {
	dir    string
	cache  *expirable.LRU[string, *Entry]
	logger *slog.Logger
}

// New создаёт источник для каталога dir.
// cacheSize — максимум разобранных файлов в LRU, ttl — их время жизни.
func New(dir string, cacheSize int, ttl time.Duration, logger *slog.Logger) *Source {
	return &Source{
		dir:    dir,
		cache:  expirable.NewLRU[string, *Entry](cacheSize, nil, ttl),
		logger: logger.With(slog.String("component", "mdsource")),
	}
}

// List возвращает все статьи каталога, отсортированные по дате (новые первыми).
// Файлы с нечитаемым frontmatter пропускаются с предупреждением в логе.
func (s *Source) List() ([]*Entry, error) {
	var entries []*Entry

	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		entry, err := s.parseFile(path)
		if err != nil {
			s.logger.Warn("Файл пропущен: ошибка разбора",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			return nil
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка обхода каталога %s: %w", s.dir, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries, nil
}

// GetBySlug возвращает статью по slug или (nil, nil), если файла нет.
// Пробует slug.md и slug/index.md.
func (s *Source) GetBySlug(slug string) (*Entry, error) {
	rel := filepath.FromSlash(strings.ToLower(strings.Trim(slug, "/")))

	candidates := []string{
		filepath.Join(s.dir, rel+".md"),
		filepath.Join(s.dir, rel, "index.md"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		entry, err := s.parseFile(path)
		if err != nil {
			// Битый файл ведёт себя как отсутствующий, а не как сбой.
			s.logger.Warn("Файл пропущен: ошибка разбора",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			continue
		}
		return entry, nil
	}

	return nil, nil
}

// parseFile разбирает markdown-файл с frontmatter, используя LRU-кэш.
// Ключ кэша включает время модификации: изменённый файл разбирается заново.
func (s *Source) parseFile(path string) (*Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка stat файла: %w", err)
	}

	cacheKey := fmt.Sprintf("%s@%d", path, info.ModTime().UnixNano())
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла: %w", err)
	}

	fm, content, err := splitFrontmatter(raw)
	if err != nil {
		return nil, err
	}
	if fm.Title == "" {
		return nil, fmt.Errorf("frontmatter без title: %s", path)
	}

	date, err := parseDate(fm.Date)
	if err != nil {
		return nil, fmt.Errorf("некорректная дата %q: %w", fm.Date, err)
	}

	status := fm.Status
	switch status {
	case "":
		status = "published"
	case "draft", "published":
	default:
		// Не пускаем в БД значение, которое не пройдёт её проверку статуса.
		return nil, fmt.Errorf("неизвестный status %q: %s", fm.Status, path)
	}

	entry := &Entry{
		Slug:     slugFromPath(s.dir, path),
		Title:    fm.Title,
		Date:     date,
		Category: fm.Category,
		Content:  content,
		Summary:  fm.Summary,
		Tags:     fm.Tags,
		Status:   status,
		Author:   fm.Author,
	}

	s.cache.Add(cacheKey, entry)
	return entry, nil
}

// splitFrontmatter отделяет YAML-заголовок от тела markdown.
func splitFrontmatter(raw []byte) (*frontmatter, string, error) {
	text := string(bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n")))

	if !strings.HasPrefix(text, frontmatterDelim+"\n") {
		return nil, "", fmt.Errorf("файл без frontmatter")
	}

	rest := text[len(frontmatterDelim)+1:]
	idx := strings.Index(rest, "\n"+frontmatterDelim)
	if idx < 0 {
		return nil, "", fmt.Errorf("frontmatter не закрыт")
	}

	head := rest[:idx]
	body := rest[idx+len(frontmatterDelim)+1:]
	body = strings.TrimPrefix(body, "\n")

	fm := &frontmatter{}
	if err := yaml.Unmarshal([]byte(head), fm); err != nil {
		return nil, "", fmt.Errorf("ошибка разбора frontmatter: %w", err)
	}

	return fm, strings.TrimSpace(body), nil
}

// parseDate разбирает дату frontmatter в распространённых форматах.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("дата не задана")
	}
	formats := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	var lastErr error
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// slugFromPath превращает путь файла в slug: относительный путь без
// расширения, "/" как разделитель, нижний регистр; index.md схлопывается
// в slug каталога.
func slugFromPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = strings.TrimSuffix(rel, ".md")
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, "/index")
	return strings.ToLower(rel)
}
