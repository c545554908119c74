package mdsource

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeFile создаёт файл со всеми родительскими каталогами.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// newTestSource создаёт источник над временным каталогом с двумя статьями.
func newTestSource(t *testing.T) *Source {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "hello-go.md"), `---
title: Привет, Go
date: 2025-01-15
category: go
tags:
  - golang
  - basics
---
# Заголовок

Текст статьи.
`)
	writeFile(t, filepath.Join(dir, "notes", "concurrency", "index.md"), `---
title: Конкурентность
date: 2025-03-02 10:30:00
category: go
summary: Горутины и каналы
---
Содержимое.
`)

	return New(dir, 100, 5*time.Minute, slog.Default())
}

// TestList_SortedByDateDesc проверяет обход каталога и сортировку по дате.
func TestList_SortedByDateDesc(t *testing.T) {
	src := newTestSource(t)

	entries, err := src.List()
	if err != nil {
		t.Fatalf("List() вернул ошибку: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, ожидается 2", len(entries))
	}

	// Новые первыми
	if entries[0].Slug != "notes/concurrency" {
		t.Errorf("entries[0].Slug = %q, ожидается notes/concurrency", entries[0].Slug)
	}
	if entries[1].Slug != "hello-go" {
		t.Errorf("entries[1].Slug = %q, ожидается hello-go", entries[1].Slug)
	}

	first := entries[1]
	if first.Title != "Привет, Go" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Category != "go" {
		t.Errorf("Category = %q, ожидается go", first.Category)
	}
	if len(first.Tags) != 2 || first.Tags[0] != "golang" {
		t.Errorf("Tags = %v, ожидается [golang basics]", first.Tags)
	}
	if first.Status != "published" {
		t.Errorf("Status = %q, ожидается published по умолчанию", first.Status)
	}
	if first.Content == "" || first.Content[0] != '#' {
		t.Errorf("Content = %q, frontmatter не отрезан", first.Content)
	}
}

// TestGetBySlug проверяет поиск slug.md и slug/index.md.
func TestGetBySlug(t *testing.T) {
	src := newTestSource(t)

	// Прямой файл
	entry, err := src.GetBySlug("hello-go")
	if err != nil {
		t.Fatalf("GetBySlug вернул ошибку: %v", err)
	}
	if entry == nil {
		t.Fatal("GetBySlug(hello-go) = nil")
	}
	if entry.Title != "Привет, Go" {
		t.Errorf("Title = %q", entry.Title)
	}

	// index.md в каталоге
	entry, err = src.GetBySlug("notes/concurrency")
	if err != nil {
		t.Fatalf("GetBySlug вернул ошибку: %v", err)
	}
	if entry == nil {
		t.Fatal("GetBySlug(notes/concurrency) = nil")
	}
	if entry.Summary != "Горутины и каналы" {
		t.Errorf("Summary = %q", entry.Summary)
	}

	// Отсутствующий slug — (nil, nil), не ошибка
	entry, err = src.GetBySlug("no-such-post")
	if err != nil {
		t.Fatalf("GetBySlug отсутствующего slug вернул ошибку: %v", err)
	}
	if entry != nil {
		t.Errorf("GetBySlug(no-such-post) = %+v, ожидается nil", entry)
	}
}

// TestList_SkipsBrokenFrontmatter проверяет, что файл без frontmatter
// пропускается, а не валит весь обход.
func TestList_SkipsBrokenFrontmatter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ok.md"), "---\ntitle: ok\ndate: 2025-01-01\ncategory: misc\n---\nтело\n")
	writeFile(t, filepath.Join(dir, "broken.md"), "просто текст без заголовка\n")

	src := New(dir, 10, time.Minute, slog.Default())
	entries, err := src.List()
	if err != nil {
		t.Fatalf("List() вернул ошибку: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, ожидается 1 (битый файл пропущен)", len(entries))
	}
	if entries[0].Slug != "ok" {
		t.Errorf("Slug = %q, ожидается ok", entries[0].Slug)
	}
}

// TestSplitFrontmatter_Errors проверяет ошибки разбора frontmatter.
func TestSplitFrontmatter_Errors(t *testing.T) {
	if _, _, err := splitFrontmatter([]byte("без разделителя")); err == nil {
		t.Error("ожидалась ошибка для файла без frontmatter")
	}
	if _, _, err := splitFrontmatter([]byte("---\ntitle: x\n")); err == nil {
		t.Error("ожидалась ошибка для незакрытого frontmatter")
	}
}

// TestParseDate проверяет поддерживаемые форматы дат.
func TestParseDate(t *testing.T) {
	for _, s := range []string{"2025-01-15", "2025-01-15 10:30", "2025-01-15 10:30:00", "2025-01-15T10:30:00Z"} {
		if _, err := parseDate(s); err != nil {
			t.Errorf("parseDate(%q) вернул ошибку: %v", s, err)
		}
	}
	if _, err := parseDate(""); err == nil {
		t.Error("parseDate(\"\") должен вернуть ошибку")
	}
}

// TestUnknownStatusSkipped проверяет, что файл с неизвестным status
// отбрасывается на разборе, а не доходит до БД.
func TestUnknownStatusSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.md"), `---
title: Нормальная
date: 2025-01-01
---
Текст.
`)
	writeFile(t, filepath.Join(dir, "weird.md"), `---
title: Странная
date: 2025-01-02
status: archived
---
Текст.
`)
	src := New(dir, 100, 5*time.Minute, slog.Default())

	entries, err := src.List()
	if err != nil {
		t.Fatalf("List() вернул ошибку: %v", err)
	}
	if len(entries) != 1 || entries[0].Slug != "good" {
		t.Fatalf("ожидается только good, получено %v", entries)
	}

	// Точечный запрос тоже ведёт себя как «файла нет».
	entry, err := src.GetBySlug("weird")
	if err != nil {
		t.Fatalf("GetBySlug(weird) вернул ошибку: %v", err)
	}
	if entry != nil {
		t.Errorf("GetBySlug(weird) = %+v, ожидается nil", entry)
	}
}
