package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "layout.html"

// TemplateManager хранит html шаблоны писем. Каждый шаблон определяет блок
// "content", который вставляется в общий layout.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager загружает встроенные шаблоны
func NewTemplateManager() (*TemplateManager, error) {
	tm := &TemplateManager{templates: make(map[string]*template.Template)}
	if err := tm.LoadFS(templateFS, "templates"); err != nil {
		return nil, err
	}
	return tm, nil
}

// LoadFS загружает все *.html из каталога dir (кроме layout)
func (tm *TemplateManager) LoadFS(fsys fs.FS, dir string) error {
	layout, err := fs.ReadFile(fsys, path.Join(dir, layoutFile))
	if err != nil {
		return fmt.Errorf("failed to read layout: %w", err)
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".html") || name == layoutFile {
			continue
		}
		content, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", name, err)
		}
		if err := tm.AddTemplate(strings.TrimSuffix(name, ".html"), string(layout), string(content)); err != nil {
			return err
		}
	}
	return nil
}

// AddTemplate регистрирует шаблон name = layout + content
func (tm *TemplateManager) AddTemplate(name, layout, content string) error {
	tpl, err := template.New(name).Parse(layout)
	if err != nil {
		return fmt.Errorf("failed to parse layout for %s: %w", name, err)
	}
	if _, err := tpl.Parse(content); err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()
	return nil
}

// Render рендерит шаблон с данными
func (tm *TemplateManager) Render(name string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[name]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", name)
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// TemplateNames возвращает отсортированный список шаблонов
func (tm *TemplateManager) TemplateNames() []string {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	names := make([]string, 0, len(tm.templates))
	for name := range tm.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
