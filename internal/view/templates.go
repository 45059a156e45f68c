package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/citizen-portal/internal/domain"
)

//go:embed templates
var templateFS embed.FS

// Engine renders HTML pages. Every page is parsed together with the layouts
// so each can define its own "content" block.
type Engine struct {
	pages map[string]*template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CurrentPath string
	Identity    *domain.SessionIdentity
	Menu        *domain.Menu
	Error       string
	Message     string
	Form        map[string]string
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatUnix": func(sec int64) string {
			if sec == 0 {
				return ""
			}
			return time.Unix(sec, 0).UTC().Format("02 Jan 2006 15:04 MST")
		},
		"isActive": func(current, url string) bool {
			return current == url
		},
	}

	base, err := template.New("root").Funcs(funcMap).ParseFS(templateFS, "templates/layouts/*.html")
	if err != nil {
		return nil, err
	}

	pageFiles, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, file := range pageFiles {
		tpl, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := tpl.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		pages[strings.TrimSuffix(path.Base(file), ".html")] = tpl
	}
	return &Engine{pages: pages}, nil
}

// Has reports whether a page template exists.
func (e *Engine) Has(name string) bool {
	if e == nil {
		return false
	}
	_, ok := e.pages[name]
	return ok
}

// Render executes the named page with TemplateData and writes it with status.
func (e *Engine) Render(c *fiber.Ctx, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	tpl, ok := e.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	if data.CurrentPath == "" {
		data.CurrentPath = c.Path()
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}
