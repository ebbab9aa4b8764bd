package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"rice-bot/internal/domain/entity"
	"rice-bot/internal/domain/port"
)

//go:embed templates/*.html
var templateFS embed.FS

// HTML рендерер фрагмента страницы. Все поля экранируются html/template.
type HTML struct {
	tmpl *template.Template
}

// NewHTML разбирает встроенные шаблоны.
func NewHTML() (*HTML, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &HTML{tmpl: tmpl}, nil
}

func (h *HTML) Render(result *entity.DetectionResult, isProcessing bool) (string, error) {
	p := Build(result, isProcessing)
	if p.Empty() {
		return "", nil
	}

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "result.html", p); err != nil {
		return "", fmt.Errorf("execute result template: %w", err)
	}
	return buf.String(), nil
}

var _ port.ResultRenderer = (*HTML)(nil)
