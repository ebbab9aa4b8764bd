package render

import (
	"strings"

	"rice-bot/internal/domain/entity"
	"rice-bot/internal/domain/port"
)

// Text рендерер для чата: обычный текст без разметки.
type Text struct{}

// NewText создаёт текстовый рендерер.
func NewText() *Text {
	return &Text{}
}

func (Text) Render(result *entity.DetectionResult, isProcessing bool) (string, error) {
	p := Build(result, isProcessing)
	if p.Empty() {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(textIcon(p.State))
	b.WriteString(p.Title)
	b.WriteString("\n")
	b.WriteString(p.Subtitle)

	if d := p.Disease; d != nil {
		b.WriteString("\n\n")
		b.WriteString("🦠 ")
		b.WriteString(d.Name)
		b.WriteString("\n")
		b.WriteString(d.ScientificName)
		if d.ImageURL != "" {
			b.WriteString("\n🖼 ")
			b.WriteString(d.ImageURL)
		}
		if d.Description != "" {
			b.WriteString("\n\n")
			b.WriteString(d.Description)
		}
		writeList(&b, HeadingSymptoms, d.Symptoms)
		writeList(&b, HeadingTreat, d.Treatment)
		if p.ProcessingTime != "" {
			b.WriteString("\n\n")
			b.WriteString(p.ProcessingTime)
		}
	}

	return b.String(), nil
}

func writeList(b *strings.Builder, heading string, items []string) {
	b.WriteString("\n\n")
	b.WriteString(heading)
	b.WriteString(":")
	for _, item := range items {
		b.WriteString("\n• ")
		b.WriteString(item)
	}
}

func textIcon(state entity.ViewState) string {
	switch state {
	case entity.ViewProcessing:
		return "⏳ "
	case entity.ViewNotALeaf:
		return "❌ "
	default:
		return "✅ "
	}
}

var _ port.ResultRenderer = Text{}
