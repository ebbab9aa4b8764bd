// Package render превращает результат классификации в представление для пользователя.
//
// Build сводит (результат, флаг обработки) к одному из четырёх состояний и
// готовит строки для вывода; Text и HTML только оформляют готовую модель.
package render

import (
	"fmt"

	"rice-bot/internal/domain/entity"
)

// Тексты панели результата
const (
	TitleProcessing = "Processing Image"
	TextProcessing  = "Analyzing the image for rice leaf detection and disease classification..."
	TitleLeaf       = "Rice Leaf Detected"
	TitleNotLeaf    = "Not a Rice Leaf"
	TextNotLeaf     = "Please upload an image of a rice leaf for disease detection."
	HeadingSymptoms = "Symptoms"
	HeadingTreat    = "Treatment"
)

// Panel модель представления результата.
type Panel struct {
	State          entity.ViewState
	Title          string
	Subtitle       string
	Disease        *entity.Disease // nil, если панели болезни нет
	ProcessingTime string          // пусто, если время не сообщено
}

// Empty true для состояния без вывода.
func (p Panel) Empty() bool {
	return p.State == entity.ViewIdle
}

// Build строит модель представления. Обработка всегда перекрывает прежний результат.
func Build(result *entity.DetectionResult, isProcessing bool) Panel {
	state := entity.ResolveView(result, isProcessing)
	p := Panel{State: state}

	switch state {
	case entity.ViewProcessing:
		p.Title = TitleProcessing
		p.Subtitle = TextProcessing
	case entity.ViewNotALeaf:
		p.Title = TitleNotLeaf
		p.Subtitle = TextNotLeaf
	case entity.ViewDiagnosis:
		p.Title = TitleLeaf
		p.Subtitle = "Confidence: " + FormatConfidence(result.Confidence)
		if result.Disease != nil {
			d := result.Disease.Clone()
			p.Disease = &d
			if result.ProcessingTime != nil {
				p.ProcessingTime = FormatProcessingTime(*result.ProcessingTime)
			}
		}
	}

	return p
}

// FormatConfidence печатает уверенность как процент с двумя знаками: 0.8532 -> "85.32%".
func FormatConfidence(confidence float64) string {
	return fmt.Sprintf("%.2f%%", entity.ClampConfidence(confidence)*100)
}

// FormatProcessingTime печатает время обработки в миллисекундах.
func FormatProcessingTime(ms float64) string {
	return fmt.Sprintf("Processing time: %.2fms", ms)
}
