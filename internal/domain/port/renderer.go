package port

import "rice-bot/internal/domain/entity"

// ResultRenderer превращает результат классификации в представление для пользователя
type ResultRenderer interface {
	// Render возвращает пустую строку для состояния без результата
	Render(result *entity.DetectionResult, isProcessing bool) (string, error)
}
