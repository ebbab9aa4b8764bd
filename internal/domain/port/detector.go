package port

import (
	"context"

	"rice-bot/internal/domain/entity"
)

// Detector интерфейс сервиса распознавания болезней риса
type Detector interface {
	// Detect классифицирует изображение. Ошибка возвращается только при пустом
	// вводе (entity.ErrEmptyImage) или сбое транспорта (entity.ErrTransport);
	// "не лист риса" является обычным результатом.
	Detect(ctx context.Context, image []byte) (*entity.DetectionResult, error)
}
