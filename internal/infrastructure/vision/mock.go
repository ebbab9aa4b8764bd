package vision

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"rice-bot/internal/domain/entity"
	"rice-bot/internal/domain/port"
	"rice-bot/internal/infrastructure/catalog"
)

// notLeafEvery доля изображений, которые мок считает не листом риса (1 из N).
const notLeafEvery = 5

// MockDetector имитирует сервис классификации: ждёт Delay и детерминированно
// выбирает ответ по хешу изображения.
type MockDetector struct {
	Delay   time.Duration
	catalog *catalog.Catalog
}

// NewMockDetector создаёт мок поверх справочника болезней.
func NewMockDetector(c *catalog.Catalog, delay time.Duration) *MockDetector {
	return &MockDetector{Delay: delay, catalog: c}
}

// Detect возвращает сфабрикованный результат для непустого изображения.
func (d *MockDetector) Detect(ctx context.Context, image []byte) (*entity.DetectionResult, error) {
	if len(image) == 0 {
		return nil, entity.ErrEmptyImage
	}

	start := time.Now()
	if d.Delay > 0 {
		timer := time.NewTimer(d.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	sum := sha256.Sum256(image)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	if sum[0]%notLeafEvery == 0 {
		return entity.NewNotLeafResult(float64(sum[1]) / 255 * 0.5), nil
	}

	confidence := 0.85 + float64(binary.BigEndian.Uint16(sum[6:8]))/65536*0.15

	var disease *entity.Disease
	if labels := d.catalog.Labels(); len(labels) > 0 {
		idx := binary.BigEndian.Uint32(sum[2:6]) % uint32(len(labels))
		if found, ok := d.catalog.Lookup(labels[idx]); ok {
			disease = &found
		}
	}

	return entity.NewLeafResult(confidence, disease).WithProcessingTime(elapsed), nil
}

var _ port.Detector = (*MockDetector)(nil)
