//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"rice-bot/internal/domain/entity"
	"rice-bot/internal/domain/port"
)

// LeafGate без OpenCV недоступен: конструктор возвращает ошибку.
type LeafGate struct {
	next          port.Detector
	MinGreenRatio float64
	MaxSide       int
}

// NewLeafGate возвращает ошибку, если сборка без тега gocv.
func NewLeafGate(next port.Detector, minGreenRatio float64) (*LeafGate, error) {
	return &LeafGate{next: next, MinGreenRatio: minGreenRatio}, errors.New("gocv build tag is not enabled")
}

// Detect передаёт изображение дальше без проверки.
func (g *LeafGate) Detect(ctx context.Context, imageData []byte) (*entity.DetectionResult, error) {
	return g.next.Detect(ctx, imageData)
}

var _ port.Detector = (*LeafGate)(nil)
