//go:build gocv
// +build gocv

package vision

import (
	"context"
	"image"

	"gocv.io/x/gocv"

	"rice-bot/internal/domain/entity"
	"rice-bot/internal/domain/port"
)

// LeafGate отсекает снимки без зелёной листвы до обращения к модели.
type LeafGate struct {
	next          port.Detector
	MinGreenRatio float64
	MaxSide       int
}

// NewLeafGate оборачивает детектор проверкой доли зелёных пикселей.
func NewLeafGate(next port.Detector, minGreenRatio float64) (*LeafGate, error) {
	return &LeafGate{
		next:          next,
		MinGreenRatio: minGreenRatio,
		MaxSide:       512,
	}, nil
}

// Detect возвращает "не лист риса", если зелени меньше порога.
// Нераспознаваемое изображение тоже считается не листом.
func (g *LeafGate) Detect(ctx context.Context, imageData []byte) (*entity.DetectionResult, error) {
	if len(imageData) == 0 {
		return nil, entity.ErrEmptyImage
	}

	ratio, ok := g.greenRatio(imageData)
	if !ok {
		return entity.NewNotLeafResult(0), nil
	}
	if ratio < g.MinGreenRatio {
		return entity.NewNotLeafResult(ratio), nil
	}

	return g.next.Detect(ctx, imageData)
}

func (g *LeafGate) greenRatio(imageData []byte) (float64, bool) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil {
		return 0, false
	}
	defer mat.Close()
	if mat.Empty() {
		return 0, false
	}

	// Уменьшаем картинку: для доли цвета полное разрешение не нужно.
	if mat.Cols() > g.MaxSide || mat.Rows() > g.MaxSide {
		scale := float64(g.MaxSide) / float64(max(mat.Cols(), mat.Rows()))
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(mat, &resized, image.Pt(int(float64(mat.Cols())*scale), int(float64(mat.Rows())*scale)), 0, 0, gocv.InterpolationArea)
		resized.CopyTo(&mat)
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(mat, &hsv, gocv.ColorBGRToHSV)

	// Оттенки от жёлто-зелёного до сине-зелёного, без тёмных и серых пикселей.
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv, gocv.NewScalar(25, 40, 40, 0), gocv.NewScalar(95, 255, 255, 0), &mask)

	total := mask.Cols() * mask.Rows()
	if total <= 0 {
		return 0, false
	}
	return float64(gocv.CountNonZero(mask)) / float64(total), true
}

var _ port.Detector = (*LeafGate)(nil)
