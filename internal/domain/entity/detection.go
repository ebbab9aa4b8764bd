package entity

// DetectionResult итог классификации одного изображения.
type DetectionResult struct {
	IsRiceLeaf     bool     `json:"isRiceLeaf"`
	Confidence     float64  `json:"confidence"`
	Disease        *Disease `json:"disease,omitempty"`
	ProcessingTime *float64 `json:"processingTime,omitempty"` // миллисекунды
}

// NewLeafResult собирает результат для листа риса.
// disease может быть nil, если уверенного совпадения нет.
func NewLeafResult(confidence float64, disease *Disease) *DetectionResult {
	r := &DetectionResult{
		IsRiceLeaf: true,
		Confidence: confidence,
		Disease:    disease,
	}
	r.Normalize()
	return r
}

// NewNotLeafResult собирает результат для изображения, которое не является листом риса.
func NewNotLeafResult(confidence float64) *DetectionResult {
	r := &DetectionResult{Confidence: confidence}
	r.Normalize()
	return r
}

// WithProcessingTime проставляет время обработки в миллисекундах.
func (r *DetectionResult) WithProcessingTime(ms float64) *DetectionResult {
	r.ProcessingTime = &ms
	r.Normalize()
	return r
}

// Normalize приводит результат к инвариантам контракта:
// уверенность в [0,1], болезнь только у листа риса, время не отрицательное.
func (r *DetectionResult) Normalize() {
	r.Confidence = ClampConfidence(r.Confidence)
	if !r.IsRiceLeaf {
		r.Disease = nil
	}
	if r.ProcessingTime != nil && *r.ProcessingTime < 0 {
		r.ProcessingTime = nil
	}
}

// HasDiagnosis сообщает, есть ли в результате панель с болезнью.
func (r *DetectionResult) HasDiagnosis() bool {
	return r != nil && r.IsRiceLeaf && r.Disease != nil
}

// Clone возвращает глубокую копию результата.
func (r *DetectionResult) Clone() *DetectionResult {
	if r == nil {
		return nil
	}
	out := *r
	if r.Disease != nil {
		d := r.Disease.Clone()
		out.Disease = &d
	}
	if r.ProcessingTime != nil {
		ms := *r.ProcessingTime
		out.ProcessingTime = &ms
	}
	return &out
}

// ClampConfidence ограничивает значение отрезком [0,1]. NaN считается нулём.
func ClampConfidence(v float64) float64 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
