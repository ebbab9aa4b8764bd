package entity

// ViewState одно из четырёх состояний отображения результата.
type ViewState string

const (
	ViewIdle       ViewState = "idle"
	ViewProcessing ViewState = "processing"
	ViewNotALeaf   ViewState = "not_a_leaf"
	ViewDiagnosis  ViewState = "diagnosis"
)

// ResolveView сводит результат и флаг обработки к состоянию отображения.
// Обработка всегда важнее ранее полученного результата.
func ResolveView(result *DetectionResult, isProcessing bool) ViewState {
	switch {
	case isProcessing:
		return ViewProcessing
	case result == nil:
		return ViewIdle
	case !result.IsRiceLeaf:
		return ViewNotALeaf
	default:
		return ViewDiagnosis
	}
}
