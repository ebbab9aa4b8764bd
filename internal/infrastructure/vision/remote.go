package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"rice-bot/internal/domain/entity"
	"rice-bot/internal/domain/port"
	"rice-bot/internal/infrastructure/catalog"
)

// RemoteDetector выполняет классификацию через внешний сервис модели.
type RemoteDetector struct {
	inferenceURL string
	client       *http.Client
	catalog      *catalog.Catalog
}

// inferenceResponse ответ сервиса модели. Сервис может вернуть готовую
// запись о болезни либо только метку класса из справочника.
type inferenceResponse struct {
	IsRiceLeaf     bool            `json:"isRiceLeaf"`
	Confidence     float64         `json:"confidence"`
	Label          string          `json:"label,omitempty"`
	Disease        *entity.Disease `json:"disease,omitempty"`
	ProcessingTime *float64        `json:"processingTime,omitempty"`
}

// NewRemoteDetector создаёт адаптер к сервису модели.
func NewRemoteDetector(inferenceURL string, timeout time.Duration, c *catalog.Catalog) *RemoteDetector {
	return &RemoteDetector{
		inferenceURL: inferenceURL,
		client:       &http.Client{Timeout: timeout},
		catalog:      c,
	}
}

// Detect отправляет изображение в сервис модели одним запросом, без повторов.
func (d *RemoteDetector) Detect(ctx context.Context, image []byte) (*entity.DetectionResult, error) {
	if len(image) == 0 {
		return nil, entity.ErrEmptyImage
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "leaf.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.inferenceURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w: %w", entity.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: inference failed with status: %d", entity.ErrTransport, resp.StatusCode)
	}

	var out inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w: %w", entity.ErrTransport, err)
	}

	result := d.toResult(out)
	if result.ProcessingTime == nil {
		result.WithProcessingTime(float64(time.Since(start).Microseconds()) / 1000)
	}
	return result, nil
}

func (d *RemoteDetector) toResult(out inferenceResponse) *entity.DetectionResult {
	if !out.IsRiceLeaf {
		return entity.NewNotLeafResult(out.Confidence)
	}

	disease := out.Disease
	if disease == nil && out.Label != "" && d.catalog != nil {
		if found, ok := d.catalog.Lookup(out.Label); ok {
			disease = &found
		}
	}

	result := entity.NewLeafResult(out.Confidence, disease)
	if out.ProcessingTime != nil {
		result.WithProcessingTime(*out.ProcessingTime)
	}
	return result
}

// CheckHealth проверяет доступность сервиса модели по пути /health.
func (d *RemoteDetector) CheckHealth(ctx context.Context) error {
	u, err := url.Parse(d.inferenceURL)
	if err != nil {
		return fmt.Errorf("parse inference url: %w", err)
	}
	u.Path = "/health"
	u.RawQuery = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ml service unhealthy: %d", resp.StatusCode)
	}

	return nil
}

var _ port.Detector = (*RemoteDetector)(nil)
