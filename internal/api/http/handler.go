package httpapi

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	app "rice-bot/internal/application"
	"rice-bot/internal/container"
	"rice-bot/internal/domain/entity"
	"rice-bot/internal/domain/port"
	"rice-bot/internal/pkg/apperr"
	"rice-bot/internal/pkg/logger"
)

//go:embed templates/index.html
var pageFS embed.FS

const msgNoFile = "No file uploaded"

type Handler struct {
	detection *app.DetectionService
	html      port.ResultRenderer
	text      port.ResultRenderer
	log       logger.Logger
	page      *template.Template
}

// pageData данные страницы загрузки
type pageData struct {
	Error  string
	Result template.HTML
}

// DetectResponse тело успешного JSON-ответа
type DetectResponse struct {
	State  entity.ViewState        `json:"state"`
	Result *entity.DetectionResult `json:"result"`
	Text   string                  `json:"text"`
}

func NewHandler(c *container.Container) (*Handler, error) {
	if c.HTMLRenderer == nil || c.TextRenderer == nil {
		return nil, errors.New("renderers are not configured")
	}

	page, err := template.ParseFS(pageFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}

	return &Handler{
		detection: c.DetectionService,
		html:      c.HTMLRenderer,
		text:      c.TextRenderer,
		log:       c.Log,
		page:      page,
	}, nil
}

// Index GET /
func (h *Handler) Index(c *gin.Context) {
	h.renderPage(c, http.StatusOK, pageData{})
}

// Health GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DetectPage POST /detect: классифицирует файл и возвращает страницу с результатом
func (h *Handler) DetectPage(c *gin.Context) {
	image, err := readUpload(c)
	if err != nil {
		h.renderPage(c, http.StatusBadRequest, pageData{Error: msgNoFile})
		return
	}

	user, err := h.detection.Evaluate(c.Request.Context(), image)
	if err != nil {
		appErr := apperr.FromDetection(err)
		h.renderPage(c, appErr.Code, pageData{Error: appErr.Message})
		return
	}

	fragment, err := h.html.Render(user.Result, user.IsProcessing())
	if err != nil {
		h.log.Errorf(c.Request.Context(), "render result: %v", err)
		h.renderPage(c, http.StatusInternalServerError, pageData{Error: apperr.MsgProcessingError})
		return
	}

	// фрагмент собран html/template и уже экранирован
	h.renderPage(c, http.StatusOK, pageData{Result: template.HTML(fragment)})
}

// DetectJSON POST /api/v1/detect
func (h *Handler) DetectJSON(c *gin.Context) {
	image, err := readUpload(c)
	if err != nil {
		BadRequest(c, msgNoFile)
		return
	}

	user, err := h.detection.Evaluate(c.Request.Context(), image)
	if err != nil {
		appErr := apperr.FromDetection(err)
		Error(c, appErr.Code, appErr.Message, appErr.Retryable)
		return
	}

	text, err := h.text.Render(user.Result, user.IsProcessing())
	if err != nil {
		h.log.Errorf(c.Request.Context(), "render result: %v", err)
		Error(c, http.StatusInternalServerError, apperr.MsgProcessingError, true)
		return
	}

	Success(c, DetectResponse{State: user.View(), Result: user.Result, Text: text})
}

func (h *Handler) renderPage(c *gin.Context, status int, data pageData) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := h.page.Execute(c.Writer, data); err != nil {
		h.log.Errorf(c.Request.Context(), "render page: %v", err)
	}
}

// readUpload читает multipart-поле file. Пустой файл не считается ошибкой
// здесь: его отклоняет детектор.
func readUpload(c *gin.Context) ([]byte, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, err
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
