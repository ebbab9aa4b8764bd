package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response единый конверт JSON-ответа
type Response struct {
	Meta Meta        `json:"meta"`
	Data interface{} `json:"data,omitempty"`
}

// Meta код и сообщение ответа
type Meta struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Success ответ 200
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Meta: Meta{Code: http.StatusOK, Message: "OK"},
		Data: data,
	})
}

// Error ответ с ошибкой
func Error(c *gin.Context, httpCode int, message string, retryable bool) {
	c.JSON(httpCode, Response{
		Meta: Meta{Code: httpCode, Message: message, Retryable: retryable},
	})
}

// BadRequest 400
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message, false)
}
