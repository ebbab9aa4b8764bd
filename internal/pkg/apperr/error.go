package apperr

import (
	"errors"
	"net/http"

	"rice-bot/internal/domain/entity"
)

// Пользовательские сообщения об ошибках
const (
	MsgProcessingError = "An error occurred while processing the image. Please try again."
	MsgEmptyImage      = "The uploaded image is empty. Please choose a photo of a rice leaf."
)

// Error ошибка с кодом для внешних поверхностей и признаком повторяемости
type Error struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	cause     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Retriable временный сбой: пользователь может повторить отправку
func Retriable(message string, cause error) *Error {
	return &Error{Code: http.StatusBadGateway, Message: message, Retryable: true, cause: cause}
}

// NonRetriable ошибка ввода: повтор того же запроса не поможет
func NonRetriable(message string, cause error) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message, cause: cause}
}

// FromDetection переводит ошибку детектора в Error с общим сообщением для пользователя.
func FromDetection(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	if errors.Is(err, entity.ErrEmptyImage) {
		return NonRetriable(MsgEmptyImage, err)
	}
	if errors.Is(err, entity.ErrTransport) {
		return Retriable(MsgProcessingError, err)
	}

	return &Error{Code: http.StatusInternalServerError, Message: MsgProcessingError, Retryable: true, cause: err}
}
