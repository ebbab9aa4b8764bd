package entity

import "errors"

var (
	// ErrEmptyImage возвращается детектором на пустой ввод.
	ErrEmptyImage = errors.New("empty image")
	// ErrTransport оборачивает сбои сети и внешнего сервиса классификации.
	ErrTransport = errors.New("detection transport failure")
)
