package container

import (
	app "rice-bot/internal/application"
	"rice-bot/internal/domain/port"
	"rice-bot/internal/pkg/logger"
)

type Container struct {
	UserService      *app.UserService
	DetectionService *app.DetectionService
	TextRenderer     port.ResultRenderer
	HTMLRenderer     port.ResultRenderer
	Log              logger.Logger
}

func New(userRepo port.UserRepository, detector port.Detector, text, html port.ResultRenderer, log logger.Logger) *Container {
	userService := app.NewUserService(userRepo)
	detectionService := app.NewDetectionService(userService, detector, log)

	return &Container{
		UserService:      userService,
		DetectionService: detectionService,
		TextRenderer:     text,
		HTMLRenderer:     html,
		Log:              log,
	}
}
