package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"rice-bot/config"
	telegram "rice-bot/internal/api"
	httpapi "rice-bot/internal/api/http"
	"rice-bot/internal/container"
	"rice-bot/internal/domain/port"
	"rice-bot/internal/infrastructure/catalog"
	"rice-bot/internal/infrastructure/storage"
	"rice-bot/internal/infrastructure/vision"
	"rice-bot/internal/pkg/logger"
	"rice-bot/internal/render"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	diseases, err := catalog.Default()
	if err != nil {
		log.Fatalf("Failed to load disease catalog: %v", err)
	}

	detector := buildDetector(ctx, cfg, diseases, zl)

	htmlRenderer, err := render.NewHTML()
	if err != nil {
		log.Fatalf("Failed to build renderer: %v", err)
	}

	// Сессии пользователей живут только в памяти
	userRepo := storage.NewMemoryUserRepository()
	appContainer := container.New(userRepo, detector, render.NewText(), htmlRenderer, zl)

	var wg sync.WaitGroup

	if cfg.HTTPEnabled {
		gin.SetMode(gin.ReleaseMode)
		router, err := httpapi.NewRouter(appContainer, cfg.MaxUploadBytes)
		if err != nil {
			log.Fatalf("Failed to create router: %v", err)
		}
		srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

		wg.Add(1)
		go func() {
			defer wg.Done()
			zl.Infof(ctx, "HTTP server listening on %s", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zl.Errorf(ctx, "HTTP server error: %v", err)
				stop()
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			zl.Infof(ctx, "Bot is running...")
			if err := bot.Run(ctx); err != nil {
				zl.Errorf(ctx, "Bot error: %v", err)
			}
		}()
	}

	wg.Wait()
	zl.Infof(context.Background(), "stopped")
}

func buildDetector(ctx context.Context, cfg *config.Config, diseases *catalog.Catalog, zl logger.Logger) port.Detector {
	var detector port.Detector

	switch cfg.Detector {
	case config.DetectorRemote:
		remote := vision.NewRemoteDetector(cfg.InferenceURL, cfg.InferenceTimeout, diseases)
		if err := remote.CheckHealth(ctx); err != nil {
			zl.Warnf(ctx, "ML service not available: %v", err)
		}
		zl.Infof(ctx, "ML inference URL: %s", cfg.InferenceURL)
		detector = remote
	default:
		zl.Infof(ctx, "using mock detector with %s delay", cfg.MockDelay)
		detector = vision.NewMockDetector(diseases, cfg.MockDelay)
	}

	if cfg.LeafGate {
		gate, err := vision.NewLeafGate(detector, cfg.LeafGateMinGreen)
		if err != nil {
			zl.Warnf(ctx, "leaf gate disabled: %v", err)
			return detector
		}
		detector = gate
	}

	return detector
}
