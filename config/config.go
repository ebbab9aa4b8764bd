package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Режимы детектора
const (
	DetectorMock   = "mock"
	DetectorRemote = "remote"
)

type Config struct {
	TelegramToken string `mapstructure:"telegram_token"`
	HTTPEnabled   bool   `mapstructure:"http_enabled"`
	HTTPAddr      string `mapstructure:"http_addr"`
	LogLevel      string `mapstructure:"log_level" validate:"oneof=debug info warn error"`

	Detector         string        `mapstructure:"detector" validate:"oneof=mock remote"`
	InferenceURL     string        `mapstructure:"inference_url" validate:"required,url"`
	InferenceTimeout time.Duration `mapstructure:"inference_timeout" validate:"gte=0"`
	MockDelay        time.Duration `mapstructure:"mock_delay" validate:"gte=0"`

	LeafGate         bool    `mapstructure:"leaf_gate"`
	LeafGateMinGreen float64 `mapstructure:"leaf_gate_min_green" validate:"gte=0,lte=1"`

	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" validate:"gt=0"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("telegram_token", "")
	v.SetDefault("http_enabled", true)
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("detector", DetectorMock)
	v.SetDefault("inference_url", "http://localhost:5000/predict")
	v.SetDefault("inference_timeout", 30*time.Second)
	v.SetDefault("mock_delay", 2*time.Second)
	v.SetDefault("leaf_gate", false)
	v.SetDefault("leaf_gate_min_green", 0.15)
	v.SetDefault("max_upload_bytes", 10<<20)
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	v := viper.New()
	defaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	cfg.Detector = strings.ToLower(cfg.Detector)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	// Пустая переменная окружения viper считает незаданной, поэтому
	// HTTP-сервер выключается только через HTTP_ENABLED=false.
	if c.HTTPEnabled && c.HTTPAddr == "" {
		return fmt.Errorf("invalid config: HTTP_ADDR is required when HTTP_ENABLED is set")
	}
	if !c.HTTPEnabled && c.TelegramToken == "" {
		return fmt.Errorf("invalid config: TELEGRAM_TOKEN is required when HTTP_ENABLED=false")
	}
	return nil
}
