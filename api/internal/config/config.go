package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"agribazaar/api/internal/diagnosis"
	"agribazaar/api/internal/imagecodec"
)

type Config struct {
	Port     string
	LogLevel string

	TelegramBotToken string
	WebhookURL       string
	DatabaseURL      string

	// Ключи только из окружения, в коде литералов нет.
	PlantIDAPIKey string
	PlantIDURL    string
	GeminiAPIKey  string
	GeminiModel   string

	DiagnosisEngine string
	Diagnosis       diagnosis.Options
	CacheTTL        time.Duration
	NotFoundTTL     time.Duration
	ImageMaxBytes   int64
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := getEnv(k, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("env %s: %w", k, err)
	}
	return d, nil
}

func getInt(k string, def int64) (int64, error) {
	v := getEnv(k, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("env %s: %w", k, err)
	}
	return n, nil
}

// Load читает конфигурацию из окружения. Нужен хотя бы один ключ движка
// диагностики, а выбранный по умолчанию движок должен быть настроен.
func Load() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
		DatabaseURL:      getEnv("DATABASE_URL", ""),

		PlantIDAPIKey: getEnv("PLANT_ID_API_KEY", ""),
		PlantIDURL:    getEnv("PLANT_ID_URL", "https://api.plant.id/v2/identify"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		DiagnosisEngine: strings.ToLower(getEnv("DIAGNOSIS_ENGINE", "plantid")),
		Diagnosis:       diagnosis.DefaultOptions(),
	}

	attempts, err := getInt("DIAGNOSIS_MAX_ATTEMPTS", int64(cfg.Diagnosis.MaxAttempts))
	if err != nil {
		return nil, err
	}
	if attempts < 1 {
		return nil, fmt.Errorf("env DIAGNOSIS_MAX_ATTEMPTS must be >= 1, got %d", attempts)
	}
	cfg.Diagnosis.MaxAttempts = int(attempts)
	if cfg.Diagnosis.Backoff, err = getDuration("DIAGNOSIS_BACKOFF", cfg.Diagnosis.Backoff); err != nil {
		return nil, err
	}
	if cfg.Diagnosis.Timeout, err = getDuration("DIAGNOSIS_TIMEOUT", cfg.Diagnosis.Timeout); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("DIAGNOSIS_CACHE_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.NotFoundTTL, err = getDuration("DIAGNOSIS_NOTFOUND_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ImageMaxBytes, err = getInt("IMAGE_MAX_BYTES", imagecodec.DefaultMaxBytes); err != nil {
		return nil, err
	}

	switch cfg.DiagnosisEngine {
	case "plantid":
		if cfg.PlantIDAPIKey == "" {
			return nil, fmt.Errorf("missing required env PLANT_ID_API_KEY")
		}
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("missing required env GEMINI_API_KEY")
		}
	default:
		return nil, fmt.Errorf("env DIAGNOSIS_ENGINE: unknown engine %q (plantid | gemini)", cfg.DiagnosisEngine)
	}
	return cfg, nil
}
