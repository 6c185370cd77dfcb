// Package app собирает общие для обоих бинарей зависимости: логгер,
// кэш диагнозов в Postgres и менеджер движков.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"agribazaar/api/internal/config"
	"agribazaar/api/internal/diagnosis"
	"agribazaar/api/internal/diagnosis/gemini"
	"agribazaar/api/internal/diagnosis/plantid"
	"agribazaar/api/internal/store"
)

// NewLogger: для debug development-логгер, иначе production с нужным уровнем.
func NewLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}

// OpenCache opens the result cache when DATABASE_URL is set. Without it
// both return values are nil and diagnoses are not cached.
func OpenCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (*sql.DB, *store.DiagnosisRepo, error) {
	if cfg.DatabaseURL == "" {
		log.Info("DATABASE_URL is empty, diagnosis cache disabled")
		return nil, nil, nil
	}
	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("db connected", zap.String("dsn", store.SafeDSNSummary(cfg.DatabaseURL)))

	repo := store.NewDiagnosisRepo(db, cfg.CacheTTL)
	repo.NotFoundMaxAge = cfg.NotFoundTTL
	if n, err := repo.PurgeOlderThan(ctx, cfg.CacheTTL); err != nil {
		log.Warn("purge diagnosis cache", zap.Error(err))
	} else if n > 0 {
		log.Info("purged diagnosis cache", zap.Int64("rows", n))
	}
	return db, repo, nil
}

// BuildManager creates a client per configured engine. The engine named by
// DIAGNOSIS_ENGINE is the default for every chat and API call.
func BuildManager(cfg *config.Config, log *zap.Logger, repo *store.DiagnosisRepo) (*diagnosis.Manager, error) {
	var (
		clients []*diagnosis.Client
		def     *diagnosis.Client
	)
	add := func(eng diagnosis.Engine) {
		c := diagnosis.NewClient(eng, log, cfg.Diagnosis)
		if repo != nil {
			c.WithCache(repo)
		}
		clients = append(clients, c)
		if eng.Name() == cfg.DiagnosisEngine {
			def = c
		}
	}
	if cfg.PlantIDAPIKey != "" {
		add(plantid.New(cfg.PlantIDAPIKey, cfg.PlantIDURL))
	}
	if cfg.GeminiAPIKey != "" {
		add(gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel))
	}
	if def == nil {
		return nil, fmt.Errorf("engine %q is not configured", cfg.DiagnosisEngine)
	}
	m := diagnosis.NewManager(def, clients...)
	log.Info("diagnosis engines ready", zap.Strings("engines", m.Names()), zap.String("default", def.Engine().Name()))
	return m, nil
}
