// Package bootstrap provides dependency initialization for the RNAfold API.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/seqfold/rnafold-api/internal/config"
	"github.com/seqfold/rnafold-api/internal/job"
	"github.com/seqfold/rnafold-api/internal/storage"
	"github.com/seqfold/rnafold-api/internal/tools"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	FoldService *job.FoldService
	Registry    *tools.Registry
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	// Initialize storage
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize engine registry
	registry, err := initRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Initialize job repository
	repo := job.NewMemoryRepository()

	// Initialize FoldService
	svc := job.NewFoldService(
		repo,
		registry,
		store,
		logger,
		job.WithJoinTimeout(cfg.JoinTimeout()),
		job.WithDefaultTemperature(cfg.DefaultTemperature),
	)

	return &Dependencies{
		FoldService: svc,
		Registry:    registry,
	}, nil
}

// initRegistry builds the engine registry. An engines file extends the
// built-in defaults; RNAFOLD_BIN overrides the default engine's binary.
func initRegistry(cfg *config.Config, logger *slog.Logger) (*tools.Registry, error) {
	var registry *tools.Registry
	if cfg.EnginesFile != "" {
		reg, err := tools.Load(cfg.EnginesFile)
		if err != nil {
			return nil, fmt.Errorf("load engines file: %w", err)
		}
		registry = reg
		logger.Info("engine registry loaded",
			slog.String("file", cfg.EnginesFile),
			slog.Any("engines", registry.Names()),
		)
	} else {
		registry = tools.Default()
	}

	if cfg.RNAfoldBin != "" {
		registry.SetBin(tools.DefaultEngine, cfg.RNAfoldBin)
	}
	return registry, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.TempDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("temp_dir", cfg.TempDir),
	)
	return localStore, nil
}
