package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kdimtricp/cuetrainer/internal/ai"
	"github.com/kdimtricp/cuetrainer/internal/analysis"
	"github.com/kdimtricp/cuetrainer/internal/api"
	"github.com/kdimtricp/cuetrainer/internal/config"
	"github.com/kdimtricp/cuetrainer/internal/database"
	"github.com/kdimtricp/cuetrainer/internal/logging"
	"github.com/kdimtricp/cuetrainer/internal/metrics"
	"github.com/kdimtricp/cuetrainer/internal/storage"
	"github.com/kdimtricp/cuetrainer/internal/training"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	uploads, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	db, err := database.NewDB(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	applied, err := database.NewMigrator(db, logging.WithComponent(logger, "migrator")).Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("database ready", "type", db.Type(), "migrations_applied", applied)

	m := metrics.New()
	videoRepo := database.NewVideoRepository(db)
	truthRepo := database.NewGroundTruthRepository(db)
	sessionRepo := database.NewSessionRepository(db)
	attemptRepo := database.NewAttemptRepository(db)

	// Analysis needs ffmpeg and an inference provider. Without them the
	// trainer still serves sessions over existing ground truth.
	var analyzer api.Analyzer = unavailableAnalyzer{}
	if svc, err := newAnalysisService(ctx, cfg, videoRepo, truthRepo, m, logger); err != nil {
		logger.Warn("video analysis disabled", "error", err)
	} else {
		analyzer = svc
	}

	trainer := training.NewService(videoRepo, truthRepo, sessionRepo, attemptRepo, m, logging.WithComponent(logger, "training"))

	handlers := &api.Handlers{
		Analyzer:          analyzer,
		Trainer:           trainer,
		Videos:            videoRepo,
		Attributes:        truthRepo,
		Storage:           uploads,
		DB:                db,
		AssetsPath:        cfg.AssetsPath,
		MaxUploadSize:     cfg.MaxUploadSize,
		DefaultAttributes: cfg.AI.DefaultAttributes,
		Logger:            logging.WithComponent(logger, "api"),
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(handlers, m, logging.WithComponent(logger, "http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"port", cfg.Port,
			"upload_dir", cfg.UploadDir,
			"assets_path", cfg.AssetsPath,
			"max_upload_size", cfg.MaxUploadSize,
			"provider", cfg.AI.Provider,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newAnalysisService(
	ctx context.Context,
	cfg *config.Config,
	videos *database.VideoRepository,
	truth *database.GroundTruthRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*analysis.Service, error) {
	aiLogger := logging.WithComponent(logger, "ai")

	decoder, err := ai.NewFFmpegDecoder(aiLogger)
	if err != nil {
		return nil, err
	}
	client, err := ai.NewInferenceClient(ctx, cfg.AI, aiLogger)
	if err != nil {
		return nil, err
	}

	return analysis.NewService(
		ai.NewFrameSampler(decoder, aiLogger),
		ai.NewEventDetector(client, aiLogger, cfg.AI.InferenceTimeout),
		videos,
		truth,
		m,
		logging.WithComponent(logger, "analysis"),
		analysis.Config{
			FrameInterval:     cfg.AI.FrameInterval,
			MaxAttempts:       cfg.AI.InferenceAttempts,
			DefaultAttributes: cfg.AI.DefaultAttributes,
		},
	), nil
}

type unavailableAnalyzer struct{}

func (unavailableAnalyzer) AnalyzeVideo(ctx context.Context, path, broadcastStart string, attributes []string, interval float64) (*analysis.Result, error) {
	return nil, fmt.Errorf("%w: video analysis is not configured", ai.ErrInferenceFailure)
}

func (unavailableAnalyzer) Persist(ctx context.Context, result *analysis.Result, title, filePath string) error {
	return fmt.Errorf("video analysis is not configured")
}
