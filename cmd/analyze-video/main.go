package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/kdimtricp/cuetrainer/internal/ai"
	"github.com/kdimtricp/cuetrainer/internal/analysis"
	"github.com/kdimtricp/cuetrainer/internal/config"
	"github.com/kdimtricp/cuetrainer/internal/database"
	"github.com/kdimtricp/cuetrainer/internal/logging"
	"github.com/kdimtricp/cuetrainer/internal/metrics"
)

func main() {
	var (
		videoPath      = flag.String("video", "", "Path to the video file to analyze")
		broadcastStart = flag.String("start", "", "Broadcast start time, e.g. 2026-02-11T19:00:00")
		attributes     = flag.String("attributes", "", "Comma separated attributes (defaults to DEFAULT_ATTRIBUTES)")
		interval       = flag.Float64("interval", 0, "Seconds between sampled frames (defaults to FRAME_INTERVAL_SECONDS)")
		save           = flag.Bool("save", false, "Store the video and its ground truth in the database")
		output         = flag.String("o", "", "Write the ground truth JSON to this file instead of stdout")
	)
	flag.Parse()

	if *videoPath == "" || *broadcastStart == "" {
		log.Fatal("Please provide -video and -start")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	decoder, err := ai.NewFFmpegDecoder(logger)
	if err != nil {
		log.Fatal("Failed to initialize video decoder:", err)
	}
	client, err := ai.NewInferenceClient(ctx, cfg.AI, logger)
	if err != nil {
		log.Fatal("Failed to initialize inference client:", err)
	}

	var (
		videos *database.VideoRepository
		truth  *database.GroundTruthRepository
	)
	if *save {
		db, err := database.NewDB(cfg.DB)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer db.Close()
		if _, err := database.NewMigrator(db, logger).Run(ctx); err != nil {
			log.Fatal("Failed to run migrations:", err)
		}
		videos = database.NewVideoRepository(db)
		truth = database.NewGroundTruthRepository(db)
	}

	service := analysis.NewService(
		ai.NewFrameSampler(decoder, logger),
		ai.NewEventDetector(client, logger, cfg.AI.InferenceTimeout),
		videos,
		truth,
		metrics.New(),
		logger,
		analysis.Config{
			FrameInterval:     cfg.AI.FrameInterval,
			MaxAttempts:       cfg.AI.InferenceAttempts,
			DefaultAttributes: cfg.AI.DefaultAttributes,
		},
	)

	result, err := service.AnalyzeVideo(ctx, *videoPath, *broadcastStart, config.ParseAttributes(*attributes), *interval)
	if err != nil {
		log.Fatal("Analysis failed:", err)
	}

	if *save {
		name := filepath.Base(*videoPath)
		if err := service.Persist(ctx, result, name, name); err != nil {
			log.Printf("Failed to save ground truth: %v", err)
		}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal("Failed to encode result:", err)
	}

	if *output == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(*output, append(data, '\n'), 0644); err != nil {
		log.Fatal("Failed to write output:", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d events to %s\n", len(result.Events), *output)
}
