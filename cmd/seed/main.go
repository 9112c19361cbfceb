package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kdimtricp/cuetrainer/internal/analysis"
	"github.com/kdimtricp/cuetrainer/internal/config"
	"github.com/kdimtricp/cuetrainer/internal/database"
	"github.com/kdimtricp/cuetrainer/internal/groundtruth"
	"github.com/kdimtricp/cuetrainer/internal/logging"
	"github.com/kdimtricp/cuetrainer/internal/metrics"
)

func main() {
	var (
		file    = flag.String("file", "", "Ground truth timeline JSON, in the analyze output shape")
		title   = flag.String("title", "", "Video title (defaults to the video id)")
		path    = flag.String("path", "", "Video file name under the assets directory (defaults to <video_id>.mp4)")
		replace = flag.Bool("replace", false, "Replace ground truth that is already seeded")
		envFile = flag.String("env", ".env", "Path to an optional .env file")
	)
	flag.Parse()

	if *file == "" {
		log.Fatal("Please provide -file")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal("Failed to open timeline:", err)
	}
	timeline, err := groundtruth.ReadTimeline(f)
	f.Close()
	if err != nil {
		log.Fatal("Failed to read timeline:", err)
	}

	if *title == "" {
		*title = timeline.VideoID
	}
	if *path == "" {
		*path = timeline.VideoID + ".mp4"
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.NewDB(cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	ctx := context.Background()
	if _, err := database.NewMigrator(db, logger).Run(ctx); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	truth := database.NewGroundTruthRepository(db)
	if !*replace {
		existing, err := truth.QueryGroundTruth(ctx, timeline.VideoID, "")
		if err != nil {
			log.Fatal("Failed to read existing ground truth:", err)
		}
		if len(existing) > 0 {
			fmt.Printf("✅ %d ground truth events already seeded for %s, skipping (use -replace to overwrite)\n",
				len(existing), timeline.VideoID)
			return
		}
	}

	service := analysis.NewService(nil, nil, database.NewVideoRepository(db), truth, metrics.New(), logger, analysis.Config{})
	result := &analysis.Result{Timeline: *timeline}
	if err := service.Persist(ctx, result, *title, *path); err != nil {
		log.Fatal("Failed to seed ground truth:", err)
	}

	fmt.Printf("✅ Seeded %d ground truth events for %s\n", *result.EventsSaved, timeline.VideoID)
}
