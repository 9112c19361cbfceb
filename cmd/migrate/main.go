package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/kdimtricp/cuetrainer/internal/config"
	"github.com/kdimtricp/cuetrainer/internal/database"
	"github.com/kdimtricp/cuetrainer/internal/logging"
)

func main() {
	status := flag.Bool("status", false, "Show migration status only")
	envFile := flag.String("env", ".env", "Path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.NewDB(cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	ctx := context.Background()
	migrator := database.NewMigrator(db, logging.New(cfg.LogLevel, cfg.LogFormat))

	if *status {
		statuses, err := migrator.Status(ctx)
		if err != nil {
			log.Fatal("Failed to read migration status:", err)
		}

		fmt.Printf("Migration Status (%s):\n", db.Type())
		fmt.Println("=================")
		for _, s := range statuses {
			state := "pending"
			if s.Applied {
				state = "applied"
				if s.AppliedAt != nil {
					state += " " + s.AppliedAt.Format("2006-01-02 15:04:05")
				}
			}
			fmt.Printf("%s - %s [%s]\n", s.Version, s.Name, state)
		}
		return
	}

	fmt.Printf("Running migrations against %s...\n", db.Type())
	applied, err := migrator.Run(ctx)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	fmt.Printf("Migrations completed successfully! (%d applied)\n", applied)
}
