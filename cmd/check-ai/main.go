package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/kdimtricp/cuetrainer/internal/ai"
	"github.com/kdimtricp/cuetrainer/internal/config"
	"github.com/kdimtricp/cuetrainer/internal/logging"
)

func main() {
	ping := flag.Bool("ping", false, "Send a one-line prompt to the provider")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Configuration error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	fmt.Println("🔍 Checking video analysis setup")
	fmt.Println("================================")

	ok := true
	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		path, err := exec.LookPath(tool)
		if err != nil {
			fmt.Printf("❌ %s not found in PATH\n", tool)
			ok = false
			continue
		}
		fmt.Printf("✅ %s: %s\n", tool, path)
	}

	fmt.Printf("\n🤖 Inference provider: %s\n", cfg.AI.Provider)
	switch cfg.AI.Provider {
	case ai.ProviderOpenAI:
		fmt.Printf("   Model: %s\n", cfg.AI.OpenAIModel)
		fmt.Printf("   API key: %s\n", logging.SanitizeToken(cfg.AI.OpenAIAPIKey))
	default:
		fmt.Printf("   Model: %s\n", cfg.AI.GeminiModel)
		if cfg.AI.GoogleProject != "" {
			fmt.Printf("   Vertex AI project: %s (%s)\n", cfg.AI.GoogleProject, cfg.AI.GoogleLocation)
		} else {
			fmt.Printf("   API key: %s\n", logging.SanitizeToken(cfg.AI.GeminiAPIKey))
		}
	}
	fmt.Printf("   Frame interval: %.2fs, timeout: %s, attempts: %d\n",
		cfg.AI.FrameInterval, cfg.AI.InferenceTimeout, cfg.AI.InferenceAttempts)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := ai.NewInferenceClient(ctx, cfg.AI, logger)
	if err != nil {
		fmt.Printf("❌ Provider not usable: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Provider client created")

	if *ping {
		text, err := client.Generate(ctx, "Reply with the single word: ready", nil)
		if err != nil {
			fmt.Printf("❌ Ping failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Provider answered: %.60s\n", text)
	}

	if !ok {
		fmt.Println("\n⚠️  Video tools missing, analysis will not run")
		os.Exit(1)
	}
	fmt.Println("\n✅ Ready to analyze videos")
}
