package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kdimtricp/cuetrainer/internal/ai"
	"github.com/kdimtricp/cuetrainer/internal/database"
)

// DefaultAttributes is the vocabulary used when a request names none.
var DefaultAttributes = []string{
	"Main Logo",
	"Copyright",
	"Post-Game Start",
	"Scoreboard",
	"Replay Graphic",
}

type Config struct {
	Port          string
	LogLevel      string
	LogFormat     string
	UploadDir     string
	AssetsPath    string
	MaxUploadSize int64
	DB            database.Config
	AI            *ai.Config
}

// Load reads .env files (".env" when no paths are given) into the process
// environment, then builds the configuration from it. Missing .env files are
// not an error; malformed numeric values are.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:       GetEnv("PORT", "8080"),
		LogLevel:   GetEnv("LOG_LEVEL", "info"),
		LogFormat:  GetEnv("LOG_FORMAT", "text"),
		UploadDir:  GetEnv("UPLOAD_DIR", "./uploads"),
		AssetsPath: GetEnv("ASSETS_PATH", "./assets"),
	}

	var err error
	if cfg.MaxUploadSize, err = getEnvInt64("MAX_UPLOAD_SIZE", 500<<20); err != nil {
		return nil, err
	}

	cfg.DB = database.Config{Type: strings.ToLower(GetEnv("DB_TYPE", database.TypeSQLite))}
	switch cfg.DB.Type {
	case database.TypePostgres:
		cfg.DB.Host = GetEnv("DB_HOST", "localhost")
		port, err := getEnvInt("DB_PORT", 5432)
		if err != nil {
			return nil, err
		}
		cfg.DB.Port = port
		cfg.DB.User = GetEnv("DB_USER", "cuetrainer")
		cfg.DB.Password = GetEnv("DB_PASSWORD", "cuetrainer_dev")
		cfg.DB.Name = GetEnv("DB_NAME", "cuetrainer")
	case database.TypeSQLite:
		cfg.DB.SQLitePath = GetEnv("DB_PATH", "./cuetrainer.db")
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE: %s", cfg.DB.Type)
	}

	aiConfig := ai.NewConfig()
	aiConfig.Provider = strings.ToLower(GetEnv("INFERENCE_PROVIDER", aiConfig.Provider))
	aiConfig.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	aiConfig.OpenAIModel = GetEnv("OPENAI_MODEL", aiConfig.OpenAIModel)
	aiConfig.GoogleProject = os.Getenv("GOOGLE_CLOUD_PROJECT")
	aiConfig.GoogleLocation = GetEnv("GOOGLE_CLOUD_LOCATION", aiConfig.GoogleLocation)
	aiConfig.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	aiConfig.GeminiModel = GetEnv("GEMINI_MODEL", aiConfig.GeminiModel)

	if aiConfig.FrameInterval, err = getEnvFloat("FRAME_INTERVAL_SECONDS", aiConfig.FrameInterval); err != nil {
		return nil, err
	}
	if aiConfig.FrameInterval <= 0 {
		return nil, fmt.Errorf("FRAME_INTERVAL_SECONDS must be positive")
	}

	timeout, err := getEnvFloat("INFERENCE_TIMEOUT_SECONDS", aiConfig.InferenceTimeout.Seconds())
	if err != nil {
		return nil, err
	}
	aiConfig.InferenceTimeout = time.Duration(timeout * float64(time.Second))

	if aiConfig.InferenceAttempts, err = getEnvInt("INFERENCE_MAX_ATTEMPTS", aiConfig.InferenceAttempts); err != nil {
		return nil, err
	}
	if aiConfig.InferenceAttempts < 1 {
		aiConfig.InferenceAttempts = 1
	}

	aiConfig.DefaultAttributes = ParseAttributes(os.Getenv("DEFAULT_ATTRIBUTES"))
	if len(aiConfig.DefaultAttributes) == 0 {
		aiConfig.DefaultAttributes = append([]string(nil), DefaultAttributes...)
	}
	cfg.AI = aiConfig

	return cfg, nil
}

// ParseAttributes splits a comma separated vocabulary, trimming blanks and
// dropping duplicates while keeping first-seen order.
func ParseAttributes(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		a := strings.TrimSpace(part)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
