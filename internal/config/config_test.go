package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/kdimtricp/cuetrainer/internal/ai"
	"github.com/kdimtricp/cuetrainer/internal/database"
)

var configKeys = []string{
	"PORT", "LOG_LEVEL", "LOG_FORMAT", "DB_TYPE", "DB_PATH", "DB_HOST", "DB_PORT",
	"DB_USER", "DB_PASSWORD", "DB_NAME", "UPLOAD_DIR", "ASSETS_PATH", "MAX_UPLOAD_SIZE",
	"INFERENCE_PROVIDER", "OPENAI_API_KEY", "OPENAI_MODEL", "GOOGLE_CLOUD_PROJECT",
	"GOOGLE_CLOUD_LOCATION", "GEMINI_API_KEY", "GEMINI_MODEL", "FRAME_INTERVAL_SECONDS",
	"INFERENCE_TIMEOUT_SECONDS", "INFERENCE_MAX_ATTEMPTS", "DEFAULT_ATTRIBUTES",
}

// clearEnv blanks every key for the duration of the test; empty values are
// treated as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DB.Type != database.TypeSQLite || cfg.DB.SQLitePath != "./cuetrainer.db" {
		t.Errorf("unexpected db config: %+v", cfg.DB)
	}
	if cfg.MaxUploadSize != 500<<20 {
		t.Errorf("MaxUploadSize = %d", cfg.MaxUploadSize)
	}
	if cfg.AI.Provider != ai.ProviderGemini {
		t.Errorf("Provider = %q, want gemini", cfg.AI.Provider)
	}
	if cfg.AI.FrameInterval != 2.0 {
		t.Errorf("FrameInterval = %v, want 2.0", cfg.AI.FrameInterval)
	}
	if cfg.AI.InferenceTimeout != 120*time.Second {
		t.Errorf("InferenceTimeout = %v", cfg.AI.InferenceTimeout)
	}
	if cfg.AI.InferenceAttempts != 1 {
		t.Errorf("InferenceAttempts = %d, want 1", cfg.AI.InferenceAttempts)
	}
	if !reflect.DeepEqual(cfg.AI.DefaultAttributes, DefaultAttributes) {
		t.Errorf("DefaultAttributes = %v", cfg.AI.DefaultAttributes)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_TYPE", "Postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("INFERENCE_PROVIDER", "OPENAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("FRAME_INTERVAL_SECONDS", "0.5")
	t.Setenv("INFERENCE_TIMEOUT_SECONDS", "30")
	t.Setenv("INFERENCE_MAX_ATTEMPTS", "3")
	t.Setenv("DEFAULT_ATTRIBUTES", " Main Logo , Scoreboard,,Main Logo")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DB.Type != database.TypePostgres || cfg.DB.Host != "db.internal" || cfg.DB.Port != 6543 {
		t.Errorf("unexpected db config: %+v", cfg.DB)
	}
	if cfg.AI.Provider != ai.ProviderOpenAI || cfg.AI.OpenAIAPIKey != "sk-test" {
		t.Errorf("unexpected provider config: %+v", cfg.AI)
	}
	if cfg.AI.FrameInterval != 0.5 {
		t.Errorf("FrameInterval = %v", cfg.AI.FrameInterval)
	}
	if cfg.AI.InferenceTimeout != 30*time.Second {
		t.Errorf("InferenceTimeout = %v", cfg.AI.InferenceTimeout)
	}
	if cfg.AI.InferenceAttempts != 3 {
		t.Errorf("InferenceAttempts = %d", cfg.AI.InferenceAttempts)
	}
	if want := []string{"Main Logo", "Scoreboard"}; !reflect.DeepEqual(cfg.AI.DefaultAttributes, want) {
		t.Errorf("DefaultAttributes = %v, want %v", cfg.AI.DefaultAttributes, want)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"MAX_UPLOAD_SIZE", "lots"},
		{"FRAME_INTERVAL_SECONDS", "two"},
		{"FRAME_INTERVAL_SECONDS", "-1"},
		{"INFERENCE_TIMEOUT_SECONDS", "soon"},
		{"INFERENCE_MAX_ATTEMPTS", "many"},
		{"DB_TYPE", "oracle"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := FromEnv(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}

	t.Run("DB_PORT", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_TYPE", "postgres")
		t.Setenv("DB_PORT", "fifty")
		if _, err := FromEnv(); err == nil {
			t.Error("expected error for invalid DB_PORT")
		}
	})
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is present, even when empty.
	os.Unsetenv("PORT")
	os.Unsetenv("GEMINI_MODEL")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PORT=9191\nGEMINI_MODEL=gemini-test\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9191" {
		t.Errorf("Port = %q, want 9191", cfg.Port)
	}
	if cfg.AI.GeminiModel != "gemini-test" {
		t.Errorf("GeminiModel = %q", cfg.AI.GeminiModel)
	}
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseAttributes(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Main Logo,Copyright", []string{"Main Logo", "Copyright"}},
		{" a ,, b ,a", []string{"a", "b"}},
		{"", nil},
		{" , ", nil},
	}

	for _, tt := range tests {
		if got := ParseAttributes(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseAttributes(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
