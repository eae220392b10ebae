package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.LLM.Model != "gemini-2.5-flash" {
		t.Errorf("default model = %q", cfg.LLM.Model)
	}
	if cfg.Store.DatabasePath == "" {
		t.Error("default database path empty")
	}
	if cfg.LLM.TimeoutDuration() != 2*time.Minute {
		t.Errorf("default timeout = %v", cfg.LLM.TimeoutDuration())
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.Model != Default().LLM.Model {
		t.Errorf("missing file should keep defaults, got model %q", cfg.LLM.Model)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  model: gemini-2.5-pro
  timeout: 30s
store:
  database_path: /tmp/planner-test.db
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.Model != "gemini-2.5-pro" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.TimeoutDuration() != 30*time.Second {
		t.Errorf("timeout = %v", cfg.LLM.TimeoutDuration())
	}
	if cfg.Store.DatabasePath != "/tmp/planner-test.db" {
		t.Errorf("database path = %q", cfg.Store.DatabasePath)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("llm: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed config should fail")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("REPAIRPLANNER_MODEL", "gemini-2.0-flash")
	t.Setenv("REPAIRPLANNER_DB", "/var/lib/planner.db")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.APIKey != "gem-key" {
		t.Errorf("api key = %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "gemini-2.0-flash" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.Store.DatabasePath != "/var/lib/planner.db" {
		t.Errorf("database path = %q", cfg.Store.DatabasePath)
	}
}

func TestPlannerKeyBeatsGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("REPAIRPLANNER_API_KEY", "planner-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.APIKey != "planner-key" {
		t.Errorf("api key = %q, want planner-key", cfg.LLM.APIKey)
	}
}

func TestTimeoutDurationFallback(t *testing.T) {
	for _, timeout := range []string{"", "garbage", "-5s"} {
		c := LLMConfig{Timeout: timeout}
		if got := c.TimeoutDuration(); got != 2*time.Minute {
			t.Errorf("TimeoutDuration(%q) = %v, want 2m", timeout, got)
		}
	}
}
