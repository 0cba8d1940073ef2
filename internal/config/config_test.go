package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("ROBORA_MODEL", "")
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, 4, cfg.Workflow.Workers)
	assert.Equal(t, 4, cfg.Workflow.MaxRetries)
	assert.Equal(t, 0.5, cfg.Workflow.FailureThreshold)

	delay, err := cfg.BaseDelay()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, delay)

	timeout, err := cfg.LLMTimeout()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, timeout)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "robora.yaml")
	raw := []byte(`
llm:
  model: gemini-2.5-pro
  timeout: 30s
workflow:
  workers: 8
  max_questions: 100
  base_delay: 500ms
logging:
  level: debug
  format: json
`)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	assert.Equal(t, 8, cfg.Workflow.Workers)
	assert.Equal(t, 100, cfg.Workflow.MaxQuestions)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Fields absent from the file keep their defaults.
	assert.Equal(t, 4, cfg.Workflow.MaxRetries)
	assert.Equal(t, 0.5, cfg.Workflow.FailureThreshold)
}

func TestEnvOverridesAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "from-gemini")
	t.Setenv("GOOGLE_API_KEY", "from-google")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-gemini", cfg.LLM.APIKey, "GEMINI_API_KEY wins over GOOGLE_API_KEY")
}

func TestGoogleAPIKeyIsFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "from-google")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-google", cfg.LLM.APIKey)
}

func TestEnvOverridesModel(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROBORA_MODEL", "gemini-2.0-flash")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		raw  string
	}{
		{"zero workers", "workflow:\n  workers: 0\n"},
		{"negative retries", "workflow:\n  max_retries: -1\n"},
		{"bad base delay", "workflow:\n  base_delay: soon\n"},
		{"bad timeout", "llm:\n  timeout: forever\n"},
		{"threshold above one", "workflow:\n  failure_threshold: 1.5\n"},
		{"not yaml", "{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "robora.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.raw), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	clearEnv(t)

	cfg := DefaultConfig()
	cfg.Workflow.Workers = 7
	cfg.LLM.Model = "gemini-2.5-pro"

	path := filepath.Join(t.TempDir(), "nested", "robora.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Workflow.Workers)
	assert.Equal(t, "gemini-2.5-pro", loaded.LLM.Model)
}
