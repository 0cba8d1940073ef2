// Package config holds the robora configuration: the answering-backend
// credentials and the workflow tuning knobs. Configuration is read from a
// YAML file with environment-variable overrides for secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all robora configuration.
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Workflow WorkflowConfig `yaml:"workflow"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LLMConfig configures the answering backend.
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// WorkflowConfig configures dispatch and retry behavior.
type WorkflowConfig struct {
	// Workers bounds the concurrent calls per dispatch.
	Workers int `yaml:"workers"`

	// MaxQuestions caps each question-set expansion; 0 = unlimited.
	// Truncation is deterministic, not a representative sample.
	MaxQuestions int `yaml:"max_questions"`

	// MaxRetries bounds batch-level re-attempts after the first try.
	MaxRetries int `yaml:"max_retries"`

	// BaseDelay seeds the exponential backoff (e.g. "2s").
	BaseDelay string `yaml:"base_delay"`

	// FailureThreshold is the validation-failure fraction above which a
	// dispatch fails (0 < t <= 1).
	FailureThreshold float64 `yaml:"failure_threshold"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// DefaultConfig returns the defaults used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:   "gemini-2.5-flash",
			Timeout: "2m",
		},
		Workflow: WorkflowConfig{
			Workers:          4,
			MaxQuestions:     0,
			MaxRetries:       4,
			BaseDelay:        "2s",
			FailureThreshold: 0.5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus env overrides.
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets the environment win for secrets.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	} else if key := os.Getenv("GOOGLE_API_KEY"); key != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = key
	}
	if model := os.Getenv("ROBORA_MODEL"); model != "" {
		c.LLM.Model = model
	}
}

func (c *Config) validate() error {
	if c.Workflow.Workers <= 0 {
		return fmt.Errorf("workflow.workers must be positive, got %d", c.Workflow.Workers)
	}
	if c.Workflow.MaxQuestions < 0 {
		return fmt.Errorf("workflow.max_questions must be non-negative, got %d", c.Workflow.MaxQuestions)
	}
	if c.Workflow.MaxRetries < 0 {
		return fmt.Errorf("workflow.max_retries must be non-negative, got %d", c.Workflow.MaxRetries)
	}
	if _, err := c.BaseDelay(); err != nil {
		return err
	}
	if _, err := c.LLMTimeout(); err != nil {
		return err
	}
	if t := c.Workflow.FailureThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("workflow.failure_threshold must be in (0, 1], got %v", t)
	}
	return nil
}

// BaseDelay parses the backoff seed duration.
func (c *Config) BaseDelay() (time.Duration, error) {
	d, err := time.ParseDuration(c.Workflow.BaseDelay)
	if err != nil {
		return 0, fmt.Errorf("workflow.base_delay: %w", err)
	}
	return d, nil
}

// LLMTimeout parses the per-call timeout.
func (c *Config) LLMTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 0, fmt.Errorf("llm.timeout: %w", err)
	}
	return d, nil
}
