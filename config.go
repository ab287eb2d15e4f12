package main

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigDir = ".recipe2graph"

const minExecutorTimeout = 10 * time.Second

// Embedded configuration files
//
//go:embed config/draft-to-recipe-prompt.md
var defaultDraftToRecipePrompt string

//go:embed config/standardize-prompt.md
var defaultStandardizePrompt string

//go:embed config/revise-prompt.md
var defaultRevisePrompt string

//go:embed config/generate-graph-prompt.md
var defaultGenerateGraphPrompt string

//go:embed config/improve-graph-prompt.md
var defaultImproveGraphPrompt string

//go:embed config/interactive-graph-prompt.md
var defaultInteractiveGraphPrompt string

//go:embed config/settings.yaml
var defaultSettings string

// DiagramMode selects what kind of diagram code the improvement agent is
// asked for and how its output is turned into artifacts.
type DiagramMode string

const (
	// DiagramStatic: a graphviz Python script that renders a PDF.
	DiagramStatic DiagramMode = "static"
	// DiagramInteractive: fenced HTML/CSS/JS uploaded as-is.
	DiagramInteractive DiagramMode = "interactive"
)

// AgentSettings holds the sampling parameters for one pipeline agent.
type AgentSettings struct {
	Model           string  `yaml:"model"`
	Temperature     float32 `yaml:"temperature"`
	TopP            float32 `yaml:"top_p"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
	Seed            *int32  `yaml:"seed,omitempty"`
}

// Settings represents the YAML configuration structure
type Settings struct {
	Location string `yaml:"location"`
	Agents   struct {
		Normalizer   AgentSettings `yaml:"normalizer"`
		Standardizer AgentSettings `yaml:"standardizer"`
		Reviser      AgentSettings `yaml:"reviser"`
		Grapher      AgentSettings `yaml:"grapher"`
		Improver     AgentSettings `yaml:"improver"`
	} `yaml:"agents"`
	Diagram struct {
		Mode DiagramMode `yaml:"mode"`
	} `yaml:"diagram"`
	Executor struct {
		Interpreter    string `yaml:"interpreter"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"executor"`
	WorkDirectory string `yaml:"work_directory"`
}

// ConfigOverrides holds file path overrides for embedded prompt files
type ConfigOverrides struct {
	DraftToRecipePromptPath    *string
	StandardizePromptPath      *string
	RevisePromptPath           *string
	GenerateGraphPromptPath    *string
	ImproveGraphPromptPath     *string
	InteractiveGraphPromptPath *string
	SettingsPath               *string
}

/// Config holds everything a pipeline run needs: settings, prompt overrides,
// and the cloud identifiers. No package-level mutable state; concurrent runs
// with different configurations get independent Config values.
type Config struct {
	Settings  *Settings
	Overrides *ConfigOverrides
	ProjectID string
}

// NewConfig loads settings (writing defaults on first run) and validates the
// required identifiers.
func NewConfig(projectID string, overrides *ConfigOverrides) (*Config, error) {
	if projectID == "" {
		return nil, &ValidationError{Field: "project", Reason: "Google Cloud project ID is required"}
	}

	if err := ensureConfigExists(); err != nil {
		return nil, fmt.Errorf("ensuring config files exist: %w", err)
	}

	var settings *Settings
	var err error
	if overrides != nil && overrides.SettingsPath != nil {
		settings, err = loadSettingsRequired(*overrides.SettingsPath)
	} else {
		settings, err = loadSettings(getConfigPath("settings.yaml"))
	}
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	return &Config{
		Settings:  settings,
		Overrides: overrides,
		ProjectID: projectID,
	}, nil
}

// ExecutorTimeout returns the configured per-script timeout, clamped to the
// minimum. Generated code is unverified; it never runs without a deadline.
func (c *Config) ExecutorTimeout() time.Duration {
	d := time.Duration(c.Settings.Executor.TimeoutSeconds) * time.Second
	if d < minExecutorTimeout {
		return minExecutorTimeout
	}
	return d
}

// GetGenerateGraphPrompt returns the initial diagram-generation prompt.
func (c *Config) GetGenerateGraphPrompt() string {
	return c.promptFor(c.overridePath(func(o *ConfigOverrides) *string { return o.GenerateGraphPromptPath }), defaultGenerateGraphPrompt)
}

// GetDraftToRecipePrompt returns the draft normalization prompt.
func (c *Config) GetDraftToRecipePrompt() string {
	return c.promptFor(c.overridePath(func(o *ConfigOverrides) *string { return o.DraftToRecipePromptPath }), defaultDraftToRecipePrompt)
}

// GetStandardizePrompt returns the recipe standardization prompt.
func (c *Config) GetStandardizePrompt() string {
	return c.promptFor(c.overridePath(func(o *ConfigOverrides) *string { return o.StandardizePromptPath }), defaultStandardizePrompt)
}

// GetRevisePrompt returns the feedback revision prompt.
func (c *Config) GetRevisePrompt() string {
	return c.promptFor(c.overridePath(func(o *ConfigOverrides) *string { return o.RevisePromptPath }), defaultRevisePrompt)
}

// GetImproveGraphPrompt returns the diagram-improvement prompt for the
// configured mode: graphviz refinement for static diagrams, the HTML/CSS/JS
// prompt for interactive ones.
func (c *Config) GetImproveGraphPrompt() string {
	if c.Settings.Diagram.Mode == DiagramInteractive {
		return c.promptFor(c.overridePath(func(o *ConfigOverrides) *string { return o.InteractiveGraphPromptPath }), defaultInteractiveGraphPrompt)
	}
	return c.promptFor(c.overridePath(func(o *ConfigOverrides) *string { return o.ImproveGraphPromptPath }), defaultImproveGraphPrompt)
}

func (c *Config) overridePath(pick func(*ConfigOverrides) *string) *string {
	if c.Overrides == nil {
		return nil
	}
	return pick(c.Overrides)
}

func (c *Config) promptFor(overridePath *string, embedded string) string {
	if overridePath != nil {
		content, err := os.ReadFile(*overridePath)
		if err != nil {
			log.Fatalf("Critical error: prompt file missing: %s - %v", *overridePath, err)
		}
		return string(content)
	}
	return embedded
}

// loadSettings loads settings from the given path, falling back to the
// embedded defaults if the file does not exist.
func loadSettings(settingsPath string) (*Settings, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		data = []byte(defaultSettings)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings YAML: %w", err)
	}

	applySettingsDefaults(&settings)
	return &settings, nil
}

// loadSettingsRequired loads settings from YAML file, failing if file doesn't exist
func loadSettingsRequired(settingsPath string) (*Settings, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, err
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings YAML: %w", err)
	}

	applySettingsDefaults(&settings)
	return &settings, nil
}

func applySettingsDefaults(s *Settings) {
	if s.Location == "" {
		s.Location = "us-central1"
	}
	if s.Diagram.Mode == "" {
		s.Diagram.Mode = DiagramStatic
	}
	if s.Diagram.Mode != DiagramStatic && s.Diagram.Mode != DiagramInteractive {
		log.Printf("Warning: unknown diagram mode %q, defaulting to %q", s.Diagram.Mode, DiagramStatic)
		s.Diagram.Mode = DiagramStatic
	}
	if s.Executor.Interpreter == "" {
		s.Executor.Interpreter = "python3"
	}
	if s.Executor.TimeoutSeconds <= 0 {
		s.Executor.TimeoutSeconds = 120
	}
	if s.WorkDirectory == "" {
		s.WorkDirectory = "."
	}

	for _, a := range []*AgentSettings{
		&s.Agents.Normalizer,
		&s.Agents.Standardizer,
		&s.Agents.Reviser,
		&s.Agents.Grapher,
		&s.Agents.Improver,
	} {
		if a.Model == "" {
			a.Model = "gemini-2.5-pro"
		}
		if a.TopP == 0 {
			a.TopP = 1.0
		}
		if a.MaxOutputTokens == 0 {
			a.MaxOutputTokens = 8048
		}
	}
}

// getConfigPath returns the path to a config file in the .recipe2graph directory
func getConfigPath(filename string) string {
	return filepath.Join(defaultConfigDir, filename)
}

// ensureConfigExists creates the config directory and writes settings.yaml
// on first run so users have something to customize.
func ensureConfigExists() error {
	if err := os.MkdirAll(defaultConfigDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	settingsPath := getConfigPath("settings.yaml")
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := os.WriteFile(settingsPath, []byte(defaultSettings), 0644); err != nil {
			return fmt.Errorf("writing settings.yaml: %w", err)
		}
	}

	return nil
}
