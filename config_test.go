package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplySettingsDefaults(t *testing.T) {
	settings := &Settings{}
	applySettingsDefaults(settings)

	if settings.Location != "us-central1" {
		t.Errorf("Location = %q, want us-central1", settings.Location)
	}
	if settings.Diagram.Mode != DiagramStatic {
		t.Errorf("Mode = %q, want %q", settings.Diagram.Mode, DiagramStatic)
	}
	if settings.Executor.Interpreter != "python3" {
		t.Errorf("Interpreter = %q, want python3", settings.Executor.Interpreter)
	}
	if settings.Executor.TimeoutSeconds != 120 {
		t.Errorf("TimeoutSeconds = %d, want 120", settings.Executor.TimeoutSeconds)
	}
	if settings.WorkDirectory != "." {
		t.Errorf("WorkDirectory = %q, want .", settings.WorkDirectory)
	}

	for name, agent := range map[string]AgentSettings{
		"normalizer":   settings.Agents.Normalizer,
		"standardizer": settings.Agents.Standardizer,
		"reviser":      settings.Agents.Reviser,
		"grapher":      settings.Agents.Grapher,
		"improver":     settings.Agents.Improver,
	} {
		if agent.Model == "" {
			t.Errorf("%s has no default model", name)
		}
		if agent.TopP != 1.0 {
			t.Errorf("%s TopP = %v, want 1.0", name, agent.TopP)
		}
		if agent.MaxOutputTokens != 8048 {
			t.Errorf("%s MaxOutputTokens = %d, want 8048", name, agent.MaxOutputTokens)
		}
	}
}

func TestApplySettingsDefaults_UnknownMode(t *testing.T) {
	settings := &Settings{}
	settings.Diagram.Mode = "hologram"
	applySettingsDefaults(settings)

	if settings.Diagram.Mode != DiagramStatic {
		t.Errorf("Mode = %q, want fallback to %q", settings.Diagram.Mode, DiagramStatic)
	}
}

func TestExecutorTimeout_Clamped(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int
		expected time.Duration
	}{
		{
			name:     "configured value above minimum",
			seconds:  120,
			expected: 120 * time.Second,
		},
		{
			name:     "below minimum is clamped",
			seconds:  1,
			expected: minExecutorTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := &Settings{}
			applySettingsDefaults(settings)
			settings.Executor.TimeoutSeconds = tt.seconds
			config := &Config{Settings: settings}

			if got := config.ExecutorTimeout(); got != tt.expected {
				t.Errorf("ExecutorTimeout() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetImproveGraphPrompt_ModeAware(t *testing.T) {
	settings := &Settings{}
	applySettingsDefaults(settings)
	config := &Config{Settings: settings}

	settings.Diagram.Mode = DiagramStatic
	if config.GetImproveGraphPrompt() != defaultImproveGraphPrompt {
		t.Error("static mode should use the graphviz improvement prompt")
	}

	settings.Diagram.Mode = DiagramInteractive
	if config.GetImproveGraphPrompt() != defaultInteractiveGraphPrompt {
		t.Error("interactive mode should use the interactive diagram prompt")
	}

	// The initial generation prompt does not depend on the mode.
	if config.GetGenerateGraphPrompt() != defaultGenerateGraphPrompt {
		t.Error("generation prompt should be mode independent")
	}
}

func TestLoadSettings(t *testing.T) {
	t.Run("missing file falls back to embedded defaults", func(t *testing.T) {
		settings, err := loadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("loadSettings() unexpected error: %v", err)
		}
		if settings.Agents.Grapher.Model == "" {
			t.Error("embedded defaults missing grapher model")
		}
		if settings.Agents.Grapher.Seed == nil {
			t.Error("embedded defaults should pin the grapher seed")
		}
	})

	t.Run("partial file gets defaults applied", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.yaml")
		content := "location: europe-west1\nagents:\n  grapher:\n    temperature: 0.5\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		settings, err := loadSettings(path)
		if err != nil {
			t.Fatalf("loadSettings() unexpected error: %v", err)
		}
		if settings.Location != "europe-west1" {
			t.Errorf("Location = %q, want europe-west1", settings.Location)
		}
		if settings.Agents.Grapher.Temperature != 0.5 {
			t.Errorf("Grapher.Temperature = %v, want 0.5", settings.Agents.Grapher.Temperature)
		}
		if settings.Agents.Grapher.Model == "" {
			t.Error("default model was not applied to partial settings")
		}
		if settings.Executor.Interpreter != "python3" {
			t.Errorf("Interpreter = %q, want default python3", settings.Executor.Interpreter)
		}
	})

	t.Run("required file must exist", func(t *testing.T) {
		if _, err := loadSettingsRequired(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("loadSettingsRequired() expected error for missing file, got nil")
		}
	})
}
