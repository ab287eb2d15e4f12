package main

import (
	"context"
	"fmt"
	"log"
)

// RecipeAgents layers the pipeline's five generation operations over the
// Generator contract. Each agent carries its own prompt and sampling
// parameters from configuration.
type RecipeAgents struct {
	gen    Generator
	config *Config
}

// NewRecipeAgents wires a generator and configuration into the agent set.
func NewRecipeAgents(gen Generator, config *Config) (*RecipeAgents, error) {
	if gen == nil {
		return nil, &ValidationError{Field: "generator", Reason: "generator is required"}
	}
	if config == nil {
		return nil, &ValidationError{Field: "config", Reason: "configuration is required"}
	}
	return &RecipeAgents{gen: gen, config: config}, nil
}

// DraftToRecipe turns a raw draft (text or video) into a structured recipe.
func (ra *RecipeAgents) DraftToRecipe(ctx context.Context, draft DraftInput) (string, error) {
	log.Printf("  → Normalizing draft...")

	req := GenerationRequest{
		SystemInstruction: ra.config.GetDraftToRecipePrompt(),
		Kind:              draft.Kind,
		Text:              draft.Text,
		VideoURI:          draft.VideoURI,
		Model:             ra.config.Settings.Agents.Normalizer.Model,
		Params:            samplingParams(ra.config.Settings.Agents.Normalizer),
	}

	recipe, err := ra.gen.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("normalizer agent: %w", err)
	}

	log.Printf("  ✓ Draft normalized")
	return recipe, nil
}

// Standardize rewrites a structured recipe into the fixed sectioned format
// the diagram generator consumes.
func (ra *RecipeAgents) Standardize(ctx context.Context, recipe string) (string, error) {
	log.Printf("  → Standardizing recipe...")

	req := GenerationRequest{
		SystemInstruction: ra.config.GetStandardizePrompt(),
		Kind:              InputText,
		Text:              recipe,
		Model:             ra.config.Settings.Agents.Standardizer.Model,
		Params:            samplingParams(ra.config.Settings.Agents.Standardizer),
	}

	standardized, err := ra.gen.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("standardizer agent: %w", err)
	}

	log.Printf("  ✓ Recipe standardized")
	return standardized, nil
}

// Revise produces a full replacement standardized recipe from user feedback.
func (ra *RecipeAgents) Revise(ctx context.Context, originalDraft, current, feedback string) (string, error) {
	if feedback == "" {
		return "", &ValidationError{Field: "feedback", Reason: "revision feedback is empty"}
	}
	log.Printf("  → Revising recipe from feedback...")

	content := fmt.Sprintf(`## Original Recipe Draft:

%s

## Current Standardized Recipe:

%s

## Requested Changes:

%s`, originalDraft, current, feedback)

	req := GenerationRequest{
		SystemInstruction: ra.config.GetRevisePrompt(),
		Kind:              InputText,
		Text:              content,
		Model:             ra.config.Settings.Agents.Reviser.Model,
		Params:            samplingParams(ra.config.Settings.Agents.Reviser),
	}

	revised, err := ra.gen.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("reviser agent: %w", err)
	}

	log.Printf("  ✓ Recipe revised")
	return revised, nil
}

// GenerateGraph produces the initial diagram code for a standardized recipe.
func (ra *RecipeAgents) GenerateGraph(ctx context.Context, standardized string) (string, error) {
	log.Printf("  → Generating initial graph code...")

	req := GenerationRequest{
		SystemInstruction: ra.config.GetGenerateGraphPrompt(),
		Kind:              InputText,
		Text:              standardized,
		Model:             ra.config.Settings.Agents.Grapher.Model,
		Params:            samplingParams(ra.config.Settings.Agents.Grapher),
	}

	code, err := ra.gen.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("grapher agent: %w", err)
	}

	log.Printf("  ✓ Initial graph code generated")
	return code, nil
}

// ImproveGraph refines the initial diagram code, given the recipe for
// context. In interactive mode the improver emits fenced HTML/CSS/JS
// instead of refined Python.
func (ra *RecipeAgents) ImproveGraph(ctx context.Context, standardized, graphCode string) (string, error) {
	log.Printf("  → Improving graph code...")

	content := fmt.Sprintf("## Standardized Recipe Context:\n\n%s\n\n"+
		"## Current Graphviz Python Code to Improve:\n\n```python\n%s\n```\n\n"+
		"Improve the above code based on the recipe context and the system instructions.",
		standardized, graphCode)

	req := GenerationRequest{
		SystemInstruction: ra.config.GetImproveGraphPrompt(),
		Kind:              InputText,
		Text:              content,
		Model:             ra.config.Settings.Agents.Improver.Model,
		Params:            samplingParams(ra.config.Settings.Agents.Improver),
	}

	improved, err := ra.gen.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("improver agent: %w", err)
	}

	log.Printf("  ✓ Graph code improved")
	return improved, nil
}

func samplingParams(s AgentSettings) SamplingParams {
	return SamplingParams{
		Temperature:     s.Temperature,
		TopP:            s.TopP,
		MaxOutputTokens: s.MaxOutputTokens,
		Seed:            s.Seed,
	}
}
