package main

import (
	"context"
	"errors"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/genai"
)

// maxGenerateRetries bounds retries of transient network failures. Safety
// rejections and empty responses are terminal: retrying identical input
// against the same filter or model yields the same result.
const maxGenerateRetries = 3

// SamplingParams are the generation parameters for one model call. A nil
// Seed leaves seeding to the service.
type SamplingParams struct {
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
	Seed            *int32
}

// GenerationRequest bundles everything for a single model call. Exactly one
// of Text or VideoURI is set, selected by Kind. Constructed fresh per call
// and never mutated.
type GenerationRequest struct {
	SystemInstruction string
	Kind              InputKind
	Text              string
	VideoURI          string
	Model             string
	Params            SamplingParams
}

// Generator is the pipeline's single contract with the generation service.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// GenerationClient calls Gemini through the Vertex AI backend.
type GenerationClient struct {
	client *genai.Client
}

// NewGenerationClient creates a client bound to one project and location.
func NewGenerationClient(ctx context.Context, projectID, location string) (*GenerationClient, error) {
	if projectID == "" {
		return nil, &ValidationError{Field: "project", Reason: "Google Cloud project ID is required"}
	}
	if location == "" {
		location = "us-central1"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, &GenerationError{Reason: "creating GenAI client", Err: err}
	}

	return &GenerationClient{client: client}, nil
}

// Generate performs one model call, retrying transient transport failures
// with exponential backoff. Empty and safety-blocked responses fail the
// call; they are never retried.
func (c *GenerationClient) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	if err := validateRequest(req); err != nil {
		return "", err
	}

	contents := []*genai.Content{genai.NewContentFromParts(requestParts(req), genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		Temperature:        genai.Ptr(req.Params.Temperature),
		TopP:               genai.Ptr(req.Params.TopP),
		MaxOutputTokens:    req.Params.MaxOutputTokens,
		CandidateCount:     1,
		Seed:               req.Params.Seed,
		ResponseModalities: []string{"TEXT"},
		SafetySettings:     safetySettings(),
		SystemInstruction:  genai.NewContentFromText(req.SystemInstruction, genai.RoleUser),
	}

	var text string
	op := func() error {
		resp, err := c.client.Models.GenerateContent(ctx, req.Model, contents, config)
		if err != nil {
			genErr := &GenerationError{Reason: "model call failed", Err: err}
			if !isTransient(err) {
				return backoff.Permanent(genErr)
			}
			return genErr
		}

		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return backoff.Permanent(&GenerationError{
				Reason:  "response blocked by safety filter: " + string(resp.PromptFeedback.BlockReason),
				Blocked: true,
			})
		}

		t := resp.Text()
		if strings.TrimSpace(t) == "" {
			return backoff.Permanent(&GenerationError{Reason: "empty response from model"})
		}

		text = t
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxGenerateRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return "", err
	}
	return text, nil
}

func validateRequest(req GenerationRequest) error {
	if req.SystemInstruction == "" {
		return &ValidationError{Field: "request", Reason: "system instruction is required"}
	}
	if req.Model == "" {
		return &ValidationError{Field: "request", Reason: "model name is required"}
	}
	switch req.Kind {
	case InputText:
		if req.Text == "" {
			return &ValidationError{Field: "request", Reason: "text input is empty"}
		}
		if req.VideoURI != "" {
			return &ValidationError{Field: "request", Reason: "text input must not carry a video URI"}
		}
	case InputVideo:
		if req.VideoURI == "" {
			return &ValidationError{Field: "request", Reason: "video input has no URI"}
		}
		if req.Text != "" {
			return &ValidationError{Field: "request", Reason: "video input must not carry text content"}
		}
	default:
		return &ValidationError{Field: "request", Reason: "input kind must be text or video"}
	}
	return nil
}

func requestParts(req GenerationRequest) []*genai.Part {
	if req.Kind == InputVideo {
		return []*genai.Part{
			genai.NewPartFromText("here is a video of the recipe:"),
			genai.NewPartFromURI(req.VideoURI, "video/*"),
		}
	}
	return []*genai.Part{genai.NewPartFromText(req.Text)}
}

func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHateSpeech,
		genai.HarmCategoryDangerousContent,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryHarassment,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, category := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockNone,
		})
	}
	return settings
}

// isTransient reports whether a transport error is worth retrying. Client
// errors other than rate limiting are not; everything else (5xx, 429,
// network faults without an API status) is.
func isTransient(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 {
			return true
		}
		return apiErr.Code >= 500
	}
	return true
}
