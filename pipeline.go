package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	contentTypeText = "text/plain; charset=utf-8"
	contentTypePDF  = "application/pdf"
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeCSS  = "text/css; charset=utf-8"
	contentTypeJS   = "text/javascript; charset=utf-8"
)

// dateLayout names durable artifacts. Runs on the same day with the same
// recipe name intentionally overwrite each other.
const dateLayout = "2006_01_02"

// renderBase is the output base name the graph prompts bake into generated
// code; it is rewritten to the run's final name before execution.
const renderBase = "recipe_flow"

// Pipeline sequences the generation agents, the artifact stages, and the
// persistence gateway into the end-to-end workflow. One Pipeline value may
// serve many runs; all per-run state lives on the stack.
type Pipeline struct {
	agents *RecipeAgents
	store  ObjectStore
	exec   *Executor
	config *Config
}

// NewPipeline wires the collaborators together.
func NewPipeline(agents *RecipeAgents, store ObjectStore, exec *Executor, config *Config) *Pipeline {
	return &Pipeline{agents: agents, store: store, exec: exec, config: config}
}

// ProcessText turns a raw draft into a standardized recipe via the
// normalizer and standardizer agents.
func (p *Pipeline) ProcessText(ctx context.Context, draft DraftInput) (string, error) {
	if err := validateDraft(draft); err != nil {
		return "", &StageError{Stage: StageDraftToRecipe, Err: err}
	}

	log.Printf("Processing recipe draft...")

	recipe, err := p.agents.DraftToRecipe(ctx, draft)
	if err != nil {
		return "", &StageError{Stage: StageDraftToRecipe, Err: err}
	}

	standardized, err := p.agents.Standardize(ctx, recipe)
	if err != nil {
		return "", &StageError{Stage: StageStandardize, Err: err}
	}

	return standardized, nil
}

// Revise replaces the standardized recipe wholesale based on user feedback.
func (p *Pipeline) Revise(ctx context.Context, draft DraftInput, current, feedback string) (string, error) {
	revised, err := p.agents.Revise(ctx, draftContext(draft), current, feedback)
	if err != nil {
		return "", &StageError{Stage: StageRevise, Err: err}
	}
	return revised, nil
}

// TextToGraph runs the post-approval half of the pipeline: persist the
// standardized recipe, generate and improve the diagram code, materialize
// and (in static mode) execute it, upload the artifacts, and clean up local
// intermediates. On failure, local files are left in place for manual
// recovery.
func (p *Pipeline) TextToGraph(ctx context.Context, standardized, recipeName, bucket string) (*GraphResult, error) {
	if standardized == "" {
		return nil, &StageError{Stage: StagePreflight, Err: &ValidationError{Field: "recipe", Reason: "standardized recipe text is empty"}}
	}
	if recipeName == "" {
		return nil, &StageError{Stage: StagePreflight, Err: &ValidationError{Field: "name", Reason: "recipe name is required"}}
	}
	if bucket == "" {
		return nil, &StageError{Stage: StagePreflight, Err: &ValidationError{Field: "bucket", Reason: "bucket name is required"}}
	}

	today := time.Now().Format(dateLayout)
	runID := uuid.NewString()[:8]

	if err := p.store.BucketExists(ctx, bucket); err != nil {
		return nil, &StageError{Stage: StagePreflight, Err: err}
	}

	// The recipe text is saved before any diagram-generation cost is
	// incurred, so it survives later stage failures.
	recipeKey := fmt.Sprintf("%s_%s.txt", recipeName, today)
	log.Printf("  → Uploading standardized recipe to %s", ObjectURI(bucket, recipeKey))
	recipeURI, err := p.store.Upload(ctx, bucket, recipeKey, StringSource(standardized), contentTypeText)
	if err != nil {
		return nil, &StageError{Stage: StageRecipeUpload, Err: err}
	}
	log.Printf("  ✓ Recipe text saved")

	firstPass, err := p.agents.GenerateGraph(ctx, standardized)
	if err != nil {
		return nil, &StageError{Stage: StageGraphGenerate, Err: err}
	}

	improved, err := p.agents.ImproveGraph(ctx, standardized, firstPass)
	if err != nil {
		return nil, &StageError{Stage: StageGraphImprove, Err: err}
	}

	result := &GraphResult{
		RecipeURI: recipeURI,
		Artifacts: make(map[string]string),
	}

	var localFiles []string
	if p.config.Settings.Diagram.Mode == DiagramInteractive {
		err = p.produceInteractive(ctx, improved, recipeName, bucket, today, runID, result, &localFiles)
	} else {
		err = p.produceStatic(ctx, improved, recipeName, bucket, today, runID, result, &localFiles)
	}
	if err != nil {
		return nil, err
	}

	p.cleanup(localFiles)
	return result, nil
}

// Run drives a complete pipeline run: standardize, review until approval,
// then generate and persist the diagram. A rejection ends the run with
// ErrUserAborted before any diagram-generation cost is incurred.
func (p *Pipeline) Run(ctx context.Context, draft DraftInput, recipeName, bucket string, approver Approver) (*GraphResult, error) {
	standardized, err := p.ProcessText(ctx, draft)
	if err != nil {
		return nil, err
	}

	for {
		decision, feedback, err := approver.Review(standardized)
		if err != nil {
			return nil, fmt.Errorf("reviewing recipe: %w", err)
		}

		if decision == DecisionApprove {
			break
		}
		if decision == DecisionReject {
			log.Printf("Recipe rejected, stopping")
			return nil, ErrUserAborted
		}

		standardized, err = p.Revise(ctx, draft, standardized, feedback)
		if err != nil {
			return nil, err
		}
	}

	return p.TextToGraph(ctx, standardized, recipeName, bucket)
}

// produceStatic materializes the improved graphviz script, executes it, and
// uploads the rendered PDF.
func (p *Pipeline) produceStatic(ctx context.Context, improved, recipeName, bucket, today, runID string, result *GraphResult, localFiles *[]string) error {
	// Local names carry the run id so concurrent runs for the same recipe
	// never collide; destination keys stay date-based and overwrite.
	finalBase := fmt.Sprintf("%s_final_%s_%s", recipeName, today, runID)
	code := strings.ReplaceAll(improved, "'"+renderBase+"'", "'"+finalBase+"'")
	code = strings.ReplaceAll(code, `"`+renderBase+`"`, `"`+finalBase+`"`)

	workDir := p.config.Settings.WorkDirectory
	scriptPath := filepath.Join(workDir, finalBase+"_script.py")
	if err := MaterializeCode(code, scriptPath); err != nil {
		return &StageError{Stage: StageMaterialize, Err: err}
	}
	*localFiles = append(*localFiles, scriptPath)

	log.Printf("  → Executing final graph script: %s", scriptPath)
	if err := p.exec.Run(ctx, scriptPath); err != nil {
		return &StageError{Stage: StageExecute, Err: err}
	}

	pdfPath := filepath.Join(workDir, finalBase+".pdf")
	if !fileExists(pdfPath) {
		// A zero exit without the expected output is still a failure.
		return &StageError{Stage: StageExecute, Err: &ExecutionError{
			Script: scriptPath,
			Err:    fmt.Errorf("expected output %s was not produced", pdfPath),
		}}
	}
	*localFiles = append(*localFiles, pdfPath, filepath.Join(workDir, finalBase+".gv"))
	log.Printf("  ✓ Final graph rendered")

	pdfKey := fmt.Sprintf("%s/%s/%s_final_%s.pdf", recipeName, today, recipeName, today)
	uri, err := p.store.Upload(ctx, bucket, pdfKey, FileSource(pdfPath), contentTypePDF)
	if err != nil {
		return &StageError{Stage: StageArtifactUpload, Err: err}
	}
	result.Artifacts["diagram_pdf"] = uri
	log.Printf("  ✓ Uploaded final diagram to %s", uri)

	return nil
}

// produceInteractive parses the improved output into markup/style/script
// artifacts and uploads each one that is present.
func (p *Pipeline) produceInteractive(ctx context.Context, improved, recipeName, bucket, today, runID string, result *GraphResult, localFiles *[]string) error {
	set := ParseArtifacts(improved)
	if set.Markup == "" {
		return &StageError{Stage: StageParse, Err: &ParseError{Reason: "no markup artifact in improved graph output"}}
	}

	artifacts := []struct {
		role        string
		filename    string
		content     string
		contentType string
	}{
		{"markup", "index.html", set.Markup, contentTypeHTML},
		{"style", "style.css", set.Style, contentTypeCSS},
		{"script", "script.js", set.Script, contentTypeJS},
	}

	workDir := p.config.Settings.WorkDirectory
	for _, a := range artifacts {
		if a.content == "" {
			continue
		}

		localPath := filepath.Join(workDir, fmt.Sprintf("%s_%s_%s", recipeName, runID, a.filename))
		if err := MaterializeCode(a.content, localPath); err != nil {
			return &StageError{Stage: StageMaterialize, Err: err}
		}
		*localFiles = append(*localFiles, localPath)

		key := fmt.Sprintf("%s/%s/%s", recipeName, today, a.filename)
		uri, err := p.store.Upload(ctx, bucket, key, FileSource(localPath), a.contentType)
		if err != nil {
			return &StageError{Stage: StageArtifactUpload, Err: err}
		}
		result.Artifacts[a.role] = uri
		log.Printf("  ✓ Uploaded %s to %s", a.role, uri)
	}

	return nil
}

// cleanup removes local intermediates after a successful run. Failures are
// warnings: the durable artifacts are already uploaded.
func (p *Pipeline) cleanup(paths []string) {
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := os.Remove(path); err != nil {
			log.Printf("Warning: could not remove local file %s: %v", path, err)
			continue
		}
		log.Printf("  Cleaned up local file: %s", path)
	}
}

func validateDraft(draft DraftInput) error {
	switch draft.Kind {
	case InputText:
		if strings.TrimSpace(draft.Text) == "" {
			return &ValidationError{Field: "draft", Reason: "recipe draft text is empty"}
		}
	case InputVideo:
		if draft.VideoURI == "" {
			return &ValidationError{Field: "draft", Reason: "video draft has no URI"}
		}
	default:
		return &ValidationError{Field: "draft", Reason: "draft must be text or a video reference"}
	}
	return nil
}

// draftContext renders the original draft for the revision prompt.
func draftContext(draft DraftInput) string {
	if draft.Kind == InputVideo {
		return "(video recipe) " + draft.VideoURI
	}
	return draft.Text
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
