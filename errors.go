package main

import (
	"errors"
	"fmt"
)

// Stage identifies one discrete step of the pipeline. Every failure the
// pipeline surfaces is attributed to exactly one stage.
type Stage string

const (
	StageDraftToRecipe  Stage = "draft_to_recipe"
	StageStandardize    Stage = "standardize"
	StageRevise         Stage = "revise"
	StagePreflight      Stage = "preflight"
	StageRecipeUpload   Stage = "recipe_upload"
	StageGraphGenerate  Stage = "graph_generate"
	StageGraphImprove   Stage = "graph_improve"
	StageParse          Stage = "parse_artifacts"
	StageMaterialize    Stage = "materialize"
	StageExecute        Stage = "final_graph_script"
	StageArtifactUpload Stage = "artifact_upload"
)

// ErrUserAborted signals an explicit user rejection during review. It is a
// normal early termination, not a failure.
var ErrUserAborted = errors.New("run aborted by user")

// StageError attributes an underlying failure to a pipeline stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// GenerationError covers an erroring, empty, or safety-blocked model call.
type GenerationError struct {
	Reason  string
	Blocked bool
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("generation failed: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ParseError means no recognizable artifact was found in a model response.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed: %s", e.Reason)
}

// ValidationError covers invalid inputs and missing required configuration
// (empty draft, missing bucket or recipe name, bad upload source).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ExecutionError reports a generated script that exited non-zero, timed out,
// or finished without producing its expected output file.
type ExecutionError struct {
	Script   string
	ExitCode int
	Output   string
	Err      error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("executing %s: %v", e.Script, e.Err)
	}
	return fmt.Sprintf("executing %s: exit code %d", e.Script, e.ExitCode)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// StorageErrorKind classifies persistence gateway failures.
type StorageErrorKind string

const (
	StorageNotFound         StorageErrorKind = "not_found"
	StorageForbidden        StorageErrorKind = "forbidden"
	StorageLocalFileMissing StorageErrorKind = "local_file_missing"
	StorageTransient        StorageErrorKind = "transient"
)

// StorageError reports a failed object store operation.
type StorageError struct {
	Kind   StorageErrorKind
	Bucket string
	Key    string
	Err    error
}

func (e *StorageError) Error() string {
	loc := e.Bucket
	if e.Key != "" {
		loc = e.Bucket + "/" + e.Key
	}
	if e.Err != nil {
		return fmt.Sprintf("storage %s: gs://%s: %v", e.Kind, loc, e.Err)
	}
	return fmt.Sprintf("storage %s: gs://%s", e.Kind, loc)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// FailedStage extracts the stage attribution from an error chain, or ""
// when the error carries none.
func FailedStage(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
