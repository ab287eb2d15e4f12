package main

import (
	"context"
	"errors"
	"os/exec"
	"time"
)

// Executor runs materialized scripts as subprocesses. The code being run is
// machine-generated and unverified: no stdin, an enforced deadline, and
// captured output for diagnostics.
type Executor struct {
	Interpreter string
	Timeout     time.Duration
	// Dir is the working directory for the script; side-effect files land here.
	Dir string
}

// NewExecutor builds an executor from configuration.
func NewExecutor(config *Config) *Executor {
	return &Executor{
		Interpreter: config.Settings.Executor.Interpreter,
		Timeout:     config.ExecutorTimeout(),
		Dir:         config.Settings.WorkDirectory,
	}
}

// Run executes a script and waits for it to finish. A non-zero exit status
// or a deadline hit yields an ExecutionError carrying the combined output.
func (e *Executor) Run(ctx context.Context, scriptPath string) error {
	runCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.Interpreter, scriptPath)
	cmd.Dir = e.Dir
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return &ExecutionError{
			Script: scriptPath,
			Output: string(output),
			Err:    runCtx.Err(),
		}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExecutionError{
			Script:   scriptPath,
			ExitCode: exitErr.ExitCode(),
			Output:   string(output),
		}
	}

	return &ExecutionError{Script: scriptPath, Output: string(output), Err: err}
}
