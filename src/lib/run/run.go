// Package run executes external processes on behalf of the other libraries.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// OutputType describes how the output of a process is collected.
type OutputType int

const (
	// OutputNone discards all output.
	OutputNone OutputType = iota
	// OutputCombined collects stdout and stderr into Result.Output.
	OutputCombined
	// OutputSeparate collects stdout and stderr into Result.Stdout and
	// Result.Stderr.
	OutputSeparate
)

// Options are the options for running a process.
type Options struct {
	// Name is the name or path of the executable.
	Name string
	// Args are the arguments passed to the executable.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Input is written to the process' stdin.
	Input string
	// InheritEnv passes the current environment to the process.
	InheritEnv bool
	// OutputType is how output is collected.
	OutputType OutputType
}

// Result is the result of running a process.
type Result struct {
	// OutputType is the output type the process was run with.
	OutputType OutputType
	// Output is the combined stdout and stderr, for OutputCombined.
	Output string
	// Stdout is the standard output, for OutputSeparate.
	Stdout string
	// Stderr is the standard error, for OutputSeparate.
	Stderr string
	// ExitCode is the exit code of the process.
	ExitCode int
	// Pid is the pid of the process.
	Pid int
}

// ExitError is returned when the process ran but exited with a non-zero status.
type ExitError struct {
	// Name is the executable that was run.
	Name string
	// Code is the exit code.
	Code int
	err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.err
}

// IsExitError reports whether err means the process ran and exited non-zero,
// as opposed to the process never running at all.
func IsExitError(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}

// WithContext runs the process described by opts.
//
// If the process exits non-zero, both the Result and an *ExitError are
// returned. If the process cannot be started or is killed by ctx, the Result
// is nil.
func WithContext(ctx context.Context, opts Options) (*Result, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("no executable provided")
	}
	cmd := exec.CommandContext(ctx, opts.Name, opts.Args...)
	cmd.Dir = opts.Dir
	if opts.InheritEnv {
		cmd.Env = os.Environ()
	}
	if opts.Input != "" {
		cmd.Stdin = strings.NewReader(opts.Input)
	}

	var stdout, stderr, combined bytes.Buffer
	switch opts.OutputType {
	case OutputCombined:
		cmd.Stdout = &combined
		cmd.Stderr = &combined
	case OutputSeparate:
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	res := &Result{
		OutputType: opts.OutputType,
		Output:     combined.String(),
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
	}
	if cmd.Process != nil {
		res.Pid = cmd.Process.Pid
	}
	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("failed to run %q: %w", opts.Name, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, &ExitError{Name: opts.Name, Code: res.ExitCode, err: err}
	}
	return nil, fmt.Errorf("failed to run %q: %w", opts.Name, err)
}
