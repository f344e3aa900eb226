package wireprint

import (
	"errors"
	"fmt"
)

// ErrNoInputs indicates a run was started with nothing to process.
var ErrNoInputs = errors.New("no input files")

// ProcessError wraps a fatal failure while processing one input file. It is
// fatal for that file only; callers continue with the remaining inputs.
type ProcessError struct {
	File  string
	Stage string // "load", "header", "fixers", "crimp", "split", "write"
	Err   error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("process %s (%s): %v", e.File, e.Stage, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

func newProcessError(file, stage string, err error) *ProcessError {
	return &ProcessError{File: file, Stage: stage, Err: err}
}
