package models

import "fmt"

// Diagnostic is one recoverable finding from a pipeline stage, such as a
// fixer skipped because its header is missing.
type Diagnostic struct {
	// Stage names the stage that produced the finding ("fixers", "crimp",
	// "split", "mains").
	Stage   string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Stage, d.Message)
}

// Diagnostics is an ordered, append-only list of recoverable findings,
// collected instead of printed so callers and tests can inspect them.
type Diagnostics struct {
	entries []Diagnostic
}

// Addf appends a formatted diagnostic for the given stage.
func (d *Diagnostics) Addf(stage, format string, args ...interface{}) {
	if d == nil {
		return
	}
	d.entries = append(d.entries, Diagnostic{Stage: stage, Message: fmt.Sprintf(format, args...)})
}

// Entries returns the recorded diagnostics in order.
func (d *Diagnostics) Entries() []Diagnostic {
	if d == nil {
		return nil
	}
	return d.entries
}

// Len returns the number of recorded diagnostics.
func (d *Diagnostics) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}
