// Package wireprint fixes, crimps, and splits wire print sheets.
package wireprint

import (
	"github.com/wireprint/wireprint-go/pkg/wireprint/crimp"
	"github.com/wireprint/wireprint-go/pkg/wireprint/models"
	"github.com/wireprint/wireprint-go/pkg/wireprint/split"
)

// CleanSaveFunc normalizes a written output file (for example by rebuilding
// it as .xlsx) and returns the path that replaces the original in the run
// result. A nil func disables clean-save; a failing one is reported as a
// warning and the original path is kept.
type CleanSaveFunc func(path string) (string, error)

// Options configures a fix-and-split run.
type Options struct {
	// HeaderAnchor is the cell text that locates the header row.
	HeaderAnchor string
	// MaxPerFile caps the number of wires per output batch.
	MaxPerFile int
	// AutoCrimp enables the crimp engine.
	AutoCrimp bool
	// Rules is the declarative crimp rule set; when nil or empty the
	// builtin Panel C / 14 AWG rule applies.
	Rules *crimp.RuleSet
	// CrimpID overrides the identifier the builtin rule assigns.
	CrimpID string
	// PreferWhenBoth picks the side when both endpoints match
	// (crimp.SideLeft or crimp.SideRight).
	PreferWhenBoth string
	// CleanSave post-processes each written output when non-nil.
	CleanSave CleanSaveFunc
}

// DefaultOptions returns the defaults the CLI starts from.
func DefaultOptions() Options {
	return Options{
		HeaderAnchor:   models.DefaultHeaderAnchor,
		MaxPerFile:     split.DefaultMaxPerFile,
		AutoCrimp:      true,
		CrimpID:        crimp.DefaultCrimpID,
		PreferWhenBoth: crimp.SideLeft,
	}
}
