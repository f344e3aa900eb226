package textutil

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// NullToken is the sentinel substituted when a filename or label token does
// not match its expected pattern.
const NullToken = "null"

var (
	wireIDRe   = regexp.MustCompile(`^\s*(\d+)\s*-\s*([A-Za-z]+)\s*$`)
	sectionRe  = regexp.MustCompile(`[sS]\d+[A-Za-z]?`)
	panelRe    = regexp.MustCompile(`[pP][A-Za-z0-9]+`)
	panelPGRe  = regexp.MustCompile(`^[pP]([A-Za-z])(\d{1,2})$`)
	jobRe      = regexp.MustCompile(`^\s*([A-Za-z0-9]+)`)
	jobStemRe  = regexp.MustCompile(`[0-9]{4,}[A-Za-z]?`)
	gaugeRe    = regexp.MustCompile(`\b(\d{1,2})\b`)
	stemGCRe   = regexp.MustCompile(`(?i)(\d{1,2})([A-Z]{3})(?:_PLCIO)?(?:_\d{2})?$`)
	looseGCRe  = regexp.MustCompile(`(?i)(\d{1,2})([A-Z]{3})`)
	chunkSfxRe = regexp.MustCompile(`_(\d{2})$`)
)

// Stem returns the base filename without its extension.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SectionPanel extracts the section token (e.g. "s5D") and panel token
// (e.g. "pC14") from a filename. Unmatched tokens become "null".
func SectionPanel(name string) (section, panel string) {
	stem := Stem(name)
	section, panel = NullToken, NullToken
	if m := sectionRe.FindString(stem); m != "" {
		section = m
	}
	if m := panelRe.FindString(stem); m != "" {
		panel = m
	}
	return section, panel
}

// PanelGauge splits a panel token like "pC14" into the panel letter
// (uppercased) and gauge number. ok is false when the token does not match.
func PanelGauge(panelToken string) (letter string, gauge int, ok bool) {
	m := panelPGRe.FindStringSubmatch(panelToken)
	if m == nil {
		return "", 0, false
	}
	g, err := strconv.Atoi(m[2])
	if err != nil {
		return strings.ToUpper(m[1]), 0, false
	}
	return strings.ToUpper(m[1]), g, true
}

// GaugeColor parses a Wire ID value like "18-WHT" into the compact
// gauge+color token "18WHT", or "null" when unparseable. Hyphen spacing is
// insignificant; case is preserved.
func GaugeColor(wireID string) string {
	m := wireIDRe.FindStringSubmatch(strings.TrimSpace(wireID))
	if m == nil {
		return NullToken
	}
	return m[1] + m[2]
}

// GaugeColorFromStem extracts the gauge+color token from a split-output
// filename stem, tolerating optional "_PLCIO" and "_NN" suffixes
// (e.g. "s5DpC1418WHT_PLCIO_02" -> "18WHT"). Falls back to the first
// occurrence anywhere in the stem, then to "unknown".
func GaugeColorFromStem(stem string) string {
	if m := stemGCRe.FindStringSubmatch(stem); m != nil {
		return m[1] + strings.ToUpper(m[2])
	}
	if m := looseGCRe.FindStringSubmatch(stem); m != nil {
		return m[1] + strings.ToUpper(m[2])
	}
	return "unknown"
}

// GaugeFromWireID pulls the first standalone 1-2 digit number out of a
// Wire ID value. ok is false when none is present.
func GaugeFromWireID(text string) (gauge int, ok bool) {
	m := gaugeRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	g, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return g, true
}

// LeadingToken returns the leading alphanumeric token of a label, or "" when
// the label does not start with one.
func LeadingToken(label string) string {
	m := jobRe.FindStringSubmatch(label)
	if m == nil {
		return ""
	}
	return m[1]
}

// JobFromStem guesses a job number from a filename stem: four or more digits
// with an optional trailing letter. Returns "" when absent.
func JobFromStem(stem string) string {
	return jobStemRe.FindString(stem)
}

// ChunkSuffix returns a trailing "_NN" chunk marker of a stem, including the
// underscore, or "".
func ChunkSuffix(stem string) string {
	return chunkSfxRe.FindString(stem)
}

// HasPLCIO reports whether the label contains the PLCIO marker,
// case-insensitively.
func HasPLCIO(label string) bool {
	return strings.Contains(strings.ToUpper(label), "PLCIO")
}

// EndpointTokens splits a label on whitespace and returns its first and last
// tokens with anything after a ':' stripped. Both are "" for a blank label.
func EndpointTokens(label string) (left, right string) {
	parts := strings.Fields(label)
	if len(parts) == 0 {
		return "", ""
	}
	left, _, _ = strings.Cut(parts[0], ":")
	right, _, _ = strings.Cut(parts[len(parts)-1], ":")
	return left, right
}
