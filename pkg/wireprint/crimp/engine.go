package crimp

import (
	"regexp"
	"strings"

	"github.com/wireprint/wireprint-go/pkg/wireprint/models"
	"github.com/wireprint/wireprint-go/pkg/wireprint/textutil"
)

// DefaultCrimpID is the identifier the builtin Panel C / 14 AWG rule
// assigns.
const DefaultCrimpID = "018769-025"

// Column fallbacks used when the header row lacks the named columns.
const (
	fallbackWireIDColumn    = 11
	fallbackArticleIDColumn = 6
)

// Sides of a wire row.
const (
	SideLeft  = "left"
	SideRight = "right"
)

// Trigger tokens for the builtin rule: PSS1..PSS4, VMSS/AMSS/WM/FM/86 with
// an optional A/B suffix, and CBCS with any alphanumeric prefix.
var builtinTokenRe = regexp.MustCompile(`(?i)^(?:PSS[1-4]|(?:VMSS|AMSS|WM|FM|86)[AB]?|[A-Z0-9]*CBCS[AB]?)$`)

func containsGauge(gauges []int, g int) bool {
	if g == 0 {
		return false
	}
	for _, v := range gauges {
		if v == g {
			return true
		}
	}
	return false
}

func wireIDGaugeIn(gauges []int, wireIDText string) bool {
	g, ok := textutil.GaugeFromWireID(wireIDText)
	return ok && containsGauge(gauges, g)
}

func anyMatch(tok string, res []*regexp.Regexp) bool {
	if tok == "" {
		return false
	}
	for _, re := range res {
		if re.MatchString(tok) {
			return true
		}
	}
	return false
}

// decideSide tests the endpoint tokens against the rule's pattern sets and
// returns SideLeft, SideRight, or "" when neither matches. When both sides
// match, prefer picks the side.
func (r *Rule) decideSide(ltok, rtok, prefer string) string {
	left := anyMatch(ltok, r.left)
	right := anyMatch(rtok, r.right)

	if !left && !right && len(r.any) > 0 {
		left = anyMatch(ltok, r.any)
		right = anyMatch(rtok, r.any)
	}

	switch {
	case left && right:
		if prefer == SideRight {
			return SideRight
		}
		return SideLeft
	case left:
		return SideLeft
	case right:
		return SideRight
	}
	return ""
}

// writeCrimp applies the shared write contract for either strategy: never
// overwrite a different value, skip rows with both slots filled, flip to the
// empty side when the chosen one is occupied, and blank the two columns
// immediately left of the written slot. Returns true when a value was
// written.
func writeCrimp(r *models.Row, side string, leftCol, rightCol int, crimpID string) bool {
	// Read without materializing; skipped rows must come out untouched.
	cells := r.CellMap()
	vLeft := strings.TrimSpace(cells[leftCol].Text())
	vRight := strings.TrimSpace(cells[rightCol].Text())

	if vLeft != "" && vRight != "" {
		return false
	}

	target := leftCol
	if side == SideRight {
		target = rightCol
	}

	// A slot holding a different value counts as already assigned.
	if vLeft != "" && target == leftCol && vLeft != crimpID {
		return false
	}
	if vRight != "" && target == rightCol && vRight != crimpID {
		return false
	}

	// Flip to the empty side when the chosen one is taken.
	if target == leftCol && vLeft != "" && vRight == "" {
		target = rightCol
	} else if target == rightCol && vRight != "" && vLeft == "" {
		target = leftCol
	}

	tgt := r.EnsureCellAt(target)
	if strings.TrimSpace(tgt.Text()) != "" {
		return false
	}
	tgt.SetText(crimpID, models.TypeString)
	for _, k := range []int{target - 1, target - 2} {
		r.EnsureCellAt(k).SetText("", models.TypeString)
	}
	return true
}

// ApplyRuleSet runs the declarative rules over every data row, first match
// wins per row. Returns the number of rows changed.
func ApplyRuleSet(t *models.Table, source, anchor string, rs *RuleSet) (int, error) {
	hdrIdx, err := t.FindHeaderRow(anchor, models.DefaultHeaderScanLimit)
	if err != nil {
		return 0, err
	}
	hdr := models.HeaderMap(t.Rows[hdrIdx])
	colWire := headerOr(hdr, "Wire ID", fallbackWireIDColumn)
	colAid := headerOr(hdr, "Article ID", fallbackArticleIDColumn)

	_, panelToken := textutil.SectionPanel(source)
	panelLetter, filenameGauge, _ := textutil.PanelGauge(panelToken)

	preferDefault := normalizePrefer(rs.Defaults.PreferWhenBoth)
	changed := 0

	for _, r := range t.DataRows(hdrIdx) {
		cells := r.CellMap()
		wireText := cells[colWire].Text()
		aid := strings.TrimSpace(cells[colAid].Text())
		if aid == "" {
			continue
		}
		ltok, rtok := textutil.EndpointTokens(aid)

		for _, rule := range rs.Rules {
			if !rule.matchesPanelGauge(panelLetter, filenameGauge, wireText) {
				continue
			}
			prefer := normalizePrefer(rule.PreferWhenBoth)
			if rule.PreferWhenBoth == "" {
				prefer = preferDefault
			}
			side := rule.decideSide(ltok, rtok, prefer)
			if side == "" {
				continue
			}

			leftCol, rightCol := DefaultLeftColumn, DefaultRightColumn
			if rule.Columns != nil {
				if rule.Columns.Left > 0 {
					leftCol = rule.Columns.Left
				}
				if rule.Columns.Right > 0 {
					rightCol = rule.Columns.Right
				}
			}

			if writeCrimp(r, side, leftCol, rightCol, rule.CrimpID) {
				changed++
			}
			break // first matching rule decides the row
		}
	}

	return changed, nil
}

// BuiltinOptions configures the fallback hardcoded rule.
type BuiltinOptions struct {
	// CrimpID is the identifier to assign; DefaultCrimpID when empty.
	CrimpID string
	// PreferWhenBoth picks the side when both endpoints match
	// (SideLeft or SideRight; SideLeft when empty).
	PreferWhenBoth string
}

// ApplyBuiltin runs the hardcoded fallback rule: Panel C + 14 AWG rows whose
// first or last Article ID token is a crimp trigger get the crimp identifier
// under the same write contract as the declarative engine. Panel and gauge
// are asserted from the filename, with the Wire ID column as the gauge
// fallback when the filename is inconclusive.
func ApplyBuiltin(t *models.Table, source, anchor string, opts BuiltinOptions) (int, error) {
	hdrIdx, err := t.FindHeaderRow(anchor, models.DefaultHeaderScanLimit)
	if err != nil {
		return 0, err
	}
	hdr := models.HeaderMap(t.Rows[hdrIdx])
	colWire := headerOr(hdr, "Wire ID", fallbackWireIDColumn)
	colAid := headerOr(hdr, "Article ID", fallbackArticleIDColumn)

	crimpID := opts.CrimpID
	if crimpID == "" {
		crimpID = DefaultCrimpID
	}
	prefer := normalizePrefer(opts.PreferWhenBoth)

	_, panelToken := textutil.SectionPanel(source)
	panelLetter, gaugeFromName, _ := textutil.PanelGauge(panelToken)

	// A filename that clearly names another panel or gauge rules the whole
	// file out.
	if panelLetter != "" && panelLetter != "C" {
		return 0, nil
	}
	if gaugeFromName != 0 && gaugeFromName != 14 {
		return 0, nil
	}

	changed := 0
	for _, r := range t.DataRows(hdrIdx) {
		cells := r.CellMap()

		gaugeOK := gaugeFromName == 14
		if !gaugeOK {
			if g, ok := textutil.GaugeFromWireID(cells[colWire].Text()); ok && g == 14 {
				gaugeOK = true
			}
		}
		if !gaugeOK {
			continue
		}

		aid := strings.TrimSpace(cells[colAid].Text())
		if aid == "" {
			continue
		}
		ltok, rtok := textutil.EndpointTokens(aid)
		leftOK := builtinTokenRe.MatchString(ltok)
		rightOK := builtinTokenRe.MatchString(rtok)
		if !leftOK && !rightOK {
			continue
		}

		side := SideLeft
		switch {
		case leftOK && rightOK:
			side = prefer
		case rightOK:
			side = SideRight
		}

		if writeCrimp(r, side, DefaultLeftColumn, DefaultRightColumn, crimpID) {
			changed++
		}
	}

	return changed, nil
}

func headerOr(hdr map[string]int, name string, fallback int) int {
	if col, ok := hdr[name]; ok {
		return col
	}
	return fallback
}

func normalizePrefer(s string) string {
	if strings.EqualFold(s, SideRight) {
		return SideRight
	}
	return SideLeft
}
