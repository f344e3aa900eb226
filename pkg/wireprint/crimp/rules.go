// Package crimp assigns crimp terminal identifiers to wire rows by matching
// the endpoint tokens of the Article ID label.
package crimp

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Default target columns for the left and right crimp slots.
const (
	DefaultLeftColumn  = 15
	DefaultRightColumn = 19
)

// Columns overrides the target columns for a single rule.
type Columns struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// Rule is one declarative crimp assignment. Rules are evaluated in
// declaration order; the first rule that matches a row is applied and
// evaluation stops for that row.
type Rule struct {
	CrimpID        string   `json:"crimp_id"`
	Panels         []string `json:"panels,omitempty"`
	Gauges         []int    `json:"gauges,omitempty"`
	TokensLeft     []string `json:"tokens_left,omitempty"`
	TokensRight    []string `json:"tokens_right,omitempty"`
	TokensAny      []string `json:"tokens_any,omitempty"`
	Columns        *Columns `json:"columns,omitempty"`
	PreferWhenBoth string   `json:"prefer_when_both,omitempty"`

	left  []*regexp.Regexp
	right []*regexp.Regexp
	any   []*regexp.Regexp
}

// Defaults holds rule-set-wide settings.
type Defaults struct {
	PreferWhenBoth string `json:"prefer_when_both,omitempty"`
}

// RuleSet is an ordered list of crimp rules with shared defaults.
type RuleSet struct {
	Defaults Defaults `json:"defaults"`
	Rules    []*Rule  `json:"rules"`
}

// Empty reports whether the set carries no rules; an empty set falls back to
// the builtin rule.
func (rs *RuleSet) Empty() bool {
	return rs == nil || len(rs.Rules) == 0
}

// LoadRules reads and compiles a crimp rule set from a JSON file. The caller
// is expected to degrade to the builtin rule on error rather than abort.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRules(data)
}

// ParseRules decodes and compiles a rule set. Token patterns are compiled
// case-insensitively; any bad pattern fails the whole set.
func ParseRules(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	for i, rule := range rs.Rules {
		if rule.CrimpID == "" {
			return nil, fmt.Errorf("rule %d: missing crimp_id", i)
		}
		var err error
		if rule.left, err = compileTokens(rule.TokensLeft); err != nil {
			return nil, fmt.Errorf("rule %d tokens_left: %w", i, err)
		}
		if rule.right, err = compileTokens(rule.TokensRight); err != nil {
			return nil, fmt.Errorf("rule %d tokens_right: %w", i, err)
		}
		if rule.any, err = compileTokens(rule.TokensAny); err != nil {
			return nil, fmt.Errorf("rule %d tokens_any: %w", i, err)
		}
	}
	return &rs, nil
}

func compileTokens(pats []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(pats))
	for _, p := range pats {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

// matchesPanelGauge checks the rule's optional panel and gauge filters
// against the filename-derived panel letter and gauge, with the Wire ID text
// as the gauge fallback.
func (r *Rule) matchesPanelGauge(panelLetter string, filenameGauge int, wireIDText string) bool {
	if len(r.Panels) > 0 && panelLetter != "" {
		found := false
		for _, p := range r.Panels {
			if strings.EqualFold(p, panelLetter) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(r.Gauges) > 0 {
		if !containsGauge(r.Gauges, filenameGauge) && !wireIDGaugeIn(r.Gauges, wireIDText) {
			return false
		}
	}
	return true
}
