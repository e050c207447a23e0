// Package strategy holds fixed preflop charts, flop action tables and
// loadable chart overlays. Every table is built once and never mutated.
package strategy

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/lox/pokerkelly/poker"
)

// Profile identifies a preflop style.
type Profile uint8

const (
	Standard Profile = iota
	Aggressive
	Tight
	Loose
	// GTO is only available once an overlay has been loaded.
	GTO
	// Custom has a rule description but no chart.
	Custom
)

var profileNames = [...]string{
	Standard:   "Standard",
	Aggressive: "Aggressive",
	Tight:      "Tight",
	Loose:      "Loose",
	GTO:        "GTO",
	Custom:     "Custom",
}

func (p Profile) String() string {
	if int(p) < len(profileNames) {
		return profileNames[p]
	}
	return fmt.Sprintf("Profile(%d)", p)
}

// ParseProfile matches a profile name case-insensitively.
func ParseProfile(s string) (Profile, error) {
	for p, name := range profileNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Profile(p), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown profile %q", poker.ErrInvalidInput, s)
}

// Profiles lists every profile in display order.
func Profiles() []Profile {
	return []Profile{Standard, Aggressive, Tight, Loose, GTO, Custom}
}

var rules = map[Profile]string{
	Standard:   "Raise 3x from any position with top 15% hands. Fold weakest 60%.",
	Aggressive: "Raise 4x with any suited connector, any pair, any broadway. 3-bet light from late position.",
	Tight:      "Raise only with QQ+, AK. Fold all else except call with JJ, TT, AQ.",
	Loose:      "Raise with any pair, any ace, any suited connector.",
	GTO:        "Follow the loaded solver chart; unlisted hands take its default.",
	Custom:     "Define your own rule here.",
}

// Rule describes a profile in a sentence.
func Rule(p Profile) string {
	return rules[p]
}

// Chart maps starting-hand notation ("AKs", "72o", "AA") to an action.
type Chart struct {
	profile  Profile
	name     string
	hands    map[string]Action
	fallback Action
}

func newChart(p Profile, name string, fallback string, hands map[string]string) *Chart {
	c := &Chart{
		profile:  p,
		name:     name,
		hands:    make(map[string]Action, len(hands)),
		fallback: MustParseAction(fallback),
	}
	for notation, label := range hands {
		c.hands[notation] = MustParseAction(label)
	}
	return c
}

var builtin = map[Profile]*Chart{
	Aggressive: newChart(Aggressive, "Aggressive", "Raise 3x", map[string]string{
		"AA":  "All-in",
		"KK":  "All-in",
		"QQ":  "Raise 4x",
		"AKs": "Raise 4x",
	}),
	Tight: newChart(Tight, "Tight", "Fold", map[string]string{
		"AA":  "Raise 3x",
		"KK":  "Raise 3x",
		"QQ":  "Raise 2.5x",
		"JJ":  "Raise 2x",
		"AKs": "Raise 2.5x",
	}),
	Loose: newChart(Loose, "Loose", "Raise 2x", map[string]string{
		"AA": "All-in",
		"KK": "All-in",
	}),
	Standard: newChart(Standard, "Standard", "Raise 2.5x", map[string]string{
		"AA":  "Raise 3x",
		"KK":  "Raise 3x",
		"QQ":  "Raise 3x",
		"AKs": "Raise 3x",
	}),
}

// Profile returns the profile the chart belongs to.
func (c *Chart) Profile() Profile { return c.profile }

// Name returns the chart's display name.
func (c *Chart) Name() string { return c.name }

// Default returns the action for hands the chart does not list.
func (c *Chart) Default() Action { return c.fallback }

// Action returns the action for notation, falling back to Default.
func (c *Chart) Action(notation string) Action {
	if a, ok := c.hands[notation]; ok {
		return a
	}
	return c.fallback
}

// ActionFor resolves two hole cards to their notation and action.
func (c *Chart) ActionFor(c1, c2 poker.Card) (string, Action, error) {
	notation, err := poker.Notation(c1, c2)
	if err != nil {
		return "", Action{}, err
	}
	return notation, c.Action(notation), nil
}

// Hands lists the explicitly charted notations in sorted order.
func (c *Chart) Hands() []string {
	return slices.Sorted(maps.Keys(c.hands))
}

// Catalog is the set of charts available to a process: the built-in
// profiles plus an optional GTO overlay.
type Catalog struct {
	charts map[Profile]*Chart
}

// NewCatalog returns the built-in charts, adding overlay as the GTO chart
// when it is non-nil.
func NewCatalog(overlay *Chart) *Catalog {
	charts := maps.Clone(builtin)
	if overlay != nil {
		charts[GTO] = overlay
	}
	return &Catalog{charts: charts}
}

// Chart returns the chart for p.
func (c *Catalog) Chart(p Profile) (*Chart, error) {
	chart, ok := c.charts[p]
	if !ok {
		return nil, fmt.Errorf("%w: no chart for profile %s", poker.ErrInvalidInput, p)
	}
	return chart, nil
}

// Available lists the profiles that have charts.
func (c *Catalog) Available() []Profile {
	var out []Profile
	for _, p := range Profiles() {
		if _, ok := c.charts[p]; ok {
			out = append(out, p)
		}
	}
	return out
}
