// Package resolver combines plugin-wide chart defaults with a chart's own
// configuration for a given color scheme.
package resolver

import (
	"fmt"
	"strings"

	"github.com/NissesSenap/chartembed/internal/configtree"
)

const (
	// DarkModeKey holds the overrides applied on top of a tree in dark mode.
	DarkModeKey = "darkModeConfig"
	// SeriesKey is the series list of a chart, or the per-field series
	// defaults when found in the plugin defaults.
	SeriesKey = "series"
	// CaptionKey holds the figure caption text.
	CaptionKey = "figcaption"
)

// ColorScheme is the color scheme a chart is resolved for.
type ColorScheme int

const (
	Light ColorScheme = iota
	Dark
)

func (s ColorScheme) String() string {
	if s == Dark {
		return "dark"
	}
	return "light"
}

// ParseColorScheme parses "light" or "dark".
func ParseColorScheme(s string) (ColorScheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return Light, nil
	case "dark":
		return Dark, nil
	default:
		return Light, fmt.Errorf("unknown color scheme %q", s)
	}
}

// Resolve returns the final configuration of a chart.
//
// Neither defaults nor userConfig is modified. The dark-mode overrides of
// both trees are layered in when scheme is Dark and are never part of the
// result. Fields of the defaults' series mapping are merged into every
// entry of the chart's series list, with the chart's values winning.
func Resolve(defaults, userConfig configtree.Tree, scheme ColorScheme) (configtree.Mapping, error) {
	base, err := applyScheme(defaults, scheme)
	if err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}
	user, err := applyScheme(userConfig, scheme)
	if err != nil {
		return nil, fmt.Errorf("chart config: %w", err)
	}

	applySeriesDefaults(base, user)
	delete(base, SeriesKey)

	return configtree.Merge(base, user)
}

// applyScheme returns a copy of t with its dark-mode overrides applied for
// Dark and removed in every case.
func applyScheme(t configtree.Tree, scheme ColorScheme) (configtree.Mapping, error) {
	if t == nil {
		return configtree.Mapping{}, nil
	}
	m, ok := t.(configtree.Mapping)
	if !ok {
		return nil, &configtree.StructuralMergeError{Role: "target", Got: configtree.KindOf(t)}
	}

	out := m.Clone()
	overlay, hasOverlay := out[DarkModeKey]
	delete(out, DarkModeKey)

	if scheme == Dark && hasOverlay && !isNull(overlay) {
		if _, err := configtree.Merge(out, overlay); err != nil {
			return nil, fmt.Errorf("%s: %w", DarkModeKey, err)
		}
		delete(out, DarkModeKey)
	}
	return out, nil
}

// isNull reports whether t is an explicit null, as written by a bare
// "darkModeConfig:" in YAML. A null layer counts as absent.
func isNull(t configtree.Tree) bool {
	s, ok := t.(configtree.Scalar)
	return ok && s.Value == nil
}

// applySeriesDefaults layers every field of the series defaults onto every
// series entry of user. Entries are not matched by type or name.
func applySeriesDefaults(base, user configtree.Mapping) {
	fields, ok := base[SeriesKey].(configtree.Mapping)
	if !ok || len(fields) == 0 {
		return
	}
	entries, ok := user[SeriesKey].(configtree.Sequence)
	if !ok {
		return
	}

	for _, item := range entries {
		entry, ok := item.(configtree.Mapping)
		if !ok || entry == nil {
			continue
		}
		for field, value := range fields {
			entry[field] = configtree.Overlay(value, entry[field])
		}
	}
}

// Caption returns the figcaption text of a resolved configuration.
func Caption(resolved configtree.Mapping) string {
	s, ok := resolved[CaptionKey].(configtree.Scalar)
	if !ok || s.Value == nil {
		return ""
	}
	if text, ok := s.Value.(string); ok {
		return text
	}
	return fmt.Sprint(s.Value)
}
