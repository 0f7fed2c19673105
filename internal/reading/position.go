// Package reading implements the reading-position, progress-tracking,
// session and speed-estimation core shared by the EPUB and PDF readers.
//
// EPUB renderers report positions as CFI strings, PDF renderers as page
// numbers. Both map onto the same Position model: a page, a format-specific
// location token, and an optional percentage through the document.
package reading

import "math"

// Location is a renderer-reported location event. At minimum it carries a
// page number or a location token. Fraction, when non-nil, is a ready-made
// position estimate in [0,1] (e.g. an EPUB spine-based estimate).
type Location struct {
	Page       int
	Token      string
	TotalPages int
	Fraction   *float64
}

// Position is a normalized reading position. Percent is nil when no usable
// estimate exists; callers must not overwrite previously known progress
// with a nil percent.
type Position struct {
	Page    int
	Token   string
	Percent *int
}

// Resolve normalizes a location event into a Position.
//
// The precomputed page index is preferred once ready: it gives
// character-accurate percentages. Before the index is ready (generation is
// expensive and runs in the background) the renderer's own fraction is used
// verbatim. With neither available the percent stays nil rather than
// guessing.
func Resolve(loc Location, index *LocationIndex) Position {
	pos := Position{Page: loc.Page, Token: loc.Token}

	if index != nil && index.Ready() && loc.Token != "" {
		if fraction, ok := index.PercentageOf(loc.Token); ok {
			percent := int(math.Round(fraction * 100))
			pos.Percent = &percent
			return pos
		}
	}

	if loc.Fraction != nil {
		percent := int(math.Round(*loc.Fraction * 100))
		pos.Percent = &percent
	}

	return pos
}
