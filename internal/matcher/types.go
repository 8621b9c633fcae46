// Package matcher implements the frame-matching primitives of spec §4.A:
// template/HSV/RGB/hash/uniform/brightness/edge leaf matchers plus
// and/or/not composite expressions evaluated concurrently.
package matcher

import "github.com/saw4405/splat-replay/internal/domain/frame"

// ROI is an optional region of interest a matcher restricts itself to.
// Pixel takes precedence over Normalized when both are set; when neither
// is set the matcher operates on the whole frame.
type ROI struct {
	Pixel      *frame.Rect
	Normalized *frame.NormalizedRect
}

// Resolve returns the pixel rect this ROI selects within a frame of the
// given dimensions, or the full frame when the ROI is unset.
func (r ROI) Resolve(width, height int) frame.Rect {
	if r.Pixel != nil {
		return *r.Pixel
	}
	if r.Normalized != nil {
		return r.Normalized.Resolve(width, height)
	}
	return frame.Rect{X: 0, Y: 0, W: width, H: height}
}

// Matcher evaluates a single frame predicate (spec §4.A: "each matcher
// implements match(frame) -> bool").
type Matcher interface {
	Name() string
	Match(f frame.Frame) bool
}

// ScoredMatcher is additionally implemented by matchers that expose a
// continuous score (template matchers, per spec §4.A).
type ScoredMatcher interface {
	Matcher
	Score(f frame.Frame) float64
}
