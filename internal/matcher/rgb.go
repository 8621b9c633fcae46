package matcher

import "github.com/saw4405/splat-replay/internal/domain/frame"

// RGB is an exact target color in R, G, B order (not the Frame's internal
// BGR storage order, to keep matcher definitions readable).
type RGB struct {
	R, G, B byte
}

// RGBMatcher passes when at least Threshold fraction of the masked ROI's
// pixels equal Target exactly.
type RGBMatcher struct {
	name      string
	roi       ROI
	mask      *Mask
	target    RGB
	threshold float64
}

func NewRGBMatcher(name string, roi ROI, mask *Mask, target RGB, threshold float64) *RGBMatcher {
	return &RGBMatcher{name: name, roi: roi, mask: mask, target: target, threshold: threshold}
}

func (m *RGBMatcher) Name() string { return m.name }

func (m *RGBMatcher) Match(f frame.Frame) bool {
	region := f.Sub(m.roi.Resolve(f.Width, f.Height))
	var total, matched int
	forEachMasked(region, m.mask, func(b, g, r byte) {
		total++
		if r == m.target.R && g == m.target.G && b == m.target.B {
			matched++
		}
	})
	if total == 0 {
		return false
	}
	return float64(matched)/float64(total) >= m.threshold
}
