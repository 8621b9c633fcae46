package matcher

import "github.com/saw4405/splat-replay/internal/domain/frame"

// BrightnessMatcher passes when the masked ROI's mean luminance is at or
// below Max, used to detect fade-to-black transitions.
type BrightnessMatcher struct {
	name string
	roi  ROI
	mask *Mask
	max  float64
}

func NewBrightnessMatcher(name string, roi ROI, mask *Mask, max float64) *BrightnessMatcher {
	return &BrightnessMatcher{name: name, roi: roi, mask: mask, max: max}
}

func (m *BrightnessMatcher) Name() string { return m.name }

func (m *BrightnessMatcher) Match(f frame.Frame) bool {
	region := f.Sub(m.roi.Resolve(f.Width, f.Height))
	var sum float64
	var count int
	forEachMasked(region, m.mask, func(b, g, r byte) {
		sum += 0.114*float64(b) + 0.587*float64(g) + 0.299*float64(r)
		count++
	})
	if count == 0 {
		return false
	}
	return sum/float64(count) <= m.max
}
