package matcher

import (
	"math"

	"github.com/saw4405/splat-replay/internal/domain/frame"
)

// UniformMatcher passes when the masked ROI's hue is uniform: its circular
// standard deviation stays at or below MaxStdDev degrees. Used to detect
// solid-color loading screens and transition wipes.
type UniformMatcher struct {
	name      string
	roi       ROI
	mask      *Mask
	maxStdDev float64
}

func NewUniformMatcher(name string, roi ROI, mask *Mask, maxStdDev float64) *UniformMatcher {
	return &UniformMatcher{name: name, roi: roi, mask: mask, maxStdDev: maxStdDev}
}

func (m *UniformMatcher) Name() string { return m.name }

func (m *UniformMatcher) Match(f frame.Frame) bool {
	region := f.Sub(m.roi.Resolve(f.Width, f.Height))
	var sinSum, cosSum float64
	var count int
	forEachMasked(region, m.mask, func(b, g, r byte) {
		h, _, _ := bgrToHSV(b, g, r)
		rad := h * math.Pi / 180
		sinSum += math.Sin(rad)
		cosSum += math.Cos(rad)
		count++
	})
	if count == 0 {
		return false
	}
	meanSin, meanCos := sinSum/float64(count), cosSum/float64(count)
	resultantLength := math.Hypot(meanSin, meanCos)
	// circular standard deviation in radians, converted to degrees
	stdDev := math.Sqrt(-2*math.Log(resultantLength)) * 180 / math.Pi
	return stdDev <= m.maxStdDev
}
