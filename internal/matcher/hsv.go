package matcher

import (
	"math"

	"github.com/saw4405/splat-replay/internal/domain/frame"
)

// HSVRange is an inclusive lower/upper bound in HSV space. Hue is in
// [0, 360); saturation and value are in [0, 1].
type HSVRange struct {
	LowH, LowS, LowV    float64
	HighH, HighS, HighV float64
}

// HSVMatcher passes when at least Threshold fraction of the masked ROI's
// pixels fall within an HSV range (spec §4.A).
type HSVMatcher struct {
	name      string
	roi       ROI
	mask      *Mask
	rng       HSVRange
	threshold float64
}

func NewHSVMatcher(name string, roi ROI, mask *Mask, rng HSVRange, threshold float64) *HSVMatcher {
	return &HSVMatcher{name: name, roi: roi, mask: mask, rng: rng, threshold: threshold}
}

func (m *HSVMatcher) Name() string { return m.name }

func (m *HSVMatcher) Match(f frame.Frame) bool {
	region := f.Sub(m.roi.Resolve(f.Width, f.Height))
	var total, inRange int
	forEachMasked(region, m.mask, func(b, g, r byte) {
		total++
		h, s, v := bgrToHSV(b, g, r)
		if h >= m.rng.LowH && h <= m.rng.HighH &&
			s >= m.rng.LowS && s <= m.rng.HighS &&
			v >= m.rng.LowV && v <= m.rng.HighV {
			inRange++
		}
	})
	if total == 0 {
		return false
	}
	return float64(inRange)/float64(total) >= m.threshold
}

func bgrToHSV(b, g, r byte) (h, s, v float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	max := maxOf3(rf, gf, bf)
	min := minOf3(rf, gf, bf)
	v = max
	delta := max - min
	if max == 0 {
		return 0, 0, v
	}
	s = delta / max
	if delta == 0 {
		return 0, s, v
	}
	switch max {
	case rf:
		h = 60 * math.Mod((gf-bf)/delta, 6)
	case gf:
		h = 60 * ((bf-rf)/delta + 2)
	default:
		h = 60 * ((rf-gf)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

func maxOf3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func minOf3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
