package matcher

import (
	"math"

	"github.com/saw4405/splat-replay/internal/domain/frame"
)

// TemplateMatcher compares a ROI against a reference image via normalized
// grayscale cross-correlation, scoring in [-1, 1]. It passes when the score
// meets or exceeds Threshold. The ROI is compared at a single alignment;
// the template is not slid across a larger region.
type TemplateMatcher struct {
	name      string
	template  frame.Frame
	roi       ROI
	threshold float64
}

// NewTemplateMatcher loads the template image at path and builds a matcher
// scoring a ROI of the frame against it.
func NewTemplateMatcher(name, path string, roi ROI, threshold float64) (*TemplateMatcher, error) {
	tmpl, err := loadImage(path)
	if err != nil {
		return nil, err
	}
	return &TemplateMatcher{name: name, template: tmpl, roi: roi, threshold: threshold}, nil
}

func (m *TemplateMatcher) Name() string { return m.name }

func (m *TemplateMatcher) Match(f frame.Frame) bool {
	return m.Score(f) >= m.threshold
}

// Score computes the normalized cross-correlation between the template and
// the (resized-by-cropping) ROI of f. The ROI is expected to already match
// the template's dimensions; a mismatched size scores 0.
func (m *TemplateMatcher) Score(f frame.Frame) float64 {
	r := m.roi.Resolve(f.Width, f.Height)
	region := f.Sub(r)
	if region.Width != m.template.Width || region.Height != m.template.Height {
		return 0
	}
	return normalizedCrossCorrelation(grayscale(region), grayscale(m.template))
}

func grayscale(f frame.Frame) []float64 {
	out := make([]float64, f.Width*f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			b, g, r := f.At(x, y)
			out[y*f.Width+x] = 0.114*float64(b) + 0.587*float64(g) + 0.299*float64(r)
		}
	}
	return out
}

func normalizedCrossCorrelation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	meanA, meanB := mean(a), mean(b)
	var num, denA, denB float64
	for i := range a {
		da, db := a[i]-meanA, b[i]-meanB
		num += da * db
		denA += da * da
		denB += db * db
	}
	den := math.Sqrt(denA * denB)
	if den == 0 {
		return 0
	}
	return num / den
}

func mean(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
