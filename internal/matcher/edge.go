package matcher

import (
	"math"

	"github.com/saw4405/splat-replay/internal/domain/frame"
)

// EdgeMatcher passes when a Sobel edge map of the ROI stays within MaxDist
// of a precomputed reference edge map, used for UI chrome that keeps its
// outline but varies in fill color (e.g. a highlighted vs. unhighlighted
// button).
type EdgeMatcher struct {
	name          string
	roi           ROI
	referenceEdge []float64
	refWidth      int
	refHeight     int
	maxDist       float64
}

// NewEdgeMatcher loads the reference image at path and precomputes its edge
// map.
func NewEdgeMatcher(name, path string, roi ROI, maxDist float64) (*EdgeMatcher, error) {
	ref, err := loadImage(path)
	if err != nil {
		return nil, err
	}
	return &EdgeMatcher{
		name:          name,
		roi:           roi,
		referenceEdge: sobelMagnitude(ref),
		refWidth:      ref.Width,
		refHeight:     ref.Height,
		maxDist:       maxDist,
	}, nil
}

func (m *EdgeMatcher) Name() string { return m.name }

func (m *EdgeMatcher) Match(f frame.Frame) bool {
	region := f.Sub(m.roi.Resolve(f.Width, f.Height))
	if region.Width != m.refWidth || region.Height != m.refHeight {
		return false
	}
	edge := sobelMagnitude(region)
	var sum float64
	for i := range edge {
		d := edge[i] - m.referenceEdge[i]
		sum += d * d
	}
	dist := math.Sqrt(sum / float64(len(edge)))
	return dist <= m.maxDist
}

// sobelMagnitude returns a per-pixel gradient magnitude map of a frame's
// grayscale luminance, zero-padded at the border.
func sobelMagnitude(f frame.Frame) []float64 {
	gray := grayscale(f)
	w, h := f.Width, f.Height
	out := make([]float64, w*h)
	gx := [9]float64{-1, 0, 1, -2, 0, 2, -1, 0, 1}
	gy := [9]float64{-1, -2, -1, 0, 0, 0, 1, 2, 1}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var sx, sy float64
			k := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					v := gray[(y+dy)*w+(x+dx)]
					sx += gx[k] * v
					sy += gy[k] * v
					k++
				}
			}
			out[y*w+x] = math.Hypot(sx, sy)
		}
	}
	return out
}
