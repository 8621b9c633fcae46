package matcher

import "github.com/saw4405/splat-replay/internal/domain/frame"

// Mask restricts a matcher to the subset of a ROI whose corresponding mask
// pixel is non-black. A nil Mask includes every pixel in the ROI.
type Mask struct {
	frame frame.Frame
}

// NewMask loads a mask image from path.
func NewMask(path string) (*Mask, error) {
	f, err := loadImage(path)
	if err != nil {
		return nil, err
	}
	return &Mask{frame: f}, nil
}

// includes reports whether pixel (x, y), relative to the ROI's top-left
// corner, is selected by the mask.
func (m *Mask) includes(x, y int) bool {
	if m == nil {
		return true
	}
	if x < 0 || y < 0 || x >= m.frame.Width || y >= m.frame.Height {
		return false
	}
	b, g, r := m.frame.At(x, y)
	return b != 0 || g != 0 || r != 0
}

// forEachMasked calls fn for every pixel in region that the mask includes,
// passing its BGR triple, and returns how many pixels were visited.
func forEachMasked(region frame.Frame, mask *Mask, fn func(b, g, r byte)) int {
	count := 0
	for y := 0; y < region.Height; y++ {
		for x := 0; x < region.Width; x++ {
			if !mask.includes(x, y) {
				continue
			}
			b, g, r := region.At(x, y)
			fn(b, g, r)
			count++
		}
	}
	return count
}
