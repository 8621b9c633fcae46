package matcher

import "github.com/saw4405/splat-replay/internal/domain/frame"

// HashMatcher passes when the SHA-1 digest of a ROI equals a precomputed
// hash, used for UI elements that render as pixel-identical stills (e.g. a
// loading spinner's first frame) rather than photographic content.
type HashMatcher struct {
	name string
	roi  ROI
	hash string
}

// NewHashMatcherFromImage loads the reference image at path and hashes it,
// so callers can author reference images instead of hardcoding digests.
func NewHashMatcherFromImage(name, path string, roi ROI) (*HashMatcher, error) {
	img, err := loadImage(path)
	if err != nil {
		return nil, err
	}
	return &HashMatcher{name: name, roi: roi, hash: hashFrame(img)}, nil
}

// NewHashMatcher builds a matcher from an already-known hex digest.
func NewHashMatcher(name string, roi ROI, hash string) *HashMatcher {
	return &HashMatcher{name: name, roi: roi, hash: hash}
}

func (m *HashMatcher) Name() string { return m.name }

func (m *HashMatcher) Match(f frame.Frame) bool {
	region := f.Sub(m.roi.Resolve(f.Width, f.Height))
	return hashFrame(region) == m.hash
}
