package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saw4405/splat-replay/internal/domain/frame"
)

func solidFrame(w, h int, b, g, r byte) frame.Frame {
	pix := make([]byte, w*h*3)
	for i := 0; i < w*h; i++ {
		pix[i*3] = b
		pix[i*3+1] = g
		pix[i*3+2] = r
	}
	return frame.New(w, h, pix)
}

func TestRGBMatcherExactMatch(t *testing.T) {
	f := solidFrame(4, 4, 10, 20, 30)
	m := NewRGBMatcher("solid", ROI{}, nil, RGB{R: 30, G: 20, B: 10}, 1.0)
	assert.True(t, m.Match(f))

	m2 := NewRGBMatcher("mismatch", ROI{}, nil, RGB{R: 1, G: 2, B: 3}, 1.0)
	assert.False(t, m2.Match(f))
}

func TestBrightnessMatcherThreshold(t *testing.T) {
	dark := solidFrame(4, 4, 0, 0, 0)
	bright := solidFrame(4, 4, 255, 255, 255)

	m := NewBrightnessMatcher("dark", ROI{}, nil, 10)
	assert.True(t, m.Match(dark))
	assert.False(t, m.Match(bright))
}

func TestHashMatcherComparesROIDigest(t *testing.T) {
	f := solidFrame(4, 4, 5, 6, 7)
	m := NewHashMatcher("still", ROI{}, hashFrame(f))
	assert.True(t, m.Match(f))

	other := solidFrame(4, 4, 8, 9, 10)
	assert.False(t, m.Match(other))
}

func gradientFrame(w, h int) frame.Frame {
	pix := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := byte((x + y*w) * 255 / (w*h - 1))
			off := (y*w + x) * 3
			pix[off], pix[off+1], pix[off+2] = v, v, v
		}
	}
	return frame.New(w, h, pix)
}

func TestTemplateMatcherScoresIdenticalFrameAsOne(t *testing.T) {
	f := gradientFrame(4, 4)
	tm := &TemplateMatcher{name: "t", template: f, threshold: 0.9}
	require.InDelta(t, 1.0, tm.Score(f), 1e-9)
	assert.True(t, tm.Match(f))
}

func TestCompositeAndRequiresAllBranches(t *testing.T) {
	f := solidFrame(4, 4, 10, 20, 30)
	pass := NewRGBMatcher("pass", ROI{}, nil, RGB{R: 30, G: 20, B: 10}, 1.0)
	fail := NewRGBMatcher("fail", ROI{}, nil, RGB{R: 1, G: 1, B: 1}, 1.0)

	and := And("both", pass, fail)
	assert.False(t, and.Match(f))

	or := Or("either", pass, fail)
	assert.True(t, or.Match(f))

	not := Not("not-fail", fail)
	assert.True(t, not.Match(f))
}
