package weapon

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saw4405/splat-replay/internal/domain/frame"
	"github.com/saw4405/splat-replay/internal/matcher"
)

// writeCheckerPNG writes a w*h checkerboard alternating between c1 and c2,
// giving the image enough pixel variance for normalized cross-correlation
// to produce a meaningful (non-degenerate) score.
func writeCheckerPNG(t *testing.T, path string, w, h int, c1, c2 color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, c1)
			} else {
				img.Set(x, y, c2)
			}
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func solidFrame(w, h int, b, g, r byte) frame.Frame {
	pix := make([]byte, w*h*3)
	for i := 0; i < w*h; i++ {
		pix[i*3] = b
		pix[i*3+1] = g
		pix[i*3+2] = r
	}
	return frame.New(w, h, pix)
}

func TestRecognizerHUDVisibleFalseWithoutROI(t *testing.T) {
	r := NewRecognizer(map[string]matcher.ROI{}, t.TempDir())
	assert.False(t, r.HUDVisible(solidFrame(4, 4, 0, 0, 0)))
}

func TestRecognizerRecognizeMatchesBestIcon(t *testing.T) {
	dir := t.TempDir()
	writeCheckerPNG(t, filepath.Join(dir, "splattershot.png"), 8, 8, color.RGBA{200, 50, 50, 255}, color.RGBA{20, 10, 10, 255})
	// roller.png uses the opposite checker phase: normalized cross-correlation
	// ignores brightness and contrast, so an in-phase checker in other colors
	// would score as high as splattershot.png.
	writeCheckerPNG(t, filepath.Join(dir, "roller.png"), 8, 8, color.RGBA{5, 20, 5, 255}, color.RGBA{10, 200, 10, 255})

	full := solidFrame(16, 8, 0, 0, 0)
	// Paint the ally-1 ROI region (left 8x8) with the same checker pattern
	// as splattershot.png's reference icon (BGR order to match frame.At).
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			off := (y*16 + x) * 3
			if (x+y)%2 == 0 {
				full.Pix[off], full.Pix[off+1], full.Pix[off+2] = 10, 50, 200
			} else {
				full.Pix[off], full.Pix[off+1], full.Pix[off+2] = 10, 10, 20
			}
		}
	}

	rois := map[string]matcher.ROI{
		"weapon_ally_1": {Pixel: &frame.Rect{X: 0, Y: 0, W: 8, H: 8}},
	}
	r := NewRecognizer(rois, dir)
	assert.True(t, r.HUDVisible(full))

	allies, _ := r.Recognize(full)
	assert.Equal(t, "splattershot", allies[0].Label)
	assert.Greater(t, allies[0].Score, 0.9)
}
