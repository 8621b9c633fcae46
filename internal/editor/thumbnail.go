package editor

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/saw4405/splat-replay/internal/apperr"
	"github.com/saw4405/splat-replay/internal/domain/frame"
)

// ThumbnailOverlay is one text element drawn over the chosen screenshot,
// backed by a rounded rectangle and optionally preceded by a weapon icon
// loaded from iconDir (spec §4.K step 2d).
type ThumbnailOverlay struct {
	Text     string
	X, Y     int
	Color    color.RGBA
	IconPath string // optional; skipped silently if the file can't be read
}

// composeThumbnail picks the candidate screenshot with the brightest ROI
// (the result-screen exposure is the signal that frame actually shows the
// match result rather than a transition) and draws the given overlays.
// face renders overlay text; pass nil to fall back to the built-in
// ASCII-only basicfont (sufficient for tests, not for Japanese titles).
func composeThumbnail(candidates [][]byte, roi frame.Rect, overlays []ThumbnailOverlay, face font.Face) ([]byte, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	var best image.Image
	bestBrightness := -1.0
	for _, data := range candidates {
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			continue
		}
		b := regionBrightness(img, roi)
		if b > bestBrightness {
			bestBrightness = b
			best = img
		}
	}
	if best == nil {
		return nil, apperr.New(apperr.KindInternal, "サムネイル候補のデコードに失敗しました")
	}

	canvas := image.NewRGBA(best.Bounds())
	draw.Draw(canvas, canvas.Bounds(), best, image.Point{}, draw.Src)

	for _, ov := range overlays {
		if ov.IconPath != "" {
			drawIcon(canvas, ov.IconPath, ov.X, ov.Y)
		}
		w := textWidth(ov.Text, face)
		drawRoundedRect(canvas, ov.X-8, ov.Y-16, w+16, 24, 8, color.RGBA{0, 0, 0, 160})
		drawText(canvas, ov.Text, ov.X, ov.Y, ov.Color, face)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "サムネイルのエンコードに失敗しました", err)
	}
	return buf.Bytes(), nil
}

func regionBrightness(img image.Image, roi frame.Rect) float64 {
	bounds := img.Bounds()
	x0, y0, x1, y1 := bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y
	if roi.W > 0 && roi.H > 0 {
		x0, y0 = roi.X, roi.Y
		x1, y1 = roi.X+roi.W, roi.Y+roi.H
	}
	var sum float64
	var n int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if !(image.Pt(x, y).In(bounds)) {
				continue
			}
			r, g, b, _ := img.At(x, y).RGBA()
			sum += 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func drawText(dst *image.RGBA, text string, x, y int, col color.RGBA, face font.Face) {
	if face == nil {
		face = basicfont.Face7x13
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func textWidth(text string, face font.Face) int {
	if face == nil {
		face = basicfont.Face7x13
	}
	d := &font.Drawer{Face: face}
	return d.MeasureString(text).Ceil()
}

// drawIcon overlays a PNG weapon icon at (x,y). A missing or unreadable
// icon is skipped rather than failing the whole composition, since the
// icon set is optional decoration.
func drawIcon(dst *image.RGBA, path string, x, y int) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	icon, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return
	}
	r := icon.Bounds().Sub(icon.Bounds().Min).Add(image.Pt(x, y))
	draw.Draw(dst, r, icon, image.Point{}, draw.Over)
}

func drawRoundedRect(dst *image.RGBA, x, y, w, h, radius int, col color.RGBA) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			if !inRoundedRect(dx, dy, w, h, radius) {
				continue
			}
			dst.Set(x+dx, y+dy, col)
		}
	}
}

func inRoundedRect(dx, dy, w, h, r int) bool {
	switch {
	case dx < r && dy < r:
		return withinCircle(dx, dy, r, r, r)
	case dx >= w-r && dy < r:
		return withinCircle(dx, dy, w-r-1, r, r)
	case dx < r && dy >= h-r:
		return withinCircle(dx, dy, r, h-r-1, r)
	case dx >= w-r && dy >= h-r:
		return withinCircle(dx, dy, w-r-1, h-r-1, r)
	default:
		return true
	}
}

func withinCircle(x, y, cx, cy, r int) bool {
	ddx := float64(x - cx)
	ddy := float64(y - cy)
	return math.Sqrt(ddx*ddx+ddy*ddy) <= float64(r)
}
