// Package frame defines the immutable capture-frame value type shared by the
// matcher, analyzer, and recording packages.
package frame

import "time"

// Frame is an opaque BGR pixel buffer captured from the NDI source. It is
// immutable once constructed; Clone returns an independent copy so that
// long-lived references (e.g. a result-screen snapshot) are never aliased
// to a buffer the capture producer will overwrite.
type Frame struct {
	Width     int
	Height    int
	Stride    int // bytes per row; may exceed Width*3 if the source pads rows
	Pix       []byte
	Captured  time.Time
	HasCapture bool
}

// New builds a Frame from a tightly packed BGR buffer (Stride == Width*3).
func New(width, height int, pix []byte) Frame {
	return Frame{
		Width:      width,
		Height:     height,
		Stride:     width * 3,
		Pix:        pix,
		Captured:   time.Now(),
		HasCapture: true,
	}
}

// Empty reports whether the frame carries no pixel data.
func (f Frame) Empty() bool {
	return len(f.Pix) == 0 || f.Width == 0 || f.Height == 0
}

// Clone returns a deep copy of the frame's pixel buffer.
func (f Frame) Clone() Frame {
	if f.Empty() {
		return f
	}
	cp := make([]byte, len(f.Pix))
	copy(cp, f.Pix)
	out := f
	out.Pix = cp
	return out
}

// At returns the BGR triple at (x, y). Callers must ensure bounds.
func (f Frame) At(x, y int) (b, g, r byte) {
	off := y*f.Stride + x*3
	return f.Pix[off], f.Pix[off+1], f.Pix[off+2]
}

// Rect is a region of interest within a frame, in pixel coordinates.
type Rect struct {
	X, Y, W, H int
}

// NormalizedRect expresses a ROI as fractions of the frame dimensions,
// resolved against a concrete Frame via Resolve.
type NormalizedRect struct {
	X, Y, W, H float64
}

// Resolve converts a normalized ROI into pixel coordinates for the given
// frame dimensions.
func (n NormalizedRect) Resolve(width, height int) Rect {
	return Rect{
		X: int(n.X * float64(width)),
		Y: int(n.Y * float64(height)),
		W: int(n.W * float64(width)),
		H: int(n.H * float64(height)),
	}
}

// Sub extracts the ROI from the frame as a new tightly packed Frame. The
// rectangle is clamped to the frame's bounds.
func (f Frame) Sub(r Rect) Frame {
	x0, y0 := clamp(r.X, 0, f.Width), clamp(r.Y, 0, f.Height)
	x1, y1 := clamp(r.X+r.W, 0, f.Width), clamp(r.Y+r.H, 0, f.Height)
	if x1 <= x0 || y1 <= y0 {
		return Frame{}
	}
	w, h := x1-x0, y1-y0
	out := make([]byte, w*h*3)
	for row := 0; row < h; row++ {
		srcOff := (y0+row)*f.Stride + x0*3
		dstOff := row * w * 3
		copy(out[dstOff:dstOff+w*3], f.Pix[srcOff:srcOff+w*3])
	}
	return Frame{Width: w, Height: h, Stride: w * 3, Pix: out, Captured: f.Captured, HasCapture: f.HasCapture}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
