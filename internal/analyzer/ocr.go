package analyzer

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/saw4405/splat-replay/internal/apperr"
	"github.com/saw4405/splat-replay/internal/domain/frame"
)

// OCR recognizes text within a ROI. Only the Extract* queries call it:
// game mode and rate from the STOPPED phase handler, the session judgement
// from the PAUSED one, and the session result from Session.Stop. The
// RECORDING phase handler calls none of them.
type OCR interface {
	Recognize(f frame.Frame) (string, error)
}

const ocrTimeout = 5 * time.Second

// TesseractOCR shells out to the tesseract binary, the same OCR engine the
// original system's setup/health checks verify is installed
// (system_setup_service.py's setup_tesseract). No Go OCR binding exists
// anywhere in the example pack, so invoking the external CLI — exactly as
// the original does — is the grounded choice here rather than introducing
// an unvetted dependency.
type TesseractOCR struct {
	binary string
	lang   string
}

// NewTesseractOCR builds an OCR port invoking the named tesseract binary
// (resolved from PATH, or an absolute path from setup/config) for the
// given language.
func NewTesseractOCR(binary, lang string) *TesseractOCR {
	if binary == "" {
		binary = "tesseract"
	}
	if lang == "" {
		lang = "jpn"
	}
	return &TesseractOCR{binary: binary, lang: lang}
}

func (o *TesseractOCR) Recognize(f frame.Frame) (string, error) {
	tmp, err := os.CreateTemp("", "splat-replay-ocr-*.png")
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "create ocr temp file", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := png.Encode(tmp, frameToImage(f)); err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "encode ocr input", err)
	}
	if err := tmp.Close(); err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "flush ocr input", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ocrTimeout)
	defer cancel()

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, o.binary, tmp.Name(), "stdout", "-l", o.lang, "--psm", "7")
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", apperr.Wrap(apperr.KindDevice, "run tesseract", err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func frameToImage(f frame.Frame) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			b, g, r := f.At(x, y)
			img.Set(x, y, imageColor{r, g, b, 255})
		}
	}
	return img
}

// imageColor is a minimal color.Color implementation avoiding an
// allocation-heavy color.RGBA64 round trip for each pixel.
type imageColor struct {
	r, g, b, a uint8
}

func (c imageColor) RGBA() (r, g, b, a uint32) {
	r = uint32(c.r) * 0x101
	g = uint32(c.g) * 0x101
	b = uint32(c.b) * 0x101
	a = uint32(c.a) * 0x101
	return
}
