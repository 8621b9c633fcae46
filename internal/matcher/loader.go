package matcher

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/saw4405/splat-replay/internal/apperr"
	"github.com/saw4405/splat-replay/internal/domain/frame"
)

// loadImage reads a template or mask image as BGR pixels. Paths may contain
// non-ASCII characters (capture folders are named after a player's in-game
// region), so the file is read into memory first and decoded from bytes
// rather than handed to an OS image API that assumes a byte-oriented path
// encoding.
func loadImage(path string) (frame.Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return frame.Frame{}, apperr.Wrap(apperr.KindInternal, "read matcher image "+path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return frame.Frame{}, apperr.Wrap(apperr.KindInternal, "decode matcher image "+path, err)
	}
	return toBGRFrame(img), nil
}

func toBGRFrame(img image.Image) frame.Frame {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pix := make([]byte, w*h*3)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pix[i] = byte(b >> 8)
			pix[i+1] = byte(g >> 8)
			pix[i+2] = byte(r >> 8)
			i += 3
		}
	}
	return frame.New(w, h, pix)
}

// hashFrame returns the hex SHA-1 digest of a frame's pixel buffer, used by
// the hash matcher to compare a ROI against a known-good still image.
func hashFrame(f frame.Frame) string {
	sum := sha1.Sum(f.Pix)
	return hex.EncodeToString(sum[:])
}
