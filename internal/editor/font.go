package editor

import (
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// thumbnailFontSize is the point size title/description overlays render
// at; large enough to stay legible once downscaled to a video thumbnail.
const thumbnailFontSize = 18

// loadFontFace parses a TTF/OTF file at path into a font.Face, so overlay
// text (game mode, judgement, weapon names — routinely Japanese) renders
// correctly instead of basicfont's ASCII-only glyph set. An empty path or
// a file that fails to parse returns (nil, nil): composeThumbnail treats
// a nil face as "fall back to basicfont" rather than failing the whole
// edit over decorative text rendering.
func loadFontFace(path string) (font.Face, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, nil
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size: thumbnailFontSize,
		DPI:  72,
	})
	if err != nil {
		return nil, nil
	}
	return face, nil
}
