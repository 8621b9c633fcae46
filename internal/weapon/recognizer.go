// Package weapon implements the recording.WeaponRecognizer port: matching
// the eight HUD weapon-icon slots (four allies, four enemies) against a
// directory of reference icon images, the same icon set
// editor.AutoEditorSettings.IconDir overlays onto thumbnails.
package weapon

import (
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/saw4405/splat-replay/internal/domain/frame"
	"github.com/saw4405/splat-replay/internal/domain/model"
	"github.com/saw4405/splat-replay/internal/matcher"
	"github.com/saw4405/splat-replay/internal/recording"
)

// Names of the named ROIs matchers.yaml is expected to declare for each
// HUD slot, resolved the same way analyzer's OCR extractors resolve a
// named ROI.
var slotROINames = [2][model.WeaponSlots]string{
	{"weapon_ally_1", "weapon_ally_2", "weapon_ally_3", "weapon_ally_4"},
	{"weapon_enemy_1", "weapon_enemy_2", "weapon_enemy_3", "weapon_enemy_4"},
}

const (
	allySide = 0
	enemySide = 1

	// hudVisibleROI names the ROI checked by HUDVisible: the first ally
	// slot, since all eight slots appear together or not at all.
	hudVisibleROI = "weapon_ally_1"

	matchThreshold = 0.6
)

// Recognizer matches HUD slot crops against a directory of PNG weapon
// icons via normalized cross-correlation, grounded on
// matcher.TemplateMatcher's scoring technique but implemented directly
// here since a slot's ROI differs per position while the candidate icon
// set is shared across all eight.
type Recognizer struct {
	rois    map[string]matcher.ROI
	iconDir string

	mu    sync.Mutex
	icons map[string][]float64 // weapon name -> grayscale reference pixels
	iconW map[string]int
	iconH map[string]int
}

// NewRecognizer builds a Recognizer reading HUD slot ROIs from rois
// (loaded via matcher.LoadROIs against the same matchers.yaml the
// analyzer uses) and weapon icon PNGs from iconDir.
func NewRecognizer(rois map[string]matcher.ROI, iconDir string) *Recognizer {
	return &Recognizer{rois: rois, iconDir: iconDir}
}

// HUDVisible reports whether the weapon HUD ROI resolves to any non-empty
// crop, used to gate the 20-second detection window.
func (r *Recognizer) HUDVisible(f frame.Frame) bool {
	roi, ok := r.rois[hudVisibleROI]
	if !ok {
		return false
	}
	crop := f.Sub(roi.Resolve(f.Width, f.Height))
	return !crop.Empty()
}

// Recognize matches every slot once, returning the best-scoring icon name
// (or "" when nothing clears matchThreshold) and its score per slot.
func (r *Recognizer) Recognize(f frame.Frame) (allies, enemies [model.WeaponSlots]recording.SlotResult) {
	allies = r.recognizeSide(f, allySide)
	enemies = r.recognizeSide(f, enemySide)
	return allies, enemies
}

// RecognizeFinal behaves like Recognize; saveUnmatchedReport additionally
// writes any still-unmatched slot's crop to a temp directory for manual
// inspection, returning that directory's path (or "" if nothing was
// unmatched or the caller didn't ask).
func (r *Recognizer) RecognizeFinal(f frame.Frame, saveUnmatchedReport bool) (allies, enemies [model.WeaponSlots]recording.SlotResult, unmatchedOutputDir string) {
	allies, enemies = r.Recognize(f)
	if !saveUnmatchedReport {
		return allies, enemies, ""
	}

	var toDump []struct {
		side, slot int
		crop       frame.Frame
	}
	for slot := 0; slot < model.WeaponSlots; slot++ {
		if allies[slot].Label == "" {
			toDump = append(toDump, struct {
				side, slot int
				crop       frame.Frame
			}{allySide, slot, r.slotCrop(f, allySide, slot)})
		}
		if enemies[slot].Label == "" {
			toDump = append(toDump, struct {
				side, slot int
				crop       frame.Frame
			}{enemySide, slot, r.slotCrop(f, enemySide, slot)})
		}
	}
	if len(toDump) == 0 {
		return allies, enemies, ""
	}

	dir, err := os.MkdirTemp("", "splat-replay-unmatched-weapons-*")
	if err != nil {
		return allies, enemies, ""
	}
	for _, d := range toDump {
		name := "enemy"
		if d.side == allySide {
			name = "ally"
		}
		path := filepath.Join(dir, name+"_"+strconv.Itoa(d.slot+1)+".png")
		_ = png.Encode(mustCreate(path), frameToImage(d.crop))
	}
	return allies, enemies, dir
}

func (r *Recognizer) recognizeSide(f frame.Frame, side int) [model.WeaponSlots]recording.SlotResult {
	var out [model.WeaponSlots]recording.SlotResult
	for slot := 0; slot < model.WeaponSlots; slot++ {
		crop := r.slotCrop(f, side, slot)
		if crop.Empty() {
			continue
		}
		name, score := r.bestMatch(crop)
		if score >= matchThreshold {
			out[slot] = recording.SlotResult{Label: name, Score: score}
		} else {
			out[slot] = recording.SlotResult{Label: "", Score: score}
		}
	}
	return out
}

func (r *Recognizer) slotCrop(f frame.Frame, side, slot int) frame.Frame {
	roi, ok := r.rois[slotROINames[side][slot]]
	if !ok {
		return frame.Frame{}
	}
	return f.Sub(roi.Resolve(f.Width, f.Height))
}

func (r *Recognizer) bestMatch(crop frame.Frame) (name string, score float64) {
	r.ensureIconsLoaded()

	gray := grayscale(crop)
	for candidate, ref := range r.icons {
		if r.iconW[candidate] != crop.Width || r.iconH[candidate] != crop.Height {
			continue
		}
		s := normalizedCrossCorrelation(gray, ref)
		if s > score {
			score = s
			name = candidate
		}
	}
	return name, score
}

func (r *Recognizer) ensureIconsLoaded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.icons != nil {
		return
	}
	r.icons = map[string][]float64{}
	r.iconW = map[string]int{}
	r.iconH = map[string]int{}
	if r.iconDir == "" {
		return
	}

	entries, err := os.ReadDir(r.iconDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		f, err := os.Open(filepath.Join(r.iconDir, e.Name()))
		if err != nil {
			continue
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			continue
		}
		fr := imageToFrame(img)
		r.icons[name] = grayscale(fr)
		r.iconW[name] = fr.Width
		r.iconH[name] = fr.Height
	}
}

func grayscale(f frame.Frame) []float64 {
	out := make([]float64, f.Width*f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			b, g, rr := f.At(x, y)
			out[y*f.Width+x] = 0.114*float64(b) + 0.587*float64(g) + 0.299*float64(rr)
		}
	}
	return out
}

func normalizedCrossCorrelation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var sumA, sumB float64
	for i := range a {
		sumA += a[i]
		sumB += b[i]
	}
	meanA, meanB := sumA/float64(len(a)), sumB/float64(len(b))

	var num, denA, denB float64
	for i := range a {
		da, db := a[i]-meanA, b[i]-meanB
		num += da * db
		denA += da * da
		denB += db * db
	}
	den := math.Sqrt(denA * denB)
	if den == 0 {
		return 0
	}
	return num / den
}

func imageToFrame(img image.Image) frame.Frame {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pix := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			rr, gg, bb, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			off := (y*w + x) * 3
			pix[off] = byte(bb >> 8)
			pix[off+1] = byte(gg >> 8)
			pix[off+2] = byte(rr >> 8)
		}
	}
	return frame.New(w, h, pix)
}

func frameToImage(f frame.Frame) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			b, g, r := f.At(x, y)
			img.Set(x, y, rgba{r, g, b, 255})
		}
	}
	return img
}

type rgba struct{ R, G, B, A uint8 }

func (c rgba) RGBA() (r, g, b, a uint32) {
	return uint32(c.R) * 0x101, uint32(c.G) * 0x101, uint32(c.B) * 0x101, uint32(c.A) * 0x101
}

func mustCreate(path string) *os.File {
	f, err := os.Create(path)
	if err != nil {
		return os.Stdout
	}
	return f
}
