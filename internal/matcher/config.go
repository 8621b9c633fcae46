package matcher

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/saw4405/splat-replay/internal/apperr"
	"github.com/saw4405/splat-replay/internal/domain/frame"
)

// roiDef mirrors ROI in a YAML-friendly shape; exactly one of Pixel or
// Normalized is expected to be set.
type roiDef struct {
	Pixel      *frame.Rect           `yaml:"pixel,omitempty"`
	Normalized *frame.NormalizedRect `yaml:"normalized,omitempty"`
}

func (r roiDef) toROI() ROI {
	return ROI{Pixel: r.Pixel, Normalized: r.Normalized}
}

// matcherDef is one named entry of matchers.yaml. Kind selects which
// fields below apply; unused fields are ignored.
type matcherDef struct {
	Name      string    `yaml:"name"`
	Kind      string    `yaml:"kind"`
	Image     string    `yaml:"image,omitempty"`
	MaskImage string    `yaml:"mask,omitempty"`
	ROI       roiDef    `yaml:"roi,omitempty"`
	Threshold float64   `yaml:"threshold,omitempty"`
	MaxStdDev float64   `yaml:"max_std_dev,omitempty"`
	MaxValue  float64   `yaml:"max_value,omitempty"`
	MaxDist   float64   `yaml:"max_dist,omitempty"`
	Hash      string    `yaml:"hash,omitempty"`
	RGB       *RGB      `yaml:"rgb,omitempty"`
	HSV       *HSVRange `yaml:"hsv,omitempty"`
	And       []string  `yaml:"and,omitempty"`
	Or        []string  `yaml:"or,omitempty"`
	Not       string    `yaml:"not,omitempty"`
}

// roiEntry names an ROI for extraction queries (spec §4.B's OCR-bearing
// extractors crop a named ROI before recognizing text), independent of
// any matcher.
type roiEntry struct {
	Name string `yaml:"name"`
	ROI  roiDef `yaml:"roi"`
}

// document is the top-level shape of matchers.yaml: a flat list of named
// matcher definitions, leaves first, composites referencing leaves (or
// other composites) by name, plus an independent list of named ROIs for
// OCR cropping.
type document struct {
	Matchers []matcherDef `yaml:"matchers"`
	ROIs     []roiEntry   `yaml:"rois,omitempty"`
}

// LoadROIs reads the same matcher definition file's "rois" section,
// returning the name -> ROI table analyzer.New needs for OCR cropping
// (spec §4.B's extractors crop a named ROI and then run OCR against it).
func LoadROIs(path string) (map[string]ROI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, "read matcher config "+path, err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, "parse matcher config "+path, err)
	}
	out := make(map[string]ROI, len(doc.ROIs))
	for _, e := range doc.ROIs {
		out[e.Name] = e.ROI.toROI()
	}
	return out, nil
}

// LoadConfig reads a matcher definition file and builds every named
// matcher it declares, resolving and/or/not references against matchers
// already defined earlier in the file (forward references are rejected,
// matching the document's intended top-down reading order).
func LoadConfig(path string) (map[string]Matcher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, "read matcher config "+path, err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, "parse matcher config "+path, err)
	}

	dir := filepath.Dir(path)
	out := make(map[string]Matcher, len(doc.Matchers))
	for _, def := range doc.Matchers {
		m, err := buildMatcher(def, dir, out)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindConfiguration, fmt.Sprintf("build matcher %q", def.Name), err)
		}
		out[def.Name] = m
	}
	return out, nil
}

func buildMatcher(def matcherDef, dir string, known map[string]Matcher) (Matcher, error) {
	resolvePath := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	var mask *Mask
	if def.MaskImage != "" {
		m, err := NewMask(resolvePath(def.MaskImage))
		if err != nil {
			return nil, err
		}
		mask = m
	}

	switch def.Kind {
	case "template":
		return NewTemplateMatcher(def.Name, resolvePath(def.Image), def.ROI.toROI(), def.Threshold)
	case "hsv":
		if def.HSV == nil {
			return nil, fmt.Errorf("hsv matcher %q missing hsv range", def.Name)
		}
		return NewHSVMatcher(def.Name, def.ROI.toROI(), mask, *def.HSV, def.Threshold), nil
	case "rgb":
		if def.RGB == nil {
			return nil, fmt.Errorf("rgb matcher %q missing rgb target", def.Name)
		}
		return NewRGBMatcher(def.Name, def.ROI.toROI(), mask, *def.RGB, def.Threshold), nil
	case "hash":
		if def.Hash != "" {
			return NewHashMatcher(def.Name, def.ROI.toROI(), def.Hash), nil
		}
		return NewHashMatcherFromImage(def.Name, resolvePath(def.Image), def.ROI.toROI())
	case "uniform":
		return NewUniformMatcher(def.Name, def.ROI.toROI(), mask, def.MaxStdDev), nil
	case "brightness":
		return NewBrightnessMatcher(def.Name, def.ROI.toROI(), mask, def.MaxValue), nil
	case "edge":
		return NewEdgeMatcher(def.Name, resolvePath(def.Image), def.ROI.toROI(), def.MaxDist)
	case "and":
		branches, err := resolveAll(def.And, def.Name, known)
		if err != nil {
			return nil, err
		}
		return And(def.Name, branches...), nil
	case "or":
		branches, err := resolveAll(def.Or, def.Name, known)
		if err != nil {
			return nil, err
		}
		return Or(def.Name, branches...), nil
	case "not":
		branch, ok := known[def.Not]
		if !ok {
			return nil, fmt.Errorf("matcher %q: undefined reference %q", def.Name, def.Not)
		}
		return Not(def.Name, branch), nil
	default:
		return nil, fmt.Errorf("matcher %q: unknown kind %q", def.Name, def.Kind)
	}
}

func resolveAll(names []string, owner string, known map[string]Matcher) ([]Matcher, error) {
	out := make([]Matcher, 0, len(names))
	for _, n := range names {
		m, ok := known[n]
		if !ok {
			return nil, fmt.Errorf("matcher %q: undefined reference %q", owner, n)
		}
		out = append(out, m)
	}
	return out, nil
}
