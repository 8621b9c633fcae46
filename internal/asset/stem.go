// Package asset persists recorded and edited video clips together with
// their srt/png/json sidecars, and emits the corresponding asset.* events.
package asset

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/saw4405/splat-replay/internal/apperr"
	"github.com/saw4405/splat-replay/internal/domain/model"
)

// GenerateStem builds the filename stem every sidecar of one asset shares
// (spec §4.H): "YYYYMMDD_HHMMSS_match_rule_judgement_stage" when a battle
// result is available, "YYYYMMDD_HHMMSS" otherwise. Each component that
// may contain path-unsafe characters (stage/rule names carry punctuation
// in some locales) is percent-encoded, preserving uniqueness while
// guaranteeing the result is a safe single path segment — the original's
// literal, unsanitized stem is a defect this module intentionally fixes
// (see design notes, resolved Open Question).
func GenerateStem(metadata model.RecordingMetadata) (string, error) {
	if metadata.StartedAt == nil {
		return "", apperr.Validation("started_at", "metadata must have a started_at timestamp")
	}
	ts := metadata.StartedAt.Format("20060102_150405")

	if metadata.Result.Present && metadata.Result.Battle != nil {
		b := metadata.Result.Battle
		parts := []string{
			ts,
			sanitizeComponent(string(b.Match)),
			sanitizeComponent(string(b.Rule)),
			sanitizeComponent(string(metadata.Judgement)),
			sanitizeComponent(string(b.Stage)),
		}
		return strings.Join(parts, "_"), nil
	}
	return ts, nil
}

// sanitizeComponent percent-encodes any character unsafe in a filesystem
// path segment (path separators, control characters, reserved characters)
// while leaving ordinary ASCII letters/digits/hyphen/underscore untouched,
// so that ASCII stage/rule names remain human-readable and only genuinely
// unsafe runes are escaped.
func sanitizeComponent(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isSafeRune(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteString(url.PathEscape(string(r)))
	}
	return b.String()
}

func isSafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-' || r == '.':
		return true
	default:
		return false
	}
}

// stemToPaths returns the four sidecar paths sharing stem under dir.
func stemToPaths(dir, stem, videoExt string) (video, subtitle, thumbnail, metadataPath string) {
	base := filepath.Join(dir, stem)
	return base + videoExt, base + ".srt", base + ".png", base + ".json"
}
