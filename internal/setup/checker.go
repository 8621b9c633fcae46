// Package setup implements the bootstrap verification flow (spec §12):
// an ordered sequence of hardware and software checks persisted across
// restarts, with a periodic recheck so a step that regresses (ffmpeg
// removed, available memory dropping below the floor) is caught without a
// manual re-run.
package setup

import (
	"context"
	"os"
	"os/exec"
	"time"
)

// SoftwareCheckResult is the outcome of probing one external dependency,
// matching the original's frozen SoftwareCheckResult dataclass.
type SoftwareCheckResult struct {
	Installed         bool
	Version           string
	InstallationPath  string
	ErrorMessage      string
}

// SoftwareChecker probes whether one external program is available.
type SoftwareChecker interface {
	Check(ctx context.Context) SoftwareCheckResult
}

// pathChecker looks a binary up on PATH and runs a version flag, the
// idiomatic Go equivalent of the original's hardcoded
// C:\Program Files\... existence checks — this codebase targets
// whichever OS the capture host runs, not only Windows, so PATH lookup
// generalizes where the original hardcodes install directories.
type pathChecker struct {
	binary      string
	versionFlag string
}

func newPathChecker(binary, versionFlag string) pathChecker {
	return pathChecker{binary: binary, versionFlag: versionFlag}
}

func (c pathChecker) Check(ctx context.Context) SoftwareCheckResult {
	path, err := exec.LookPath(c.binary)
	if err != nil {
		return SoftwareCheckResult{
			Installed:    false,
			ErrorMessage: c.binary + " が見つかりません。PATH を確認してください。",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, c.versionFlag).CombinedOutput()
	if err != nil {
		return SoftwareCheckResult{
			Installed:        false,
			InstallationPath: path,
			ErrorMessage:     c.binary + " の実行確認に失敗しました: " + err.Error(),
		}
	}

	return SoftwareCheckResult{
		Installed:        true,
		Version:          firstLine(string(out)),
		InstallationPath: path,
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

// NewFFmpegChecker probes for ffmpeg on PATH.
func NewFFmpegChecker() SoftwareChecker { return newPathChecker("ffmpeg", "-version") }

// NewTesseractChecker probes for tesseract on PATH.
func NewTesseractChecker() SoftwareChecker { return newPathChecker("tesseract", "--version") }

// NewOBSChecker probes for obs on PATH. This is the only check behind the
// OBS step; DeviceChecker is not part of the step sequence.
func NewOBSChecker() SoftwareChecker { return newPathChecker("obs", "--version") }

// fileExistsChecker is satisfied when a configured file is present on
// disk, used for the font and YouTube-credentials steps where "installed"
// means "the operator dropped the right file in place" rather than a
// PATH-resolvable binary.
type fileExistsChecker struct {
	path        string
	missingHint string
}

func (c fileExistsChecker) Check(_ context.Context) SoftwareCheckResult {
	if c.path == "" {
		return SoftwareCheckResult{Installed: false, ErrorMessage: c.missingHint}
	}
	if _, err := os.Stat(c.path); err != nil {
		return SoftwareCheckResult{Installed: false, ErrorMessage: c.missingHint + ": " + err.Error()}
	}
	return SoftwareCheckResult{Installed: true, InstallationPath: c.path}
}

// NewFontChecker probes for the TTF the thumbnail compositor overlays
// title text with, configured at fontPath. An empty path is reported as
// not installed rather than silently falling back, so the step surfaces
// the missing configuration instead of only being noticed once a
// thumbnail render quietly uses the basicfont fallback.
func NewFontChecker(fontPath string) SoftwareChecker {
	return fileExistsChecker{path: fontPath, missingHint: "フォントファイルが設定されていません"}
}

// NewYouTubeChecker probes for the OAuth credentials file the uploader
// reads (internal/youtube.LoadCredentials), satisfied once the operator
// has completed the consent flow and saved the resulting file.
func NewYouTubeChecker(credentialsPath string) SoftwareChecker {
	return fileExistsChecker{path: credentialsPath, missingHint: "YouTube 認証情報が設定されていません"}
}
