package editor

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/saw4405/splat-replay/internal/apperr"
)

// runner shells out to ffmpeg/ffprobe, keeping the last few stderr lines
// around for error messages — the same stderr-capture idiom the teacher's
// ffmpeg.Command uses for its own process diagnostics.
type runner struct {
	ffmpegBinary  string
	ffprobeBinary string
}

func newRunner(ffmpegBinary, ffprobeBinary string) *runner {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	if ffprobeBinary == "" {
		ffprobeBinary = "ffprobe"
	}
	return &runner{ffmpegBinary: ffmpegBinary, ffprobeBinary: ffprobeBinary}
}

const stderrTailLines = 20

func (r *runner) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, r.ffmpegBinary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return apperr.Wrap(apperr.KindInternal, "ffmpeg の実行に失敗しました: "+tail(stderr.String(), stderrTailLines), err)
	}
	return nil
}

// probeDuration returns a video's duration in seconds via ffprobe.
func (r *runner) probeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, r.ffprobeBinary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "ffprobe の実行に失敗しました: "+tail(stderr.String(), stderrTailLines), err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "動画の長さの解析に失敗しました", err)
	}
	return seconds, nil
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
