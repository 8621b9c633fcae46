// Package editor implements the ports.Editor boundary with ffmpeg/ffprobe
// subprocess calls: clip concatenation, subtitle merge, volume adjustment,
// and metadata/subtitle/thumbnail embedding (spec §4.K).
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/saw4405/splat-replay/internal/apperr"
	"github.com/saw4405/splat-replay/internal/domain/model"
)

// Editor implements ports.Editor by shelling out to ffmpeg. One Editor can
// be reused across groups; Concatenate and MergeSubtitles correlate through
// an internal map keyed by the concatenated output path, since
// ports.Editor's MergeSubtitles only receives that path, not the original
// per-clip durations Concatenate already had to probe.
type Editor struct {
	runner  *runner
	workDir string
	logger  *slog.Logger

	mu      sync.Mutex
	offsets map[string][]float64
}

// NewEditor builds an Editor invoking the given ffmpeg/ffprobe binaries,
// writing intermediate files under workDir.
func NewEditor(ffmpegBinary, ffprobeBinary, workDir string, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{
		runner:  newRunner(ffmpegBinary, ffprobeBinary),
		workDir: workDir,
		logger:  logger,
		offsets: make(map[string][]float64),
	}
}

// Concatenate joins videoPaths into a single file via ffmpeg's concat
// demuxer (stream copy, no re-encode) and records each clip's probed
// duration so a later MergeSubtitles call can shift subtitle cues.
func (e *Editor) Concatenate(ctx context.Context, videoPaths []string) (string, error) {
	if len(videoPaths) == 0 {
		return "", apperr.New(apperr.KindValidation, "結合する動画がありません")
	}
	if len(videoPaths) == 1 {
		return videoPaths[0], nil
	}

	durations := make([]float64, len(videoPaths))
	for i, p := range videoPaths {
		d, err := e.runner.probeDuration(ctx, p)
		if err != nil {
			return "", err
		}
		durations[i] = d
	}

	listPath := filepath.Join(e.workDir, fmt.Sprintf("concat-%d.txt", len(videoPaths)))
	var list strings.Builder
	for _, p := range videoPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", apperr.Wrap(apperr.KindInternal, "動画パスの解決に失敗しました", err)
		}
		list.WriteString("file '" + strings.ReplaceAll(abs, "'", "'\\''") + "'\n")
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "結合リストの書き込みに失敗しました", err)
	}
	defer os.Remove(listPath)

	output := filepath.Join(e.workDir, "concat-"+strconv.FormatInt(int64(len(videoPaths)), 10)+filepath.Ext(videoPaths[0]))
	if err := e.runner.run(ctx, "-y", "-f", "concat", "-safe", "0", "-i", listPath, "-c", "copy", output); err != nil {
		return "", err
	}

	e.mu.Lock()
	e.offsets[output] = durations
	e.mu.Unlock()

	return output, nil
}

// MergeSubtitles combines each clip's subtitle sidecar into one track timed
// against videoPath, writing it alongside as a .srt file.
func (e *Editor) MergeSubtitles(ctx context.Context, subtitlePaths []*string, videoPath string) (string, error) {
	e.mu.Lock()
	durations, ok := e.offsets[videoPath]
	delete(e.offsets, videoPath)
	e.mu.Unlock()

	if !ok {
		d, err := e.runner.probeDuration(ctx, videoPath)
		if err != nil {
			return "", err
		}
		durations = make([]float64, len(subtitlePaths))
		for i := range durations {
			durations[i] = d / float64(len(subtitlePaths))
		}
		e.logger.Warn("字幕結合: 個別クリップの長さが不明なため均等割りします", "video", videoPath)
	}

	contents := make([]*string, len(subtitlePaths))
	for i, p := range subtitlePaths {
		if p == nil {
			continue
		}
		data, err := os.ReadFile(*p)
		if err != nil {
			continue
		}
		s := string(data)
		contents[i] = &s
	}

	merged, err := mergeSubtitleSources(contents, durations)
	if err != nil {
		return "", err
	}
	if merged == "" {
		return "", nil
	}

	outPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".srt"
	if err := os.WriteFile(outPath, []byte(merged), 0o644); err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "結合字幕の書き込みに失敗しました", err)
	}
	return outPath, nil
}

// AdjustVolume rewrites videoPath's audio track scaled by multiplier,
// stream-copying video to avoid a re-encode.
func (e *Editor) AdjustVolume(ctx context.Context, videoPath string, multiplier float64) error {
	if multiplier == 1.0 {
		return nil
	}
	tmp := videoPath + ".volume" + filepath.Ext(videoPath)
	if err := e.runner.run(ctx, "-y", "-i", videoPath,
		"-filter:a", fmt.Sprintf("volume=%f", multiplier),
		"-c:v", "copy", tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, videoPath); err != nil {
		return apperr.Wrap(apperr.KindInternal, "音量調整後のファイル置換に失敗しました", err)
	}
	return nil
}

// EmbedMetadata embeds the subtitle track, a thumbnail attached picture,
// and the non-nil RecordingMetadata.ToDict fields as metadata tags into
// videoPath, replacing it in place.
func (e *Editor) EmbedMetadata(ctx context.Context, videoPath, subtitlePath string, thumbnailPNG []byte, metadata model.RecordingMetadata) error {
	args := []string{"-y", "-i", videoPath}

	var thumbPath string
	if len(thumbnailPNG) > 0 {
		thumbPath = videoPath + ".thumb.png"
		if err := os.WriteFile(thumbPath, thumbnailPNG, 0o644); err != nil {
			return apperr.Wrap(apperr.KindInternal, "サムネイルの書き込みに失敗しました", err)
		}
		defer os.Remove(thumbPath)
		args = append(args, "-i", thumbPath)
	}
	hasSubtitle := subtitlePath != ""
	if hasSubtitle {
		args = append(args, "-i", subtitlePath)
	}

	args = append(args, "-map", "0")
	if thumbPath != "" {
		args = append(args, "-map", "1", "-c:v:1", "copy", "-disposition:v:1", "attached_pic")
	}
	if hasSubtitle {
		subStreamIdx := "1"
		if thumbPath != "" {
			subStreamIdx = "2"
		}
		args = append(args, "-map", subStreamIdx, "-c:s", "mov_text")
	}
	args = append(args, "-c:v:0", "copy", "-c:a", "copy")

	for k, v := range metadata.ToDict() {
		if v == nil {
			continue
		}
		args = append(args, "-metadata", fmt.Sprintf("%s=%v", k, v))
	}

	tmp := videoPath + ".meta" + filepath.Ext(videoPath)
	args = append(args, tmp)

	if err := e.runner.run(ctx, args...); err != nil {
		return err
	}
	if err := os.Rename(tmp, videoPath); err != nil {
		return apperr.Wrap(apperr.KindInternal, "メタデータ埋め込み後のファイル置換に失敗しました", err)
	}
	return nil
}
