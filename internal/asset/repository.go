package asset

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/saw4405/splat-replay/internal/apperr"
	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/domain/events"
	"github.com/saw4405/splat-replay/internal/domain/model"
)

// recordedSubdir and editedSubdir are the two asset directories under the
// configured base (spec §4.H).
const (
	recordedSubdir = "recorded"
	editedSubdir   = "edited"
)

// defaultVideoExt is used when the caller doesn't specify the source
// container; OBS output is typically .mkv, but .mp4 is accepted too.
const defaultVideoExt = ".mkv"

// Repository persists recorded and edited video assets with their
// srt/png/json sidecars under base/recorded and base/edited, and emits
// asset.* events on every mutating operation except SaveThumbnail, which
// writes the .png sidecar without publishing an event (spec §4.H).
type Repository struct {
	baseDir  string
	ops      fileOperations
	eventBus *bus.EventBus
}

// NewRepository constructs a Repository rooted at baseDir.
func NewRepository(baseDir string, eventBus *bus.EventBus) *Repository {
	return &Repository{baseDir: baseDir, eventBus: eventBus}
}

func (r *Repository) recordedDir() string { return filepath.Join(r.baseDir, recordedSubdir) }
func (r *Repository) editedDir() string   { return filepath.Join(r.baseDir, editedSubdir) }

// SaveRecording moves a finished video clip into recorded/ under its
// generated stem, writes its sidecars, and publishes asset.recorded.saved.
func (r *Repository) SaveRecording(_ context.Context, videoPath string, subtitlePath *string, thumbnailPNG []byte, metadata model.RecordingMetadata) (model.VideoAsset, error) {
	stem, err := GenerateStem(metadata)
	if err != nil {
		return model.VideoAsset{}, err
	}
	ext := filepath.Ext(videoPath)
	if ext == "" {
		ext = defaultVideoExt
	}
	dir := r.recordedDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.VideoAsset{}, apperr.Wrap(apperr.KindInternal, "create recorded directory", err)
	}

	destVideo, destSRT, destThumb, _ := stemToPaths(dir, stem, ext)
	if err := moveFile(videoPath, destVideo); err != nil {
		return model.VideoAsset{}, apperr.Wrap(apperr.KindInternal, "move recorded video", err)
	}

	hasSubtitle := false
	if subtitlePath != nil {
		if err := moveFile(*subtitlePath, destSRT); err == nil {
			hasSubtitle = true
		}
	}

	hasThumbnail := false
	if len(thumbnailPNG) > 0 {
		if err := r.ops.saveThumbnail(destVideo, thumbnailPNG); err == nil {
			hasThumbnail = true
		}
	}

	if err := r.ops.saveMetadata(destVideo, metadata); err != nil {
		return model.VideoAsset{}, apperr.Wrap(apperr.KindInternal, "save metadata", err)
	}

	startedAt := ""
	if metadata.StartedAt != nil {
		startedAt = metadata.StartedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	r.publish(events.NewAssetRecordedSaved(destVideo, hasSubtitle, hasThumbnail, startedAt))

	var sub, thumb *string
	if hasSubtitle {
		sub = &destSRT
	}
	if hasThumbnail {
		thumb = &destThumb
	}
	md := metadata
	return model.VideoAsset{VideoPath: destVideo, SubtitlePath: sub, ThumbnailPath: thumb, Metadata: &md}, nil
}

// GetRecording loads one recorded asset by its video path.
func (r *Repository) GetRecording(videoPath string) (model.VideoAsset, bool) {
	return r.getAsset(videoPath)
}

// ListRecordings lists every recorded asset, sorted by video path.
func (r *Repository) ListRecordings() ([]model.VideoAsset, error) {
	return r.listAssets(r.recordedDir())
}

// DeleteRecording removes a recorded asset and its sidecars, publishing
// asset.recorded.deleted.
func (r *Repository) DeleteRecording(videoPath string) error {
	if err := r.deleteAsset(videoPath); err != nil {
		return err
	}
	r.publish(events.NewAssetRecordedDeleted(videoPath))
	return nil
}

// SaveEdited moves a finished edited video into edited/ and publishes
// asset.edited.saved. The caller is responsible for naming videoPath
// (the auto-editor derives its own title-based filename).
func (r *Repository) SaveEdited(videoPath string, metadata model.RecordingMetadata) (model.VideoAsset, error) {
	dir := r.editedDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.VideoAsset{}, apperr.Wrap(apperr.KindInternal, "create edited directory", err)
	}
	dest := filepath.Join(dir, filepath.Base(videoPath))
	if dest != videoPath {
		if err := moveFile(videoPath, dest); err != nil {
			return model.VideoAsset{}, apperr.Wrap(apperr.KindInternal, "move edited video", err)
		}
	}
	if err := r.ops.saveMetadata(dest, metadata); err != nil {
		return model.VideoAsset{}, apperr.Wrap(apperr.KindInternal, "save metadata", err)
	}
	r.publish(events.NewAssetEditedSaved(dest))
	md := metadata
	return model.VideoAsset{VideoPath: dest, Metadata: &md}, nil
}

// ListEdited lists every edited asset.
func (r *Repository) ListEdited() ([]model.VideoAsset, error) {
	return r.listAssets(r.editedDir())
}

// DeleteEdited removes an edited asset and its sidecars, publishing
// asset.edited.deleted.
func (r *Repository) DeleteEdited(videoPath string) error {
	if err := r.deleteAsset(videoPath); err != nil {
		return err
	}
	r.publish(events.NewAssetEditedDeleted(videoPath))
	return nil
}

// GetSubtitle/SaveSubtitle read and write the .srt sidecar directly,
// publishing asset.recorded.subtitle_updated on save.
func (r *Repository) GetSubtitle(videoPath string) (string, bool) {
	return r.ops.loadSubtitle(videoPath)
}

func (r *Repository) SaveSubtitle(videoPath, content string) error {
	if err := r.ops.saveSubtitle(videoPath, content); err != nil {
		return apperr.Wrap(apperr.KindInternal, "save subtitle", err)
	}
	r.publish(events.NewAssetRecordedSubtitleUpdated(videoPath))
	return nil
}

// GetThumbnail/SaveThumbnail read and write the .png sidecar directly.
func (r *Repository) GetThumbnail(videoPath string) ([]byte, bool) {
	return r.ops.loadThumbnail(videoPath)
}

func (r *Repository) SaveThumbnail(videoPath string, data []byte) error {
	return r.ops.saveThumbnail(videoPath, data)
}

// GetMetadataDict/SaveMetadataDict expose the untyped map flavor required
// by spec §4.H alongside the typed RecordingMetadata flavor used
// internally by SaveRecording.
func (r *Repository) GetMetadataDict(videoPath string) (map[string]string, bool) {
	return r.ops.loadMetadataDict(videoPath)
}

func (r *Repository) SaveMetadataDict(videoPath string, data map[string]string) error {
	metadataPath := sidecarPath(videoPath, ".json")
	if err := os.MkdirAll(filepath.Dir(metadataPath), 0o755); err != nil {
		return apperr.Wrap(apperr.KindInternal, "create metadata directory", err)
	}
	buf, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "encode metadata", err)
	}
	if err := os.WriteFile(metadataPath, buf, 0o644); err != nil {
		return apperr.Wrap(apperr.KindInternal, "write metadata", err)
	}
	r.publish(events.NewAssetRecordedMetadataUpdated(videoPath))
	return nil
}

func (r *Repository) getAsset(videoPath string) (model.VideoAsset, bool) {
	if _, err := os.Stat(videoPath); err != nil {
		return model.VideoAsset{}, false
	}
	asset := model.VideoAsset{VideoPath: videoPath}
	if content, ok := r.ops.loadSubtitle(videoPath); ok {
		asset.SubtitlePath = strPtr(sidecarPath(videoPath, ".srt"))
		_ = content
	}
	if _, ok := r.ops.loadThumbnail(videoPath); ok {
		asset.ThumbnailPath = strPtr(sidecarPath(videoPath, ".png"))
	}
	return asset, true
}

func (r *Repository) listAssets(dir string) ([]model.VideoAsset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.KindInternal, "list assets", err)
	}
	var videos []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".mkv", ".mp4":
			videos = append(videos, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(videos)

	out := make([]model.VideoAsset, 0, len(videos))
	for _, v := range videos {
		if a, ok := r.getAsset(v); ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *Repository) deleteAsset(videoPath string) error {
	if err := os.Remove(videoPath); err != nil && !os.IsNotExist(err) {
		return apperr.Wrap(apperr.KindInternal, "delete video", err)
	}
	r.ops.deleteRelatedFiles(videoPath)
	return nil
}

func (r *Repository) publish(ev bus.Event) {
	if r.eventBus != nil {
		r.eventBus.Publish(ev)
	}
}

func moveFile(src, dst string) error {
	if src == dst {
		return nil
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return err
	}
	return os.Remove(src)
}

func strPtr(s string) *string { return &s }
