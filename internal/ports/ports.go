// Package ports defines the external-boundary interfaces spec components
// F (recorder), K (auto-editor), and L (auto-uploader) are specified
// against. Concrete adapters live in internal/obsrecorder, internal/editor,
// and internal/uploader; application code depends only on these
// interfaces so a test double can stand in for real hardware/services.
package ports

import (
	"context"

	"github.com/saw4405/splat-replay/internal/domain/model"
)

// Capture is the capture-device lifecycle (spec §5: "capture read may
// block briefly; the producer wakes at capture-device rate").
type Capture interface {
	Setup(ctx context.Context) error
	Teardown(ctx context.Context) error
}

// EditGroup is one group of source clips the editor port concatenates
// into a single edited asset (spec §4.K step 1).
type EditGroup struct {
	GameMode      model.GameMode
	VideoPaths    []string
	SubtitlePaths []*string
	Metadata      model.RecordingMetadata
	Screenshots   [][]byte
}

// EditResult is what the editor port produces for one group, before
// title/description/chapter templating and container embedding.
type EditResult struct {
	VideoPath    string
	SubtitlePath string
	ThumbnailPNG []byte
	Duration     float64
}

// Editor is the video-processing port spec component K drives: clip
// concatenation, subtitle merge, volume adjustment, and container
// embedding. Each method maps to one step of spec §4.K so cancellation
// can be checked between them.
type Editor interface {
	Concatenate(ctx context.Context, videoPaths []string) (string, error)
	MergeSubtitles(ctx context.Context, subtitlePaths []*string, videoPath string) (string, error)
	AdjustVolume(ctx context.Context, videoPath string, multiplier float64) error
	EmbedMetadata(ctx context.Context, videoPath, subtitlePath string, thumbnailPNG []byte, metadata model.RecordingMetadata) error
}

// UploadMetadata is the title/description/tags/privacy/playlist an
// uploader attaches to one video (spec §4.L step 1).
type UploadMetadata struct {
	Title       string
	Description string
	Tags        []string
	Privacy     string
	PlaylistID  string
	CaptionLang string
	CaptionName string
}

// Uploader is the external video-platform port spec component L drives.
type Uploader interface {
	Upload(ctx context.Context, videoPath string, meta UploadMetadata) (videoID string, err error)
	UploadCaption(ctx context.Context, videoID, subtitlePath, lang, name string) error
	UploadThumbnail(ctx context.Context, videoID string, thumbnailPNG []byte) error
	AddToPlaylist(ctx context.Context, videoID, playlistID string) error
}
