// Package uploader implements the auto-uploader: it walks every edited
// video asset, uploads it (plus caption/thumbnail/playlist attachment) via
// ports.Uploader, then deletes the local edited copy on success (spec
// §4.L).
package uploader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/domain/events"
	"github.com/saw4405/splat-replay/internal/domain/model"
	"github.com/saw4405/splat-replay/internal/ports"
	"github.com/saw4405/splat-replay/internal/progress"
)

// Settings is the per-upload YouTube configuration (spec component L),
// translated from the original's UploadSettings.
type Settings struct {
	PrivacyStatus string
	Tags          []string
	PlaylistID    string
	CaptionName   string
	CaptionLang   string
}

// AssetStore is the subset of asset.Repository the uploader consumes.
type AssetStore interface {
	ListEdited() ([]model.VideoAsset, error)
	GetSubtitle(videoPath string) (string, bool)
	GetThumbnail(videoPath string) ([]byte, bool)
	DeleteEdited(videoPath string) error
}

const taskID = "auto_upload"

// AutoUploader uploads every edited video asset in turn.
type AutoUploader struct {
	uploader ports.Uploader
	assets   AssetStore
	settings Settings
	progress *progress.Reporter
	eventBus *bus.EventBus
	logger   *slog.Logger
	workDir  string

	mu        sync.Mutex
	cancelled bool
}

// NewAutoUploader wires an AutoUploader to its collaborators.
func NewAutoUploader(uploader ports.Uploader, assets AssetStore, settings Settings, reporter *progress.Reporter, eventBus *bus.EventBus, workDir string, logger *slog.Logger) *AutoUploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoUploader{
		uploader: uploader,
		assets:   assets,
		settings: settings,
		progress: reporter,
		eventBus: eventBus,
		workDir:  workDir,
		logger:   logger,
	}
}

// RequestCancel asks Execute to stop between items; it does not abort an
// upload already in flight.
func (u *AutoUploader) RequestCancel() {
	u.mu.Lock()
	u.cancelled = true
	u.mu.Unlock()
}

func (u *AutoUploader) isCancelled() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.cancelled
}

// Execute uploads every currently-edited video, deleting each from local
// storage once its video upload succeeds. Caption, thumbnail and playlist
// failures are logged and do not prevent the deletion.
func (u *AutoUploader) Execute(ctx context.Context) error {
	u.logger.Info("自動アップロードを開始します")

	videos, err := u.assets.ListEdited()
	if err != nil {
		return err
	}

	itemIDs := make([]string, len(videos))
	for i, v := range videos {
		itemIDs[i] = filepath.Base(v.VideoPath)
	}
	u.progress.StartTask(taskID, "アップロード準備", len(videos))
	u.progress.InitItems(taskID, itemIDs)

	for idx, video := range videos {
		if u.isCancelled() || ctx.Err() != nil {
			u.progress.Finish(taskID, false, "自動アップロードをキャンセルしました")
			u.publishCompleted(false, "自動アップロードをキャンセルしました")
			u.logger.Info("自動アップロードをキャンセルしました")
			return nil
		}

		u.logger.Info("動画アップロード中", "path", video.VideoPath)
		if err := u.uploadOne(ctx, idx, itemIDs[idx], video); err != nil {
			u.progress.ItemFinish(taskID, itemIDs[idx], false, err.Error())
			u.logger.Error("動画アップロードに失敗しました", "path", video.VideoPath, "error", err)
			continue
		}
		u.progress.ItemStage(taskID, itemIDs[idx], "delete")
		if err := u.assets.DeleteEdited(video.VideoPath); err != nil {
			u.logger.Error("アップロード済み動画の削除に失敗しました", "path", video.VideoPath, "error", err)
		}
		u.progress.ItemFinish(taskID, itemIDs[idx], true, "")
		u.progress.Advance(taskID, 1)
	}

	u.progress.Finish(taskID, true, "自動アップロードを完了しました")
	u.publishCompleted(true, "自動アップロードを完了しました")
	u.logger.Info("自動アップロードを完了しました")
	return nil
}

func (u *AutoUploader) uploadOne(ctx context.Context, idx int, itemID string, video model.VideoAsset) error {
	u.progress.ItemStage(taskID, itemID, "collect")

	title, description := describeMetadata(video)
	meta := ports.UploadMetadata{
		Title:       title,
		Description: description,
		Tags:        u.settings.Tags,
		Privacy:     u.settings.PrivacyStatus,
		PlaylistID:  u.settings.PlaylistID,
		CaptionLang: u.settings.CaptionLang,
		CaptionName: u.settings.CaptionName,
	}

	subtitleContent, hasSubtitle := u.assets.GetSubtitle(video.VideoPath)
	var tmpSubtitle string
	if hasSubtitle {
		tmpSubtitle = filepath.Join(u.workDir, itemID+".tmp.srt")
		if err := os.WriteFile(tmpSubtitle, []byte(subtitleContent), 0o644); err != nil {
			return err
		}
		defer os.Remove(tmpSubtitle)
	}

	u.progress.ItemStage(taskID, itemID, "upload")
	videoID, err := u.uploader.Upload(ctx, video.VideoPath, meta)
	if err != nil {
		return err
	}

	if hasSubtitle {
		u.progress.ItemStage(taskID, itemID, "caption")
		if err := u.uploader.UploadCaption(ctx, videoID, tmpSubtitle, u.settings.CaptionLang, u.settings.CaptionName); err != nil {
			u.logger.Error("字幕アップロードに失敗しました", "video_id", videoID, "error", err)
		}
	}

	if thumb, ok := u.assets.GetThumbnail(video.VideoPath); ok {
		u.progress.ItemStage(taskID, itemID, "thumb")
		if err := u.uploader.UploadThumbnail(ctx, videoID, thumb); err != nil {
			u.logger.Error("サムネイルアップロードに失敗しました", "video_id", videoID, "error", err)
		}
	}

	if u.settings.PlaylistID != "" {
		u.progress.ItemStage(taskID, itemID, "playlist")
		if err := u.uploader.AddToPlaylist(ctx, videoID, u.settings.PlaylistID); err != nil {
			u.logger.Error("プレイリスト追加に失敗しました", "video_id", videoID, "error", err)
		}
	}

	return nil
}

func (u *AutoUploader) publishCompleted(success bool, message string) {
	if u.eventBus == nil {
		return
	}
	u.eventBus.Publish(events.NewProcessEditUploadCompleted(success, message, events.TriggerAuto))
}

// describeMetadata builds a YouTube title/description from an edited
// asset's recording metadata, since RecordingMetadata carries match
// results rather than free text.
func describeMetadata(video model.VideoAsset) (string, string) {
	if video.Metadata == nil {
		return filepath.Base(video.VideoPath), ""
	}
	m := *video.Metadata
	title := string(m.GameMode)
	if m.Judgement != model.JudgementUnknown {
		title = fmt.Sprintf("%s %s", title, m.Judgement)
	}
	if m.StartedAt != nil {
		title = fmt.Sprintf("%s %s", title, m.StartedAt.Format("2006-01-02"))
	}

	var lines []string
	for k, v := range m.ToDict() {
		if v == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %v", k, v))
	}
	return title, strings.Join(lines, "\n")
}
