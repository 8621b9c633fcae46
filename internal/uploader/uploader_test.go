package uploader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/domain/model"
	"github.com/saw4405/splat-replay/internal/ports"
	"github.com/saw4405/splat-replay/internal/progress"
)

type fakeAssets struct {
	videos  []model.VideoAsset
	deleted []string
}

func (f *fakeAssets) ListEdited() ([]model.VideoAsset, error) { return f.videos, nil }
func (f *fakeAssets) GetSubtitle(string) (string, bool)       { return "", false }
func (f *fakeAssets) GetThumbnail(string) ([]byte, bool)      { return nil, false }
func (f *fakeAssets) DeleteEdited(videoPath string) error {
	f.deleted = append(f.deleted, videoPath)
	return nil
}

type fakeUploader struct {
	uploaded []string
	playlist []string
}

func (f *fakeUploader) Upload(_ context.Context, videoPath string, _ ports.UploadMetadata) (string, error) {
	f.uploaded = append(f.uploaded, videoPath)
	return "video-" + videoPath, nil
}
func (f *fakeUploader) UploadCaption(context.Context, string, string, string, string) error { return nil }
func (f *fakeUploader) UploadThumbnail(context.Context, string, []byte) error                { return nil }
func (f *fakeUploader) AddToPlaylist(_ context.Context, _ string, playlistID string) error {
	f.playlist = append(f.playlist, playlistID)
	return nil
}

func TestAutoUploaderUploadsAndDeletesEachEditedVideo(t *testing.T) {
	assets := &fakeAssets{videos: []model.VideoAsset{
		{VideoPath: "/edited/a.mkv", Metadata: &model.RecordingMetadata{GameMode: model.GameModeBattle}},
		{VideoPath: "/edited/b.mkv", Metadata: &model.RecordingMetadata{GameMode: model.GameModeSalmon}},
	}}
	up := &fakeUploader{}
	eb := bus.NewEventBus()
	sub := eb.Subscribe("process.edit_upload_completed")
	reporter := progress.NewReporter(eb)

	u := NewAutoUploader(up, assets, Settings{PlaylistID: "PL1"}, reporter, eb, t.TempDir(), nil)
	require.NoError(t, u.Execute(context.Background()))

	assert.ElementsMatch(t, []string{"/edited/a.mkv", "/edited/b.mkv"}, up.uploaded)
	assert.ElementsMatch(t, []string{"/edited/a.mkv", "/edited/b.mkv"}, assets.deleted)
	assert.Len(t, up.playlist, 2)

	events := sub.Poll(10)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, true, last.Payload["success"])
}

func TestAutoUploaderStopsBetweenItemsWhenCancelled(t *testing.T) {
	assets := &fakeAssets{videos: []model.VideoAsset{
		{VideoPath: "/edited/a.mkv"},
		{VideoPath: "/edited/b.mkv"},
	}}
	up := &fakeUploader{}
	eb := bus.NewEventBus()
	reporter := progress.NewReporter(eb)

	u := NewAutoUploader(up, assets, Settings{}, reporter, eb, t.TempDir(), nil)
	u.RequestCancel()
	require.NoError(t, u.Execute(context.Background()))

	assert.Empty(t, up.uploaded)
	assert.Empty(t, assets.deleted)
}
