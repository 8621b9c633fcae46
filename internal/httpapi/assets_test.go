package httpapi

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saw4405/splat-replay/internal/asset"
	"github.com/saw4405/splat-replay/internal/domain/model"
)

func newTestAssetsHandler(t *testing.T) (*AssetsHandler, *asset.Repository) {
	t.Helper()
	repo := asset.NewRepository(t.TempDir(), nil)
	return NewAssetsHandler(repo), repo
}

func saveSampleRecording(t *testing.T, repo *asset.Repository) model.VideoAsset {
	t.Helper()
	videoPath := filepath.Join(t.TempDir(), "clip.mkv")
	require.NoError(t, os.WriteFile(videoPath, []byte("video"), 0o644))

	started := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	metadata := model.NewRecordingMetadata(model.GameModeBattle).WithStartedAt(&started)
	saved, err := repo.SaveRecording(context.Background(), videoPath, nil, nil, metadata)
	require.NoError(t, err)
	return saved
}

func TestAssetsHandlerListRecordedReturnsSavedAsset(t *testing.T) {
	handler, repo := newTestAssetsHandler(t)
	saveSampleRecording(t, repo)

	out, err := handler.listRecorded(context.Background(), &struct{}{})
	require.NoError(t, err)
	require.Len(t, out.Body.Assets, 1)
	assert.NotEmpty(t, out.Body.Assets[0].ID)
}

func TestAssetsHandlerGetRecordedMetadataRoundTrips(t *testing.T) {
	handler, repo := newTestAssetsHandler(t)
	saved := saveSampleRecording(t, repo)
	id := encodeAssetID(saved.VideoPath)

	out, err := handler.getRecordedMetadata(context.Background(), &assetIDInput{ID: id})
	require.NoError(t, err)
	assert.Equal(t, "BATTLE", out.Body["game_mode"])
}

func TestAssetsHandlerUpdateRecordedMetadataRejectsEmptyBody(t *testing.T) {
	handler, repo := newTestAssetsHandler(t)
	saved := saveSampleRecording(t, repo)
	id := encodeAssetID(saved.VideoPath)

	_, err := handler.updateRecordedMetadata(context.Background(), &updateMetadataInput{ID: id, Body: map[string]string{}})
	assert.Error(t, err)
}

func TestAssetsHandlerDeleteRecordedRemovesAsset(t *testing.T) {
	handler, repo := newTestAssetsHandler(t)
	saved := saveSampleRecording(t, repo)
	id := encodeAssetID(saved.VideoPath)

	_, err := handler.deleteRecorded(context.Background(), &assetIDInput{ID: id})
	require.NoError(t, err)

	assets, err := repo.ListRecordings()
	require.NoError(t, err)
	assert.Empty(t, assets)
}

func TestDecodeAssetIDRejectsMalformedID(t *testing.T) {
	_, err := decodeAssetID("not-valid-base64!!")
	assert.Error(t, err)
}
