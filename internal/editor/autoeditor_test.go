package editor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/domain/model"
	"github.com/saw4405/splat-replay/internal/progress"
)

type fakeRecordingStore struct {
	recordings []model.VideoAsset
	saved      []string
	deleted    []string
	thumbnails map[string][]byte
}

func (f *fakeRecordingStore) ListRecordings() ([]model.VideoAsset, error) { return f.recordings, nil }
func (f *fakeRecordingStore) GetSubtitle(string) (string, bool)           { return "", false }
func (f *fakeRecordingStore) GetThumbnail(videoPath string) ([]byte, bool) {
	data, ok := f.thumbnails[videoPath]
	return data, ok
}
func (f *fakeRecordingStore) DeleteRecording(videoPath string) error {
	f.deleted = append(f.deleted, videoPath)
	return nil
}
func (f *fakeRecordingStore) SaveEdited(videoPath string, _ model.RecordingMetadata) (model.VideoAsset, error) {
	f.saved = append(f.saved, videoPath)
	return model.VideoAsset{VideoPath: videoPath}, nil
}

// tinyPNG encodes a 4x4 solid-color image, standing in for a result-frame
// screenshot sidecar.
func tinyPNG(c color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

type fakeEditor struct {
	concatenated  [][]string
	embeddedThumb []byte
}

func (f *fakeEditor) Concatenate(_ context.Context, videoPaths []string) (string, error) {
	f.concatenated = append(f.concatenated, videoPaths)
	return videoPaths[0] + ".concat.mkv", nil
}
func (f *fakeEditor) MergeSubtitles(_ context.Context, _ []*string, videoPath string) (string, error) {
	return "", nil
}
func (f *fakeEditor) AdjustVolume(context.Context, string, float64) error { return nil }
func (f *fakeEditor) EmbedMetadata(_ context.Context, _ string, _ string, thumbnail []byte, _ model.RecordingMetadata) error {
	f.embeddedThumb = thumbnail
	return nil
}

func asset(path string, mode model.GameMode, match model.Match, rule model.Rule, day string) model.VideoAsset {
	started, _ := time.Parse("2006-01-02", day)
	meta := model.NewRecordingMetadata(mode).
		WithStartedAt(&started).
		WithResult(model.BattleOf(model.BattleResult{Match: match, Rule: rule, Kill: 3, Death: 1}))
	return model.VideoAsset{VideoPath: path, Metadata: &meta}
}

func TestGroupRecordingsBucketsByModeMatchRuleAndDate(t *testing.T) {
	recordings := []model.VideoAsset{
		asset("/rec/a.mkv", model.GameModeBattle, "REGULAR", "TURF_WAR", "2026-07-01"),
		asset("/rec/b.mkv", model.GameModeBattle, "REGULAR", "TURF_WAR", "2026-07-01"),
		asset("/rec/c.mkv", model.GameModeBattle, "BANKARA", "AREA", "2026-07-01"),
		asset("/rec/d.mkv", model.GameModeBattle, "REGULAR", "TURF_WAR", "2026-07-02"),
	}

	groups := groupRecordings(recordings, 8)

	require.Len(t, groups, 3)
	var sizes []int
	for _, g := range groups {
		sizes = append(sizes, len(g))
	}
	assert.ElementsMatch(t, []int{2, 1, 1}, sizes)
}

func TestGroupRecordingsSplitsOversizedBuckets(t *testing.T) {
	recordings := []model.VideoAsset{
		asset("/rec/a.mkv", model.GameModeBattle, "REGULAR", "TURF_WAR", "2026-07-01"),
		asset("/rec/b.mkv", model.GameModeBattle, "REGULAR", "TURF_WAR", "2026-07-01"),
		asset("/rec/c.mkv", model.GameModeBattle, "REGULAR", "TURF_WAR", "2026-07-01"),
	}

	groups := groupRecordings(recordings, 2)

	require.Len(t, groups, 2)
	assert.Len(t, groups[0], 2)
	assert.Len(t, groups[1], 1)
}

func TestMergeGroupMetadataSumsBattleCounters(t *testing.T) {
	group := []model.VideoAsset{
		asset("/rec/a.mkv", model.GameModeBattle, "REGULAR", "TURF_WAR", "2026-07-01"),
		asset("/rec/b.mkv", model.GameModeBattle, "REGULAR", "TURF_WAR", "2026-07-01"),
	}

	merged := mergeGroupMetadata(group)

	require.NotNil(t, merged.Result.Battle)
	assert.Equal(t, 6, merged.Result.Battle.Kill)
	assert.Equal(t, 2, merged.Result.Battle.Death)
}

func TestAutoEditorEditsEachGroupAndDeletesSources(t *testing.T) {
	store := &fakeRecordingStore{recordings: []model.VideoAsset{
		asset("/rec/a.mkv", model.GameModeBattle, "REGULAR", "TURF_WAR", "2026-07-01"),
		asset("/rec/b.mkv", model.GameModeBattle, "REGULAR", "TURF_WAR", "2026-07-01"),
	}}
	fe := &fakeEditor{}
	eb := bus.NewEventBus()
	reporter := progress.NewReporter(eb)

	ae := NewAutoEditor(fe, store, AutoEditorSettings{}, reporter, nil)
	require.NoError(t, ae.Execute(context.Background()))

	assert.Len(t, fe.concatenated, 1)
	assert.ElementsMatch(t, []string{"/rec/a.mkv", "/rec/b.mkv"}, store.deleted)
	assert.Len(t, store.saved, 1)
}

func TestAutoEditorComposesThumbnailFromResultFrameScreenshot(t *testing.T) {
	store := &fakeRecordingStore{
		recordings: []model.VideoAsset{
			asset("/rec/a.mkv", model.GameModeBattle, "REGULAR", "TURF_WAR", "2026-07-01"),
			asset("/rec/b.mkv", model.GameModeBattle, "REGULAR", "TURF_WAR", "2026-07-01"),
		},
		thumbnails: map[string][]byte{
			"/rec/a.mkv": tinyPNG(color.RGBA{R: 10, G: 10, B: 10, A: 255}),
			"/rec/b.mkv": tinyPNG(color.RGBA{R: 250, G: 250, B: 250, A: 255}),
		},
	}
	fe := &fakeEditor{}
	eb := bus.NewEventBus()
	reporter := progress.NewReporter(eb)

	ae := NewAutoEditor(fe, store, AutoEditorSettings{}, reporter, nil)
	require.NoError(t, ae.Execute(context.Background()))

	require.NotEmpty(t, fe.embeddedThumb)
	_, err := png.Decode(bytes.NewReader(fe.embeddedThumb))
	assert.NoError(t, err)
}

func TestAutoEditorStopsBetweenGroupsWhenCancelled(t *testing.T) {
	store := &fakeRecordingStore{recordings: []model.VideoAsset{
		asset("/rec/a.mkv", model.GameModeBattle, "REGULAR", "TURF_WAR", "2026-07-01"),
		asset("/rec/c.mkv", model.GameModeBattle, "BANKARA", "AREA", "2026-07-01"),
	}}
	fe := &fakeEditor{}
	eb := bus.NewEventBus()
	reporter := progress.NewReporter(eb)

	ae := NewAutoEditor(fe, store, AutoEditorSettings{}, reporter, nil)
	ae.RequestCancel()
	require.NoError(t, ae.Execute(context.Background()))

	assert.Empty(t, fe.concatenated)
	assert.Empty(t, store.saved)
}
