package editor

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/image/font"

	"github.com/saw4405/splat-replay/internal/domain/frame"
	"github.com/saw4405/splat-replay/internal/domain/model"
	"github.com/saw4405/splat-replay/internal/ports"
	"github.com/saw4405/splat-replay/internal/progress"
)

// RecordingStore is the subset of asset.Repository the auto-editor reads
// recorded clips from and writes the finished edited asset to.
type RecordingStore interface {
	ListRecordings() ([]model.VideoAsset, error)
	GetSubtitle(videoPath string) (string, bool)
	GetThumbnail(videoPath string) ([]byte, bool)
	DeleteRecording(videoPath string) error
	SaveEdited(videoPath string, metadata model.RecordingMetadata) (model.VideoAsset, error)
}

// Templates fills title/description placeholders from a group's merged
// metadata (spec §4.K step 2e: placeholders are referenced by name, not
// position), rendered via text/template against RecordingMetadata.ToDict.
type Templates struct {
	Title       string
	Description string
}

// DefaultTemplates mirrors the original's default YouTube title/description
// shape: a game-mode/result headline, then one field per line.
func DefaultTemplates() Templates {
	return Templates{
		Title:       "{{.game_mode}} {{.judgement}} {{.started_at}}",
		Description: "{{range $k, $v := .}}{{$k}}: {{$v}}\n{{end}}",
	}
}

// AutoEditorSettings configures the group size limit, volume multiplier,
// thumbnail ROI, and icon directory the auto-editor applies to every group.
type AutoEditorSettings struct {
	MaxGroupSize     int
	VolumeMultiplier float64
	ThumbnailROI     frame.Rect
	IconDir          string
	Templates        Templates
	// FontPath is a TTF/OTF overlay font for thumbnail text (titles and
	// judgements are routinely Japanese). Empty falls back to basicfont.
	FontPath string
}

// AutoEditor groups recorded clips and runs each group through the four
// ports.Editor steps plus thumbnail composition and template filling
// (spec §4.K).
type AutoEditor struct {
	editor   ports.Editor
	assets   RecordingStore
	settings AutoEditorSettings
	progress *progress.Reporter
	logger   *slog.Logger
	font     font.Face

	mu        sync.Mutex
	cancelled bool
}

// NewAutoEditor wires an AutoEditor to its collaborators.
func NewAutoEditor(editor ports.Editor, assets RecordingStore, settings AutoEditorSettings, reporter *progress.Reporter, logger *slog.Logger) *AutoEditor {
	if logger == nil {
		logger = slog.Default()
	}
	if settings.VolumeMultiplier == 0 {
		settings.VolumeMultiplier = 1.0
	}
	if settings.Templates.Title == "" {
		settings.Templates = DefaultTemplates()
	}
	face, err := loadFontFace(settings.FontPath)
	if err != nil {
		logger.Warn("サムネイル用フォントの読み込みに失敗しました", "error", err)
	}
	return &AutoEditor{editor: editor, assets: assets, settings: settings, progress: reporter, logger: logger, font: face}
}

// RequestCancel asks Execute to stop between groups or between a group's
// steps; it does not abort an in-flight ffmpeg invocation.
func (e *AutoEditor) RequestCancel() {
	e.mu.Lock()
	e.cancelled = true
	e.mu.Unlock()
}

func (e *AutoEditor) isCancelled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancelled
}

const editTaskID = "auto_edit"

// groupKey identifies one (gameMode, match, rule, date) bucket.
type groupKey struct {
	gameMode model.GameMode
	match    model.Match
	rule     model.Rule
	date     string
}

// Execute groups every recorded clip and edits each group in turn,
// publishing progress and honoring cancellation between groups and steps.
func (e *AutoEditor) Execute(ctx context.Context) error {
	e.logger.Info("自動編集を開始します")

	recordings, err := e.assets.ListRecordings()
	if err != nil {
		return err
	}
	groups := groupRecordings(recordings, e.settings.MaxGroupSize)

	itemIDs := make([]string, len(groups))
	for i := range groups {
		itemIDs[i] = fmt.Sprintf("group-%d", i)
	}
	e.progress.StartTask(editTaskID, "動画グループ化", len(groups))
	e.progress.InitItems(editTaskID, itemIDs)

	for idx, group := range groups {
		if e.isCancelled() || ctx.Err() != nil {
			e.progress.Finish(editTaskID, false, "自動編集をキャンセルしました")
			return nil
		}
		if err := e.editGroup(ctx, itemIDs[idx], group); err != nil {
			e.progress.ItemFinish(editTaskID, itemIDs[idx], false, err.Error())
			e.logger.Error("グループの編集に失敗しました", "group", itemIDs[idx], "error", err)
			continue
		}
		e.progress.ItemFinish(editTaskID, itemIDs[idx], true, "")
		e.progress.Advance(editTaskID, 1)
	}

	e.progress.Finish(editTaskID, true, "自動編集を完了しました")
	e.logger.Info("自動編集を完了しました")
	return nil
}

func (e *AutoEditor) editGroup(ctx context.Context, itemID string, group []model.VideoAsset) error {
	videoPaths := make([]string, len(group))
	for i, a := range group {
		videoPaths[i] = a.VideoPath
	}

	e.progress.ItemStage(editTaskID, itemID, "concatenate")
	concatPath, err := e.editor.Concatenate(ctx, videoPaths)
	if err != nil {
		return err
	}
	if e.isCancelled() {
		return nil
	}

	e.progress.ItemStage(editTaskID, itemID, "subtitles")
	subtitlePaths := make([]*string, len(group))
	for i, a := range group {
		subtitlePaths[i] = a.SubtitlePath
	}
	subtitlePath, err := e.editor.MergeSubtitles(ctx, subtitlePaths, concatPath)
	if err != nil {
		return err
	}
	if e.isCancelled() {
		return nil
	}

	e.progress.ItemStage(editTaskID, itemID, "volume")
	if err := e.editor.AdjustVolume(ctx, concatPath, e.settings.VolumeMultiplier); err != nil {
		return err
	}
	if e.isCancelled() {
		return nil
	}

	e.progress.ItemStage(editTaskID, itemID, "thumbnail")
	merged := mergeGroupMetadata(group)
	thumb, err := e.composeGroupThumbnail(group, merged)
	if err != nil {
		return err
	}
	if e.isCancelled() {
		return nil
	}

	e.progress.ItemStage(editTaskID, itemID, "embed")
	if err := e.editor.EmbedMetadata(ctx, concatPath, subtitlePath, thumb, merged); err != nil {
		return err
	}

	title, description, err := e.renderTitleAndDescription(merged)
	if err != nil {
		e.logger.Warn("タイトル/説明テンプレートの展開に失敗しました", "error", err)
	} else if err := writeSidecarText(concatPath, title, description); err != nil {
		e.logger.Warn("タイトル/説明の保存に失敗しました", "error", err)
	}

	e.progress.ItemStage(editTaskID, itemID, "save")
	if _, err := e.assets.SaveEdited(concatPath, merged); err != nil {
		return err
	}
	for _, a := range group {
		_ = e.assets.DeleteRecording(a.VideoPath)
	}
	return nil
}

func (e *AutoEditor) composeGroupThumbnail(group []model.VideoAsset, merged model.RecordingMetadata) ([]byte, error) {
	var candidates [][]byte
	for _, a := range group {
		if thumb, ok := e.assets.GetThumbnail(a.VideoPath); ok {
			candidates = append(candidates, thumb)
		}
	}
	return composeThumbnail(candidates, e.settings.ThumbnailROI, e.buildOverlays(merged), e.font)
}

// buildOverlays draws the match judgement as a caption over the chosen
// screenshot, with an optional per-weapon icon loaded from IconDir.
func (e *AutoEditor) buildOverlays(m model.RecordingMetadata) []ThumbnailOverlay {
	if m.Judgement == model.JudgementUnknown {
		return nil
	}
	overlay := ThumbnailOverlay{
		Text:  string(m.Judgement),
		X:     16,
		Y:     32,
		Color: color.RGBA{255, 255, 255, 255},
	}
	if e.settings.IconDir != "" && m.Allies != nil && m.Allies[0] != "" {
		overlay.IconPath = filepath.Join(e.settings.IconDir, m.Allies[0]+".png")
	}
	return []ThumbnailOverlay{overlay}
}

// renderTitleAndDescription fills the configured templates against the
// group's merged metadata.
func (e *AutoEditor) renderTitleAndDescription(m model.RecordingMetadata) (string, string, error) {
	title, err := renderTemplate(e.settings.Templates.Title, m)
	if err != nil {
		return "", "", err
	}
	description, err := renderTemplate(e.settings.Templates.Description, m)
	if err != nil {
		return "", "", err
	}
	return title, description, nil
}

// writeSidecarText saves the rendered title/description next to the edited
// video so a later upload step can use them instead of deriving defaults.
func writeSidecarText(videoPath, title, description string) error {
	path := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".title.txt"
	content := title + "\n\n" + description
	return os.WriteFile(path, []byte(content), 0o644)
}

// renderTemplate fills a text/template string against metadata.ToDict(), so
// placeholders are referenced by field name rather than position.
func renderTemplate(tmpl string, metadata model.RecordingMetadata) (string, error) {
	t, err := template.New("edit").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	if err := t.Execute(&buf, metadata.ToDict()); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// groupRecordings buckets recordings by (gameMode, match, rule, date),
// splitting any bucket exceeding maxSize into multiple same-key groups so
// no single edited video grows unbounded (spec §4.K step 1).
func groupRecordings(recordings []model.VideoAsset, maxSize int) [][]model.VideoAsset {
	if maxSize <= 0 {
		maxSize = 8
	}
	buckets := map[groupKey][]model.VideoAsset{}
	var order []groupKey
	for _, a := range recordings {
		k := keyOf(a)
		if _, seen := buckets[k]; !seen {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], a)
	}

	var groups [][]model.VideoAsset
	for _, k := range order {
		items := buckets[k]
		sort.Slice(items, func(i, j int) bool { return items[i].VideoPath < items[j].VideoPath })
		for len(items) > 0 {
			n := maxSize
			if n > len(items) {
				n = len(items)
			}
			groups = append(groups, items[:n])
			items = items[n:]
		}
	}
	return groups
}

func keyOf(a model.VideoAsset) groupKey {
	k := groupKey{gameMode: model.GameModeBattle}
	if a.Metadata == nil {
		return k
	}
	m := *a.Metadata
	k.gameMode = m.GameMode
	if m.Result.Present && m.Result.Battle != nil {
		k.match = m.Result.Battle.Match
		k.rule = m.Result.Battle.Rule
	}
	if m.StartedAt != nil {
		k.date = m.StartedAt.Format("2006-01-02")
	}
	return k
}

// mergeGroupMetadata folds a group's per-clip metadata into one value for
// the concatenated video: game mode/match/rule/date come from the first
// clip (grouping already guarantees they agree); kill/death/special sum
// across clips.
func mergeGroupMetadata(group []model.VideoAsset) model.RecordingMetadata {
	if len(group) == 0 || group[0].Metadata == nil {
		return model.NewRecordingMetadata(model.GameModeBattle)
	}
	merged := *group[0].Metadata
	if merged.Result.Present && merged.Result.Battle != nil {
		total := *merged.Result.Battle
		for _, a := range group[1:] {
			if a.Metadata == nil || !a.Metadata.Result.Present || a.Metadata.Result.Battle == nil {
				continue
			}
			total.Kill += a.Metadata.Result.Battle.Kill
			total.Death += a.Metadata.Result.Battle.Death
			total.Special += a.Metadata.Result.Battle.Special
		}
		merged.Result.Battle = &total
	}
	return merged
}
