package cmd

import (
	"log/slog"

	"github.com/saw4405/splat-replay/internal/analyzer"
	"github.com/saw4405/splat-replay/internal/apperr"
	"github.com/saw4405/splat-replay/internal/asset"
	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/config"
	"github.com/saw4405/splat-replay/internal/editor"
	"github.com/saw4405/splat-replay/internal/matcher"
	"github.com/saw4405/splat-replay/internal/obsrecorder"
	"github.com/saw4405/splat-replay/internal/process"
	"github.com/saw4405/splat-replay/internal/progress"
	"github.com/saw4405/splat-replay/internal/recording"
	"github.com/saw4405/splat-replay/internal/uploader"
	"github.com/saw4405/splat-replay/internal/weapon"
	"github.com/saw4405/splat-replay/internal/youtube"
)

// app bundles the collaborators every subcommand wires a subset of, built
// once from appConfig/logger by newApp. Fields are constructed eagerly
// rather than lazily: every command needs the event bus and asset
// repository at minimum, and the remaining components are cheap to build
// (no network I/O happens until Setup/Execute is called).
type app struct {
	eventBus *bus.EventBus
	assets   *asset.Repository
	reporter *progress.Reporter

	recorder  *obsrecorder.Recorder
	analyzer  *analyzer.Analyzer
	weapons   *weapon.Recognizer
	editorSvc *editor.Editor
	autoEdit  *editor.AutoEditor
}

// newApp wires the collaborators shared across auto/upload/serve, grounded
// on the teacher's runServe: one function building every repository,
// service, and handler from already-loaded configuration.
func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	eventBus := bus.NewEventBus()
	assets := asset.NewRepository(cfg.Storage.BaseDir, eventBus)
	reporter := progress.NewReporter(eventBus)

	matchers, err := matcher.LoadConfig(cfg.Matcher.ConfigPath)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, "load matcher definitions", err)
	}
	rois, err := matcher.LoadROIs(cfg.Matcher.ConfigPath)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, "load matcher ROIs", err)
	}
	ocr := analyzer.NewTesseractOCR("tesseract", "jpn")
	analyzerSvc := analyzer.New(matchers, rois, ocr)

	weapons := weapon.NewRecognizer(rois, cfg.Editor.IconDir)

	recorder := obsrecorder.NewRecorder(cfg.OBS.Settings(), logger, nil)

	editorSvc := editor.NewEditor("ffmpeg", "ffprobe", cfg.Storage.BaseDir, logger)
	autoEdit := editor.NewAutoEditor(editorSvc, assets, cfg.Editor.Settings(), reporter, logger)

	return &app{
		eventBus:  eventBus,
		assets:    assets,
		reporter:  reporter,
		recorder:  recorder,
		analyzer:  analyzerSvc,
		weapons:   weapons,
		editorSvc: editorSvc,
		autoEdit:  autoEdit,
	}, nil
}

// newUploader builds the YouTube-backed AutoUploader from the loaded
// credentials file, returning an error rather than a nil uploader when
// credentials are unreadable: upload/serve genuinely cannot proceed
// without them, unlike the font-load path in internal/editor which has a
// meaningful degraded mode (basicfont) to fall back to.
func newUploader(cfg config.Config, app *app, logger *slog.Logger) (*uploader.AutoUploader, error) {
	creds, err := youtube.LoadCredentials(cfg.Uploader.CredentialsPath)
	if err != nil {
		return nil, err
	}
	yt := youtube.NewUploader(creds)
	return uploader.NewAutoUploader(yt, app.assets, cfg.Uploader.Settings(), app.reporter, app.eventBus, cfg.Storage.BaseDir, logger), nil
}

// newAutoProcess wires the post-session edit/upload/sleep orchestrator.
func newAutoProcess(cfg config.Config, app *app, up *uploader.AutoUploader, logger *slog.Logger) *process.AutoProcess {
	sleeper := process.NewPowerManager(logger)
	settings := process.StaticSettings(cfg.Behavior.Settings())
	return process.NewAutoProcess(app.eventBus, app.assets, app.autoEdit, up, sleeper, settings, logger)
}
