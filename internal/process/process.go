// Package process implements the auto-process orchestrator (spec §4.M):
// it watches for a final power-off, runs the edit→upload cascade, and
// optionally sleeps the host afterward, each step gated by a
// user-cancellable grace period.
package process

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/domain/events"
	"github.com/saw4405/splat-replay/internal/domain/model"
)

// defaultGracePeriod is the user-cancellation window before auto-edit/upload
// and before auto-sleep each begin, matching the original's 15-second
// pending events.
const defaultGracePeriod = 15 * time.Second

// defaultLogFlushDelay is how long Sleep waits after ProcessSleepStarted so
// buffered log output has a chance to reach disk before the host
// suspends, matching the original's asyncio.sleep(3) before
// power_manager.sleep().
const defaultLogFlushDelay = 3 * time.Second

// defaultPollInterval is how often the orchestrator drains its event
// subscription, matching the original's sub.poll() cadence.
const defaultPollInterval = 1 * time.Second

// RecordingLister reports whether any recordings are waiting to be
// edited, gating whether a final power-off should trigger auto-process.
type RecordingLister interface {
	ListRecordings() ([]model.VideoAsset, error)
}

// Editor runs the auto-editor cascade.
type Editor interface {
	Execute(ctx context.Context) error
}

// Uploader runs the auto-uploader cascade.
type Uploader interface {
	Execute(ctx context.Context) error
}

// Sleeper suspends the host.
type Sleeper interface {
	Sleep(ctx context.Context) error
}

// Settings exposes the behavior toggles the orchestrator reads.
type Settings interface {
	Behavior() model.BehaviorSettings
}

type staticSettings model.BehaviorSettings

func (s staticSettings) Behavior() model.BehaviorSettings { return model.BehaviorSettings(s) }

// StaticSettings wraps a fixed BehaviorSettings value as a Settings.
func StaticSettings(b model.BehaviorSettings) Settings { return staticSettings(b) }

// AutoProcess subscribes to power_off_detected, process.edit_upload_completed,
// and process.sleep.pending, and drives the edit→upload→sleep cascade.
type AutoProcess struct {
	eventBus *bus.EventBus
	sub      *bus.Subscription
	recorder RecordingLister
	editor   Editor
	uploader Uploader
	sleeper  Sleeper
	settings Settings
	logger   *slog.Logger

	mu             sync.Mutex
	processing     bool
	editCancelled  bool
	sleepCancelled bool

	gracePeriod   time.Duration
	logFlushDelay time.Duration
	pollInterval  time.Duration
}

// NewAutoProcess wires an AutoProcess to its collaborators, using the
// spec's default 15-second grace periods and 3-second log-flush delay.
func NewAutoProcess(eventBus *bus.EventBus, recorder RecordingLister, editor Editor, uploader Uploader, sleeper Sleeper, settings Settings, logger *slog.Logger) *AutoProcess {
	return newAutoProcess(eventBus, recorder, editor, uploader, sleeper, settings, logger, defaultGracePeriod, defaultLogFlushDelay, defaultPollInterval)
}

func newAutoProcess(eventBus *bus.EventBus, recorder RecordingLister, editor Editor, uploader Uploader, sleeper Sleeper, settings Settings, logger *slog.Logger, grace, flush, poll time.Duration) *AutoProcess {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoProcess{
		eventBus:      eventBus,
		recorder:      recorder,
		editor:        editor,
		uploader:      uploader,
		sleeper:       sleeper,
		settings:      settings,
		logger:        logger,
		gracePeriod:   grace,
		logFlushDelay: flush,
		pollInterval:  poll,
	}
}

// CancelPendingEdit cancels an in-progress edit/upload grace period. The
// flag is cleared whenever a grace period starts, so a cancel made while
// none is pending has no effect.
func (p *AutoProcess) CancelPendingEdit() {
	p.mu.Lock()
	p.editCancelled = true
	p.mu.Unlock()
}

// CancelPendingSleep cancels an in-progress sleep grace period.
func (p *AutoProcess) CancelPendingSleep() {
	p.mu.Lock()
	p.sleepCancelled = true
	p.mu.Unlock()
}

// Run drains the event subscription until ctx is cancelled, dispatching
// each event to its handler. Intended to run on its own goroutine for the
// process lifetime.
func (p *AutoProcess) Run(ctx context.Context) {
	p.sub = p.eventBus.Subscribe(events.PowerOffDetected, events.ProcessEditUploadCompleted, events.ProcessSleepPending)
	defer p.sub.Close()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, ev := range p.sub.Poll(10) {
				p.handle(ctx, ev)
			}
		}
	}
}

func (p *AutoProcess) handle(ctx context.Context, ev bus.Event) {
	switch ev.Type {
	case events.PowerOffDetected:
		p.handlePowerOffDetected(ctx, ev)
	case events.ProcessEditUploadCompleted:
		p.handleEditUploadCompleted(ctx, ev)
	case events.ProcessSleepPending:
		p.handleSleepPending(ctx, ev)
	}
}

func (p *AutoProcess) handlePowerOffDetected(ctx context.Context, ev bus.Event) {
	final, _ := ev.Payload["final"].(bool)
	if !final {
		return
	}
	if !p.settings.Behavior().EditAfterPowerOff {
		return
	}

	p.mu.Lock()
	if p.processing {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	recordings, err := p.recorder.ListRecordings()
	if err != nil {
		p.logger.Error("録画一覧の取得に失敗しました", "error", err)
		return
	}
	if len(recordings) == 0 {
		return
	}

	p.mu.Lock()
	p.editCancelled = false
	p.mu.Unlock()

	p.eventBus.Publish(events.NewProcessPending(p.gracePeriod.Seconds(), "自動編集・アップロードを開始します"))
	go p.awaitEditGracePeriod(ctx)
}

func (p *AutoProcess) awaitEditGracePeriod(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(p.gracePeriod):
	}

	p.mu.Lock()
	cancelled := p.editCancelled
	if !cancelled {
		p.processing = true
	}
	p.mu.Unlock()
	if cancelled {
		p.logger.Info("自動編集・アップロードはキャンセルされました")
		return
	}

	p.startAutoProcess(ctx)
}

func (p *AutoProcess) startAutoProcess(ctx context.Context) {
	p.eventBus.Publish(events.NewProcessStarted())
	p.logger.Info("自動編集・アップロードを開始します")

	success := true
	message := "自動編集・アップロードを完了しました"
	if err := p.editor.Execute(ctx); err != nil {
		success = false
		message = err.Error()
		p.logger.Error("自動編集に失敗しました", "error", err)
	} else if err := p.uploader.Execute(ctx); err != nil {
		success = false
		message = err.Error()
		p.logger.Error("自動アップロードに失敗しました", "error", err)
	}

	p.mu.Lock()
	p.processing = false
	p.mu.Unlock()

	p.eventBus.Publish(events.NewProcessEditUploadCompleted(success, message, events.TriggerAuto))
}

func (p *AutoProcess) handleEditUploadCompleted(ctx context.Context, ev bus.Event) {
	trigger, _ := ev.Payload["trigger"].(string)
	if events.EditUploadTrigger(trigger) != events.TriggerAuto {
		return
	}
	if !p.settings.Behavior().SleepAfterUpload {
		return
	}

	p.mu.Lock()
	p.sleepCancelled = false
	p.mu.Unlock()

	p.eventBus.Publish(events.NewProcessSleepPending(p.gracePeriod.Seconds(), "間もなくスリープします"))
}

func (p *AutoProcess) handleSleepPending(ctx context.Context, ev bus.Event) {
	go p.awaitSleepGracePeriod(ctx)
}

func (p *AutoProcess) awaitSleepGracePeriod(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(p.gracePeriod):
	}

	p.mu.Lock()
	cancelled := p.sleepCancelled
	p.mu.Unlock()
	if cancelled {
		p.logger.Info("スリープはキャンセルされました")
		return
	}

	p.eventBus.Publish(events.NewProcessSleepStarted())
	p.logger.Info("システムをスリープします")

	select {
	case <-ctx.Done():
		return
	case <-time.After(p.logFlushDelay):
	}

	if err := p.sleeper.Sleep(ctx); err != nil {
		p.logger.Error("スリープに失敗しました", "error", err)
	}
}
