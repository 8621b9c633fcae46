package speech

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/domain/events"
)

// defaultPollInterval is how often Run drains its event subscription,
// matching the cadence internal/process.AutoProcess polls at.
const defaultPollInterval = 1 * time.Second

// SubtitleStore persists the finished session's subtitle sidecar, keyed by
// the video it belongs to.
type SubtitleStore interface {
	SaveSubtitle(videoPath, content string) error
}

// Transcriber subscribes to the recording session lifecycle and, for each
// session, streams microphone audio through a Recognizer, accumulating
// timestamped entries that become an SRT sidecar the moment the session
// stops. A session that is cancelled discards its accumulated entries,
// since spec.md's recording.cancelled means no asset is ever saved for it.
type Transcriber struct {
	eventBus   *bus.EventBus
	sub        *bus.Subscription
	mic        Microphone
	recognizer Recognizer
	store      SubtitleStore
	logger     *slog.Logger

	mu           sync.Mutex
	listening    bool
	cancelRun    context.CancelFunc
	entries      []Entry
	pollInterval time.Duration
}

// NewTranscriber wires a Transcriber to its collaborators.
func NewTranscriber(eventBus *bus.EventBus, mic Microphone, recognizer Recognizer, store SubtitleStore, logger *slog.Logger) *Transcriber {
	return newTranscriber(eventBus, mic, recognizer, store, logger, defaultPollInterval)
}

func newTranscriber(eventBus *bus.EventBus, mic Microphone, recognizer Recognizer, store SubtitleStore, logger *slog.Logger, poll time.Duration) *Transcriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transcriber{eventBus: eventBus, mic: mic, recognizer: recognizer, store: store, logger: logger, pollInterval: poll}
}

// Run drains the event subscription until ctx is cancelled. Intended to run
// on its own goroutine for the process lifetime, alongside AutoProcess.Run.
func (t *Transcriber) Run(ctx context.Context) {
	t.sub = t.eventBus.Subscribe(events.RecordingStarted, events.RecordingStopped, events.RecordingCancelled)
	defer t.sub.Close()

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.stopListening()
			return
		case <-ticker.C:
			for _, ev := range t.sub.Poll(10) {
				t.handle(ctx, ev)
			}
		}
	}
}

func (t *Transcriber) handle(ctx context.Context, ev bus.Event) {
	switch ev.Type {
	case events.RecordingStarted:
		t.startListening(ctx)
	case events.RecordingStopped:
		t.stopListeningAndSave(ev)
	case events.RecordingCancelled:
		t.stopListening()
	}
}

func (t *Transcriber) startListening(ctx context.Context) {
	t.mu.Lock()
	if t.listening {
		t.mu.Unlock()
		return
	}
	sessionCtx, cancel := context.WithCancel(ctx)
	t.cancelRun = cancel
	t.listening = true
	t.entries = nil
	t.mu.Unlock()

	clips, err := t.mic.Listen(sessionCtx)
	if err != nil {
		t.logger.Error("マイクの待ち受けに失敗しました", "error", err)
		t.stopListening()
		return
	}

	go t.consume(sessionCtx, clips)
}

func (t *Transcriber) consume(ctx context.Context, clips <-chan AudioClip) {
	for {
		t.eventBus.Publish(events.NewSpeechListening())
		select {
		case <-ctx.Done():
			return
		case clip, ok := <-clips:
			if !ok {
				return
			}
			t.recognizeAndRecord(ctx, clip)
		}
	}
}

func (t *Transcriber) recognizeAndRecord(ctx context.Context, clip AudioClip) {
	text, err := t.recognizer.Recognize(ctx, clip)
	if err != nil {
		t.logger.Warn("音声認識に失敗しました", "error", err)
		return
	}
	if text == "" {
		return
	}

	entry := Entry{Text: text, StartSeconds: clip.StartSeconds, EndSeconds: clip.EndSeconds}
	t.mu.Lock()
	t.entries = append(t.entries, entry)
	t.mu.Unlock()

	t.eventBus.Publish(events.NewSpeechRecognized(text, clip.StartSeconds, clip.EndSeconds))
}

func (t *Transcriber) stopListening() []Entry {
	t.mu.Lock()
	if t.cancelRun != nil {
		t.cancelRun()
		t.cancelRun = nil
	}
	t.listening = false
	entries := t.entries
	t.entries = nil
	t.mu.Unlock()
	return entries
}

func (t *Transcriber) stopListeningAndSave(ev bus.Event) {
	entries := t.stopListening()
	if len(entries) == 0 {
		return
	}

	videoPath, _ := ev.Payload["video_asset_id"].(string)
	if videoPath == "" {
		return
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].StartSeconds < entries[j].StartSeconds })
	if err := t.store.SaveSubtitle(videoPath, encodeSRT(entries)); err != nil {
		t.logger.Error("字幕の保存に失敗しました", "error", err)
	}
}
