package speech

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/domain/events"
)

const testPoll = 5 * time.Millisecond

type fakeMicrophone struct {
	clips chan AudioClip
}

func newFakeMicrophone() *fakeMicrophone { return &fakeMicrophone{clips: make(chan AudioClip, 8)} }

func (m *fakeMicrophone) Listen(ctx context.Context) (<-chan AudioClip, error) {
	return m.clips, nil
}

type fakeRecognizer struct {
	text string
}

func (r fakeRecognizer) Recognize(context.Context, AudioClip) (string, error) { return r.text, nil }

type fakeSubtitleStore struct {
	mu    sync.Mutex
	saved map[string]string
}

func newFakeSubtitleStore() *fakeSubtitleStore {
	return &fakeSubtitleStore{saved: map[string]string{}}
}

func (s *fakeSubtitleStore) SaveSubtitle(videoPath, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[videoPath] = content
	return nil
}

func (s *fakeSubtitleStore) get(videoPath string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.saved[videoPath]
	return v, ok
}

func TestTranscriberSavesSubtitleOnStop(t *testing.T) {
	eb := bus.NewEventBus()
	mic := newFakeMicrophone()
	store := newFakeSubtitleStore()
	tr := newTranscriber(eb, mic, fakeRecognizer{text: "ナイス！"}, store, nil, testPoll)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tr.Run(ctx)

	eb.Publish(events.NewRecordingStarted("session-1", "BATTLE", ""))

	require.Eventually(t, func() bool {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		return tr.listening
	}, time.Second, testPoll)

	mic.clips <- AudioClip{Data: []byte("pcm"), StartSeconds: 1, EndSeconds: 2}

	eb.Publish(events.NewRecordingStopped("session-1", "clip.mkv", 10))

	require.Eventually(t, func() bool {
		_, ok := store.get("clip.mkv")
		return ok
	}, time.Second, testPoll)

	content, _ := store.get("clip.mkv")
	assert.Contains(t, content, "ナイス！")
}

func TestTranscriberDiscardsEntriesOnCancel(t *testing.T) {
	eb := bus.NewEventBus()
	mic := newFakeMicrophone()
	store := newFakeSubtitleStore()
	tr := newTranscriber(eb, mic, fakeRecognizer{text: "やられた"}, store, nil, testPoll)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tr.Run(ctx)

	eb.Publish(events.NewRecordingStarted("session-1", "BATTLE", ""))
	require.Eventually(t, func() bool {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		return tr.listening
	}, time.Second, testPoll)

	mic.clips <- AudioClip{Data: []byte("pcm"), StartSeconds: 1, EndSeconds: 2}
	time.Sleep(5 * testPoll)

	eb.Publish(events.NewRecordingCancelled("session-1", "user cancelled"))
	time.Sleep(5 * testPoll)

	tr.mu.Lock()
	assert.False(t, tr.listening)
	assert.Empty(t, tr.entries)
	tr.mu.Unlock()
	assert.Len(t, store.saved, 0)
}

func TestTranscriberSkipsEmptyRecognitions(t *testing.T) {
	eb := bus.NewEventBus()
	mic := newFakeMicrophone()
	store := newFakeSubtitleStore()
	tr := newTranscriber(eb, mic, fakeRecognizer{text: ""}, store, nil, testPoll)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tr.Run(ctx)

	eb.Publish(events.NewRecordingStarted("session-1", "BATTLE", ""))
	require.Eventually(t, func() bool {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		return tr.listening
	}, time.Second, testPoll)

	mic.clips <- AudioClip{Data: []byte("pcm"), StartSeconds: 1, EndSeconds: 2}
	time.Sleep(5 * testPoll)

	eb.Publish(events.NewRecordingStopped("session-1", "clip.mkv", 10))
	time.Sleep(10 * testPoll)

	assert.Len(t, store.saved, 0)
}
