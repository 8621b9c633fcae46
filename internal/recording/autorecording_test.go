package recording

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/domain/frame"
	"github.com/saw4405/splat-replay/internal/domain/model"
)

type powerOffOnlyAnalyzer struct {
	stubAnalyzer
	powerOff bool
}

func (a powerOffOnlyAnalyzer) DetectPowerOff(frame.Frame) bool { return a.powerOff }

// stubAnalyzer satisfies recording.Analyzer with every query returning a
// harmless zero value, so tests only need to override what they exercise.
type stubAnalyzer struct{}

func (stubAnalyzer) DetectPowerOff(frame.Frame) bool                            { return false }
func (stubAnalyzer) DetectMatchingStart(frame.Frame) bool                       { return false }
func (stubAnalyzer) DetectSessionStart(frame.Frame, model.GameMode) bool        { return false }
func (stubAnalyzer) DetectSessionAbort(frame.Frame) bool                        { return false }
func (stubAnalyzer) DetectSessionFinish(frame.Frame) bool                       { return false }
func (stubAnalyzer) DetectLoading(frame.Frame) bool                             { return false }
func (stubAnalyzer) DetectLoadingEnd(frame.Frame) bool                          { return false }
func (stubAnalyzer) DetectSessionResult(frame.Frame) bool                       { return false }
func (stubAnalyzer) DetectSessionJudgement(frame.Frame) bool                    { return false }
func (stubAnalyzer) DetectCommunicationError(frame.Frame) bool                  { return false }
func (stubAnalyzer) DetectScheduleChange(frame.Frame) bool                      { return false }
func (stubAnalyzer) ExtractGameMode(frame.Frame) (model.GameMode, bool)         { return "", false }
func (stubAnalyzer) ExtractRate(frame.Frame) (model.Rate, bool)                 { return model.Rate{}, false }
func (stubAnalyzer) ExtractSessionJudgement(frame.Frame) (model.Judgement, bool) {
	return model.JudgementUnknown, false
}
func (stubAnalyzer) ExtractSessionResult(frame.Frame, model.GameMode) (model.Result, bool) {
	return model.Result{}, false
}

type fakeFrameSource struct{ f frame.Frame }

func (s fakeFrameSource) GetLatest() (frame.Frame, bool) { return s.f, true }

type noopRecorder struct{}

func (noopRecorder) Setup(context.Context) error    { return nil }
func (noopRecorder) Teardown(context.Context) error { return nil }
func (noopRecorder) Start(context.Context) error    { return nil }
func (noopRecorder) Pause(context.Context) error    { return nil }
func (noopRecorder) Resume(context.Context) error   { return nil }
func (noopRecorder) Stop(context.Context) (string, *string, error) {
	return "video.mkv", nil, nil
}

func TestAutoRecordingUseCaseStopsOnFinalPowerOff(t *testing.T) {
	eb := bus.NewEventBus()
	sub := eb.Subscribe("recording.power_off_detected")

	analyzer := powerOffOnlyAnalyzer{powerOff: true}
	session := NewSession(NewStateMachine(), noopRecorder{}, analyzer, nil, eb)
	handlers := NewPhaseHandlers(analyzer, nil)
	frames := fakeFrameSource{f: frame.New(2, 2, make([]byte, 2*2*3))}

	uc := NewAutoRecordingUseCase(session, handlers, analyzer, nil, frames, eb, nil)
	clock := &fakeClock{}
	uc.now = clock.now

	done := make(chan struct{})
	var poweredOff bool
	go func() {
		poweredOff, _ = uc.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("use case did not stop on power off")
	}

	assert.True(t, poweredOff)
	events := sub.Poll(10)
	require.NotEmpty(t, events)
}

// fakeClock advances ten seconds per call so six samples cross the
// powerOffSampleInterval threshold without the test sleeping in real time.
type fakeClock struct{ n int }

func (c *fakeClock) now() time.Time {
	c.n++
	return time.Unix(0, 0).Add(time.Duration(c.n) * powerOffSampleInterval)
}
