package process

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saw4405/splat-replay/internal/bus"
	"github.com/saw4405/splat-replay/internal/domain/events"
	"github.com/saw4405/splat-replay/internal/domain/model"
)

const (
	testGrace = 30 * time.Millisecond
	testFlush = 10 * time.Millisecond
	testPoll  = 5 * time.Millisecond
)

type fakeLister struct{ n int }

func (f fakeLister) ListRecordings() ([]model.VideoAsset, error) {
	return make([]model.VideoAsset, f.n), nil
}

type fakeRunner struct {
	calls int32
	err   error
}

func (f *fakeRunner) Execute(context.Context) error {
	atomic.AddInt32(&f.calls, 1)
	return f.err
}

type fakeSleeper struct{ calls int32 }

func (f *fakeSleeper) Sleep(context.Context) error {
	atomic.AddInt32(&f.calls, 1)
	return nil
}

func newTestAutoProcess(eb *bus.EventBus, lister RecordingLister, editor Editor, uploader Uploader, sleeper Sleeper, settings Settings) *AutoProcess {
	return newAutoProcess(eb, lister, editor, uploader, sleeper, settings, nil, testGrace, testFlush, testPoll)
}

func TestAutoProcessRunsEditUploadAfterFinalPowerOffWhenEnabled(t *testing.T) {
	eb := bus.NewEventBus()
	editor := &fakeRunner{}
	uploader := &fakeRunner{}
	sleeper := &fakeSleeper{}
	settings := StaticSettings(model.BehaviorSettings{EditAfterPowerOff: true})

	ap := newTestAutoProcess(eb, fakeLister{n: 1}, editor, uploader, sleeper, settings)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ap.Run(ctx)

	eb.Publish(events.NewPowerOffDetected(6, 6, true))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&editor.calls) == 1 && atomic.LoadInt32(&uploader.calls) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestAutoProcessSkipsWhenNoRecordings(t *testing.T) {
	eb := bus.NewEventBus()
	editor := &fakeRunner{}
	uploader := &fakeRunner{}
	sleeper := &fakeSleeper{}
	settings := StaticSettings(model.BehaviorSettings{EditAfterPowerOff: true})

	ap := newTestAutoProcess(eb, fakeLister{n: 0}, editor, uploader, sleeper, settings)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ap.Run(ctx)

	eb.Publish(events.NewPowerOffDetected(6, 6, true))
	time.Sleep(10 * testPoll)

	assert.Equal(t, int32(0), atomic.LoadInt32(&editor.calls))
}

func TestAutoProcessIgnoresNonFinalPowerOff(t *testing.T) {
	eb := bus.NewEventBus()
	editor := &fakeRunner{}
	uploader := &fakeRunner{}
	sleeper := &fakeSleeper{}
	settings := StaticSettings(model.BehaviorSettings{EditAfterPowerOff: true})

	ap := newTestAutoProcess(eb, fakeLister{n: 1}, editor, uploader, sleeper, settings)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ap.Run(ctx)

	eb.Publish(events.NewPowerOffDetected(3, 6, false))
	time.Sleep(10 * testPoll)

	assert.Equal(t, int32(0), atomic.LoadInt32(&editor.calls))
}

func TestAutoProcessCancelPendingEditStopsCascade(t *testing.T) {
	eb := bus.NewEventBus()
	editor := &fakeRunner{}
	uploader := &fakeRunner{}
	sleeper := &fakeSleeper{}
	settings := StaticSettings(model.BehaviorSettings{EditAfterPowerOff: true})

	ap := newTestAutoProcess(eb, fakeLister{n: 1}, editor, uploader, sleeper, settings)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ap.Run(ctx)

	eb.Publish(events.NewPowerOffDetected(6, 6, true))
	time.Sleep(2 * testPoll)
	ap.CancelPendingEdit()

	time.Sleep(testGrace + 50*time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&editor.calls))
}

func TestAutoProcessSleepsAfterUploadWhenEnabled(t *testing.T) {
	eb := bus.NewEventBus()
	editor := &fakeRunner{}
	uploader := &fakeRunner{}
	sleeper := &fakeSleeper{}
	settings := StaticSettings(model.BehaviorSettings{EditAfterPowerOff: true, SleepAfterUpload: true})

	ap := newTestAutoProcess(eb, fakeLister{n: 1}, editor, uploader, sleeper, settings)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ap.Run(ctx)

	eb.Publish(events.NewPowerOffDetected(6, 6, true))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&sleeper.calls) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestAutoProcessCancelPendingSleepStopsSuspend(t *testing.T) {
	eb := bus.NewEventBus()
	editor := &fakeRunner{}
	uploader := &fakeRunner{}
	sleeper := &fakeSleeper{}
	settings := StaticSettings(model.BehaviorSettings{EditAfterPowerOff: true, SleepAfterUpload: true})

	ap := newTestAutoProcess(eb, fakeLister{n: 1}, editor, uploader, sleeper, settings)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ap.Run(ctx)

	eb.Publish(events.NewPowerOffDetected(6, 6, true))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&uploader.calls) == 1
	}, time.Second, 5*time.Millisecond)
	ap.CancelPendingSleep()

	time.Sleep(testGrace + 50*time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&sleeper.calls))
}
