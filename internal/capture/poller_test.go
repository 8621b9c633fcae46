package capture

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
)

type fakeScreenshotter struct {
	png []byte
}

func (f *fakeScreenshotter) Screenshot(_ context.Context, _ string) ([]byte, error) {
	return f.png, nil
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{100, 150, 200, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPollerPublishesDecodedFrames(t *testing.T) {
	hub := bus.NewFrameHub()
	p := NewPoller(&fakeScreenshotter{png: samplePNG(t)}, "capture", hub, nil)
	p.pollInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, p.Setup(ctx))
	defer p.Teardown(ctx)

	require.Eventually(t, func() bool {
		_, ok := p.GetLatest()
		return ok
	}, time.Second, 5*time.Millisecond)

	f, ok := p.GetLatest()
	require.True(t, ok)
	assert.Equal(t, 4, f.Width)
	assert.Equal(t, 4, f.Height)
	b, g, r := f.At(0, 0)
	assert.Equal(t, byte(200), b)
	assert.Equal(t, byte(150), g)
	assert.Equal(t, byte(100), r)
}
