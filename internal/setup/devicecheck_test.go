package setup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeviceEnumerator struct {
	names []string
}

func (f *fakeDeviceEnumerator) ListDevices(ctx context.Context) ([]string, error) {
	return f.names, nil
}

func TestDeviceCheckerIsConnectedFindsConfiguredName(t *testing.T) {
	enum := &fakeDeviceEnumerator{names: []string{"Elgato HD60 X", "Webcam"}}
	checker := NewDeviceChecker(enum)

	connected, err := checker.IsConnected(context.Background(), "Elgato HD60 X")
	require.NoError(t, err)
	assert.True(t, connected)

	connected, err = checker.IsConnected(context.Background(), "Missing Device")
	require.NoError(t, err)
	assert.False(t, connected)
}

func TestDeviceCheckerWaitForConnectionReturnsTrueOnceDeviceAppears(t *testing.T) {
	enum := &fakeDeviceEnumerator{names: nil}
	checker := newDeviceChecker(enum, 5*time.Millisecond)

	go func() {
		time.Sleep(20 * time.Millisecond)
		enum.names = []string{"Elgato HD60 X"}
	}()

	connected, err := checker.WaitForConnection(context.Background(), "Elgato HD60 X", time.Second)
	require.NoError(t, err)
	assert.True(t, connected)
}

func TestDeviceCheckerWaitForConnectionTimesOut(t *testing.T) {
	enum := &fakeDeviceEnumerator{names: nil}
	checker := newDeviceChecker(enum, 5*time.Millisecond)

	connected, err := checker.WaitForConnection(context.Background(), "Elgato HD60 X", 30*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, connected)
}
