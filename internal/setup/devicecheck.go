package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/saw4405/splat-replay/internal/apperr"
)

// DeviceEnumerator lists the names of OBS input sources backed by a video
// capture device (obsrecorder.Recorder.ListDevices satisfies this).
type DeviceEnumerator interface {
	ListDevices(ctx context.Context) ([]string, error)
}

// DeviceChecker probes the configured capture device name against OBS's
// enumerated device list, grounded on the original's
// DeviceChecker.is_connected/wait_for_device_connection.
// Unlike the software/hardware checkers, this is not part of the ordered
// setup step sequence: the setup command calls it once on demand, and no
// recording session consults it before it starts.
type DeviceChecker struct {
	enumerator   DeviceEnumerator
	pollInterval time.Duration
}

const defaultDevicePollInterval = 500 * time.Millisecond

// NewDeviceChecker builds a DeviceChecker over enumerator.
func NewDeviceChecker(enumerator DeviceEnumerator) *DeviceChecker {
	return newDeviceChecker(enumerator, defaultDevicePollInterval)
}

func newDeviceChecker(enumerator DeviceEnumerator, pollInterval time.Duration) *DeviceChecker {
	return &DeviceChecker{enumerator: enumerator, pollInterval: pollInterval}
}

// IsConnected reports whether deviceName appears in OBS's current input
// list, mirroring the original's is_connected.
func (c *DeviceChecker) IsConnected(ctx context.Context, deviceName string) (bool, error) {
	names, err := c.enumerator.ListDevices(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == deviceName {
			return true, nil
		}
	}
	return false, nil
}

// WaitForConnection polls IsConnected, mirroring the original's
// wait_for_device_connection, until deviceName appears or timeout
// elapses (timeout <= 0 waits indefinitely, bounded only by ctx).
func (c *DeviceChecker) WaitForConnection(ctx context.Context, deviceName string, timeout time.Duration) (bool, error) {
	var deadlineC <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadlineC = timer.C
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		connected, err := c.IsConnected(ctx, deviceName)
		if err != nil {
			return false, err
		}
		if connected {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, apperr.Wrap(apperr.KindDevice, fmt.Sprintf("キャプチャデバイス %q の接続待機を中断しました", deviceName), ctx.Err())
		case <-deadlineC:
			return false, nil
		case <-ticker.C:
		}
	}
}
