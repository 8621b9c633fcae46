package obsrecorder

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/saw4405/splat-replay/internal/apperr"
	"github.com/saw4405/splat-replay/internal/recording"
)

// Settings configures the OBS WebSocket connection, translated from the
// original OBSSettings (websocket_host, websocket_port, websocket_password).
type Settings struct {
	Host     string
	Port     int
	Password string
}

const (
	reconnectInitialBackoff = 1 * time.Second
	reconnectMaxBackoff     = 10 * time.Second
	reconnectBackoffFactor  = 1.5
	connectRetries          = 5
)

// Recorder implements recording.Recorder by driving OBS Studio through its
// WebSocket v5 API: StartRecord/PauseRecord/ResumeRecord/StopRecord. It owns
// a reconnect-with-backoff monitor equivalent to the original adapter's
// _monitor_connection loop, so a momentary OBS restart does not require the
// surrounding auto-recording loop to notice or retry.
type Recorder struct {
	settings Settings
	logger   *slog.Logger
	onStatus func(recording.ExternalStatus)

	mu        sync.Mutex
	client    *Client
	connected bool
	cancelRun context.CancelFunc
}

// NewRecorder builds a Recorder for the OBS instance described by settings.
// onStatus, if non-nil, is invoked whenever OBS reports a RecordStateChanged
// event, so the caller can feed it to Session.ReconcileExternalStatus.
func NewRecorder(settings Settings, logger *slog.Logger, onStatus func(recording.ExternalStatus)) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{settings: settings, logger: logger, onStatus: onStatus}
}

// Setup connects to OBS and starts the background reconnect monitor.
func (r *Recorder) Setup(ctx context.Context) error {
	if err := r.connectWithRetries(ctx); err != nil {
		return err
	}

	monitorCtx, cancel := context.WithCancel(context.Background())
	r.mu.Lock()
	r.cancelRun = cancel
	r.mu.Unlock()
	go r.monitorConnection(monitorCtx)
	return nil
}

// Teardown stops the reconnect monitor and disconnects from OBS.
func (r *Recorder) Teardown(ctx context.Context) error {
	r.mu.Lock()
	if r.cancelRun != nil {
		r.cancelRun()
		r.cancelRun = nil
	}
	client := r.client
	r.connected = false
	r.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect()
}

func (r *Recorder) connectWithRetries(ctx context.Context) error {
	var lastErr error
	for attempt := 0; attempt < connectRetries; attempt++ {
		client := NewClient(r.settings.Host, r.settings.Port, r.settings.Password)
		client.OnEvent(r.handleEvent)
		if err := client.Connect(ctx); err != nil {
			lastErr = err
			r.logger.Warn("OBS への接続に失敗しました。再試行します", "attempt", attempt+1, "error", err)
			continue
		}
		r.mu.Lock()
		r.client = client
		r.connected = true
		r.mu.Unlock()
		return nil
	}
	return apperr.Wrap(apperr.KindDevice, "OBS への接続に複数回失敗しました", lastErr)
}

// monitorConnection mirrors _monitor_connection's exponential backoff
// reconnect loop: 1.0s, growing by x1.5 up to a 10s ceiling, until ctx is
// cancelled by Teardown.
func (r *Recorder) monitorConnection(ctx context.Context) {
	backoff := reconnectInitialBackoff
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		r.mu.Lock()
		connected := r.connected
		r.mu.Unlock()
		if connected {
			backoff = reconnectInitialBackoff
			continue
		}

		if err := r.connectWithRetries(ctx); err != nil {
			backoff = time.Duration(float64(backoff) * reconnectBackoffFactor)
			if backoff > reconnectMaxBackoff {
				backoff = reconnectMaxBackoff
			}
			continue
		}
		backoff = reconnectInitialBackoff
	}
}

type recordStateChangedEvent struct {
	OutputActive bool   `json:"outputActive"`
	OutputState  string `json:"outputState"`
}

// handleEvent translates an OBS RecordStateChanged event into the recorder
// status callback the surrounding session reconciles against (spec.md
// line 15's "status callback"). Unrecognized events and states are ignored.
func (r *Recorder) handleEvent(eventType string, data json.RawMessage) {
	if eventType != "RecordStateChanged" || r.onStatus == nil {
		return
	}
	var ev recordStateChangedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		r.logger.Warn("OBS イベントの解析に失敗しました", "event", eventType, "error", err)
		return
	}
	switch ev.OutputState {
	case "OBS_WEBSOCKET_OUTPUT_STARTED":
		r.onStatus(recording.ExternalStarted)
	case "OBS_WEBSOCKET_OUTPUT_PAUSED":
		r.onStatus(recording.ExternalPaused)
	case "OBS_WEBSOCKET_OUTPUT_RESUMED":
		r.onStatus(recording.ExternalResumed)
	case "OBS_WEBSOCKET_OUTPUT_STOPPED":
		r.onStatus(recording.ExternalStopped)
	}
}

// request performs a single OBS request, reconnecting first if the client
// is not currently connected. A failed request marks the client
// disconnected and is not retried.
func (r *Recorder) request(ctx context.Context, requestType string) (json.RawMessage, error) {
	r.mu.Lock()
	client := r.client
	connected := r.connected
	r.mu.Unlock()

	if !connected || client == nil {
		if err := r.connectWithRetries(ctx); err != nil {
			return nil, err
		}
		r.mu.Lock()
		client = r.client
		r.mu.Unlock()
	}

	data, err := client.Request(ctx, requestType)
	if err != nil {
		r.mu.Lock()
		r.connected = false
		r.mu.Unlock()
		return nil, apperr.Wrap(apperr.KindRecording, "OBS リクエストに失敗しました", err)
	}
	return data, nil
}

// Start issues StartRecord.
func (r *Recorder) Start(ctx context.Context) error {
	_, err := r.request(ctx, "StartRecord")
	return err
}

// Pause issues PauseRecord.
func (r *Recorder) Pause(ctx context.Context) error {
	_, err := r.request(ctx, "PauseRecord")
	return err
}

// Resume issues ResumeRecord.
func (r *Recorder) Resume(ctx context.Context) error {
	_, err := r.request(ctx, "ResumeRecord")
	return err
}

type stopRecordResponse struct {
	OutputPath string `json:"outputPath"`
}

// Stop issues StopRecord and returns the finished clip's path. OBS does not
// produce a separate subtitle sidecar, so subtitlePath is always nil; a
// speech-transcribed subtitle is attached later in the editor pipeline.
func (r *Recorder) Stop(ctx context.Context) (string, *string, error) {
	data, err := r.request(ctx, "StopRecord")
	if err != nil {
		return "", nil, err
	}
	var resp stopRecordResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", nil, apperr.Wrap(apperr.KindRecording, "OBS の停止応答の解析に失敗しました", err)
	}
	return resp.OutputPath, nil, nil
}

type inputListResponse struct {
	Inputs []struct {
		InputName string `json:"inputName"`
		InputKind string `json:"inputKind"`
	} `json:"inputs"`
}

// videoCaptureKinds are the OBS input kinds that represent a capture card
// or camera device, as opposed to browser sources, color sources, etc.
var videoCaptureKinds = map[string]bool{
	"dshow_input":      true, // Windows
	"v4l2_input":       true, // Linux
	"av_capture_input": true, // macOS
}

type screenshotRequest struct {
	SourceName  string `json:"sourceName"`
	ImageFormat string `json:"imageFormat"`
	ImageWidth  int    `json:"imageWidth,omitempty"`
	ImageHeight int    `json:"imageHeight,omitempty"`
}

type screenshotResponse struct {
	ImageData string `json:"imageData"`
}

// Screenshot requests a PNG still of sourceName from OBS's
// GetSourceScreenshot and returns the decoded image bytes (stripped of
// the "data:image/png;base64," prefix OBS wraps the payload in), the
// frame-acquisition path recording.Capture/FrameSource need to turn a
// configured OBS input into the frame stream the analyzer polls.
func (r *Recorder) Screenshot(ctx context.Context, sourceName string) ([]byte, error) {
	r.mu.Lock()
	client := r.client
	connected := r.connected
	r.mu.Unlock()

	if !connected || client == nil {
		if err := r.connectWithRetries(ctx); err != nil {
			return nil, err
		}
		r.mu.Lock()
		client = r.client
		r.mu.Unlock()
	}

	var resp screenshotResponse
	params := screenshotRequest{SourceName: sourceName, ImageFormat: "png"}
	if err := client.RequestWithData(ctx, "GetSourceScreenshot", params, &resp); err != nil {
		r.mu.Lock()
		r.connected = false
		r.mu.Unlock()
		return nil, apperr.Wrap(apperr.KindRecording, "OBS のスクリーンショット取得に失敗しました", err)
	}

	const dataURIPrefix = "data:image/png;base64,"
	encoded := strings.TrimPrefix(resp.ImageData, dataURIPrefix)
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRecording, "OBS のスクリーンショットの解析に失敗しました", err)
	}
	return raw, nil
}

// ListDevices returns the names of OBS input sources backed by a capture
// device, for the setup flow to offer the user a device picker.
func (r *Recorder) ListDevices(ctx context.Context) ([]string, error) {
	data, err := r.request(ctx, "GetInputList")
	if err != nil {
		return nil, err
	}
	var resp inputListResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, apperr.Wrap(apperr.KindRecording, "OBS の入力一覧の解析に失敗しました", err)
	}
	names := make([]string, 0, len(resp.Inputs))
	for _, in := range resp.Inputs {
		if videoCaptureKinds[in.InputKind] {
			names = append(names, in.InputName)
		}
	}
	return names, nil
}
