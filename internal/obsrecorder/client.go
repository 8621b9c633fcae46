// Package obsrecorder implements internal/recording.Recorder against OBS
// Studio's WebSocket v5 protocol, the same control surface the original
// system drives through its websocket_client.py adapter.
package obsrecorder

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/saw4405/splat-replay/internal/apperr"
)

// opcode values from the OBS WebSocket v5 protocol.
const (
	opHello           = 0
	opIdentify        = 1
	opIdentified      = 2
	opEvent           = 5
	opRequest         = 6
	opRequestResponse = 7
)

type envelope struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
}

type helloData struct {
	Authentication *struct {
		Challenge string `json:"challenge"`
		Salt      string `json:"salt"`
	} `json:"authentication"`
}

type identifyData struct {
	RPCVersion         int    `json:"rpcVersion"`
	Authentication     string `json:"authentication,omitempty"`
	EventSubscriptions int    `json:"eventSubscriptions"`
}

type requestData struct {
	RequestType string          `json:"requestType"`
	RequestID   string          `json:"requestId"`
	RequestData json.RawMessage `json:"requestData,omitempty"`
}

type requestStatus struct {
	Result bool   `json:"result"`
	Code   int    `json:"code"`
	Comment string `json:"comment"`
}

type responseData struct {
	RequestType   string          `json:"requestType"`
	RequestID     string          `json:"requestId"`
	RequestStatus requestStatus   `json:"requestStatus"`
	ResponseData  json.RawMessage `json:"responseData,omitempty"`
}

type eventData struct {
	EventType string          `json:"eventType"`
	EventData json.RawMessage `json:"eventData,omitempty"`
}

// Client is a minimal OBS WebSocket v5 client: handshake, request/response
// correlation by requestId, and dispatch of OBS events to a single OnEvent
// callback — enough to drive recording start/pause/resume/stop.
type Client struct {
	url      string
	password string

	mu       sync.Mutex
	conn     *websocket.Conn
	pending  map[string]chan responseData
	requestN int

	onEvent func(eventType string, data json.RawMessage)
}

// OnEvent registers the callback invoked for every OBS event envelope
// (e.g. "RecordStateChanged"), mirroring register_event_callback.
func (c *Client) OnEvent(fn func(eventType string, data json.RawMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvent = fn
}

// NewClient builds a client for the OBS WebSocket server at host:port.
func NewClient(host string, port int, password string) *Client {
	return &Client{
		url:      fmt.Sprintf("ws://%s:%d", host, port),
		password: password,
		pending:  make(map[string]chan responseData),
	}
}

// Connect performs the WebSocket handshake and the Hello/Identify exchange.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return apperr.Wrap(apperr.KindDevice, "OBS WebSocket への接続に失敗しました", err)
	}

	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		conn.Close()
		return apperr.Wrap(apperr.KindDevice, "OBS Hello の受信に失敗しました", err)
	}
	var hello helloData
	if err := json.Unmarshal(env.D, &hello); err != nil {
		conn.Close()
		return apperr.Wrap(apperr.KindDevice, "OBS Hello の解析に失敗しました", err)
	}

	identify := identifyData{RPCVersion: 1, EventSubscriptions: eventSubscriptionAll}
	if hello.Authentication != nil {
		identify.Authentication = authString(c.password, hello.Authentication.Salt, hello.Authentication.Challenge)
	}
	if err := sendEnvelope(conn, opIdentify, identify); err != nil {
		conn.Close()
		return err
	}

	if err := conn.ReadJSON(&env); err != nil {
		conn.Close()
		return apperr.Wrap(apperr.KindDevice, "OBS Identified の受信に失敗しました", err)
	}
	if env.Op != opIdentified {
		conn.Close()
		return apperr.New(apperr.KindDevice, "OBS との認証に失敗しました")
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop(conn)
	return nil
}

// Disconnect closes the WebSocket connection.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		switch env.Op {
		case opRequestResponse:
			var resp responseData
			if err := json.Unmarshal(env.D, &resp); err != nil {
				continue
			}
			c.mu.Lock()
			ch, ok := c.pending[resp.RequestID]
			if ok {
				delete(c.pending, resp.RequestID)
			}
			c.mu.Unlock()
			if ok {
				ch <- resp
			}
		case opEvent:
			var ev eventData
			if err := json.Unmarshal(env.D, &ev); err != nil {
				continue
			}
			c.mu.Lock()
			onEvent := c.onEvent
			c.mu.Unlock()
			if onEvent != nil {
				onEvent(ev.EventType, ev.EventData)
			}
		}
	}
}

const requestTimeout = 5 * time.Second

// eventSubscriptionAll sets bits 0-9, the event categories General through
// Vendors, enough to receive RecordStateChanged (Outputs) without opting
// into the high-volume InputVolumeMeters category.
const eventSubscriptionAll = 1023

// Request sends a named OBS request and waits for its matching response.
func (c *Client) Request(ctx context.Context, requestType string) (json.RawMessage, error) {
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return nil, apperr.New(apperr.KindDevice, "OBS に接続されていません")
	}
	c.requestN++
	id := fmt.Sprintf("%d", c.requestN)
	ch := make(chan responseData, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	if err := sendEnvelope(conn, opRequest, requestData{RequestType: requestType, RequestID: id}); err != nil {
		return nil, err
	}

	select {
	case resp := <-ch:
		if !resp.RequestStatus.Result {
			return nil, apperr.New(apperr.KindRecording, fmt.Sprintf("OBS リクエスト %s が失敗しました: %s", requestType, resp.RequestStatus.Comment))
		}
		return resp.ResponseData, nil
	case <-time.After(requestTimeout):
		return nil, apperr.New(apperr.KindRecording, fmt.Sprintf("OBS リクエスト %s がタイムアウトしました", requestType))
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RequestWithData sends a named OBS request carrying requestData and
// decodes the matching response's responseData into out (a pointer),
// the same correlation-by-requestId path Request uses for parameterless
// requests.
func (c *Client) RequestWithData(ctx context.Context, requestType string, params any, out any) error {
	payload, err := json.Marshal(params)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "encode OBS request data", err)
	}

	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return apperr.New(apperr.KindDevice, "OBS に接続されていません")
	}
	c.requestN++
	id := fmt.Sprintf("%d", c.requestN)
	ch := make(chan responseData, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	if err := sendEnvelope(conn, opRequest, requestData{RequestType: requestType, RequestID: id, RequestData: payload}); err != nil {
		return err
	}

	select {
	case resp := <-ch:
		if !resp.RequestStatus.Result {
			return apperr.New(apperr.KindRecording, fmt.Sprintf("OBS リクエスト %s が失敗しました: %s", requestType, resp.RequestStatus.Comment))
		}
		if out == nil || len(resp.ResponseData) == 0 {
			return nil
		}
		return json.Unmarshal(resp.ResponseData, out)
	case <-time.After(requestTimeout):
		return apperr.New(apperr.KindRecording, fmt.Sprintf("OBS リクエスト %s がタイムアウトしました", requestType))
	case <-ctx.Done():
		return ctx.Err()
	}
}

func sendEnvelope(conn *websocket.Conn, op int, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "encode OBS message", err)
	}
	env := envelope{Op: op, D: payload}
	if err := conn.WriteJSON(env); err != nil {
		return apperr.Wrap(apperr.KindDevice, "send OBS message", err)
	}
	return nil
}

// authString implements OBS WebSocket v5's auth scheme:
// base64(sha256(base64(sha256(password+salt)) + challenge)).
func authString(password, salt, challenge string) string {
	secretHash := sha256.Sum256([]byte(password + salt))
	secretB64 := base64.StdEncoding.EncodeToString(secretHash[:])
	authHash := sha256.Sum256([]byte(secretB64 + challenge))
	return base64.StdEncoding.EncodeToString(authHash[:])
}
