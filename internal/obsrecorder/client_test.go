package obsrecorder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOBSServer speaks just enough of the WebSocket v5 protocol to drive
// Client: an unauthenticated Hello/Identify handshake, followed by a
// successful response to every request (StopRecord's carries an outputPath).
func fakeOBSServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		hello, _ := json.Marshal(envelope{Op: opHello, D: json.RawMessage(`{}`)})
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, hello))

		var identifyEnv envelope
		require.NoError(t, conn.ReadJSON(&identifyEnv))

		identified, _ := json.Marshal(envelope{Op: opIdentified, D: json.RawMessage(`{}`)})
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, identified))

		for {
			var env envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			if env.Op != opRequest {
				continue
			}
			var req requestData
			require.NoError(t, json.Unmarshal(env.D, &req))

			var respData json.RawMessage
			if req.RequestType == "StopRecord" {
				respData = json.RawMessage(`{"outputPath":"/tmp/out.mkv"}`)
			}
			resp := responseData{
				RequestType:   req.RequestType,
				RequestID:     req.RequestID,
				RequestStatus: requestStatus{Result: true, Code: 100},
				ResponseData:  respData,
			}
			d, _ := json.Marshal(resp)
			out, _ := json.Marshal(envelope{Op: opRequestResponse, D: d})
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, out))
		}
	}))
}

func dialURL(server *httptest.Server) (string, int) {
	u := strings.TrimPrefix(server.URL, "http://")
	host, port, _ := strings.Cut(u, ":")
	p := 0
	for _, c := range port {
		p = p*10 + int(c-'0')
	}
	return host, p
}

func TestClientConnectAndRequestRoundTrip(t *testing.T) {
	server := fakeOBSServer(t)
	defer server.Close()
	host, port := dialURL(server)

	client := NewClient(host, port, "")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, client.Connect(ctx))
	defer client.Disconnect()

	data, err := client.Request(ctx, "StopRecord")
	require.NoError(t, err)

	var resp stopRecordResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, "/tmp/out.mkv", resp.OutputPath)
}

func TestAuthStringIsDeterministic(t *testing.T) {
	a := authString("secret", "salt123", "challenge456")
	b := authString("secret", "salt123", "challenge456")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, authString("other", "salt123", "challenge456"))
}
