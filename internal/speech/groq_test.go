package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroqRecognizerParsesTranscript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "  ナイスカンスト！  "})
	}))
	defer srv.Close()

	r := newGroqRecognizer("test-key", "whisper-large-v3-turbo", "ja-JP", srv.URL)
	text, err := r.Recognize(context.Background(), AudioClip{Data: []byte("RIFF....WAVEfmt ")})

	require.NoError(t, err)
	assert.Equal(t, "ナイスカンスト！", text)
}

func TestGroqRecognizerReturnsErrorOnNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	r := newGroqRecognizer("bad-key", "whisper-large-v3-turbo", "ja-JP", srv.URL)
	_, err := r.Recognize(context.Background(), AudioClip{Data: []byte("RIFF....WAVEfmt ")})

	assert.Error(t, err)
}
