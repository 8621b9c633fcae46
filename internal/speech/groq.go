package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/saw4405/splat-replay/internal/apperr"
)

const groqTranscriptionURL = "https://api.groq.com/openai/v1/audio/transcriptions"

// GroqRecognizer implements Recognizer against Groq's Whisper transcription
// endpoint, grounded on the original's IntegratedSpeechRecognizer (which
// also calls Groq, there via the groq Python SDK for both transcription and
// a reconciliation chat completion). No Groq Go SDK exists in this
// codebase's dependency pack, so this talks to the REST endpoint directly
// with net/http — the original's second stage, reconciling Google's and
// Groq's transcripts through an LLM call against a custom dictionary, is
// not reproduced here: with only one transcription engine wired, there is
// nothing to reconcile.
type GroqRecognizer struct {
	apiKey           string
	model            string
	language         string
	transcriptionURL string
	httpClient       *http.Client
}

// NewGroqRecognizer builds a GroqRecognizer. model and language mirror the
// original's SpeechTranscriberSettings.model/.language (e.g.
// "whisper-large-v3-turbo", "ja-JP").
func NewGroqRecognizer(apiKey, model, language string) *GroqRecognizer {
	return newGroqRecognizer(apiKey, model, language, groqTranscriptionURL)
}

func newGroqRecognizer(apiKey, model, language, transcriptionURL string) *GroqRecognizer {
	return &GroqRecognizer{
		apiKey:           apiKey,
		model:            model,
		language:         language,
		transcriptionURL: transcriptionURL,
		httpClient:       &http.Client{Timeout: 30 * time.Second},
	}
}

type groqTranscriptionResponse struct {
	Text string `json:"text"`
}

// Recognize uploads clip.Data as a WAV file and returns Groq's transcript,
// or "" if Groq judged the clip silent/unintelligible.
func (r *GroqRecognizer) Recognize(ctx context.Context, clip AudioClip) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "clip.wav")
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "音声クリップのエンコードに失敗しました", err)
	}
	if _, err := part.Write(clip.Data); err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "音声クリップのエンコードに失敗しました", err)
	}
	_ = writer.WriteField("model", r.model)
	if r.language != "" {
		_ = writer.WriteField("language", strings.SplitN(r.language, "-", 2)[0])
	}
	if err := writer.Close(); err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "音声クリップのエンコードに失敗しました", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.transcriptionURL, body)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "Groq リクエストの構築に失敗しました", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.KindDevice, "Groq への接続に失敗しました", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperr.New(apperr.KindDevice, fmt.Sprintf("Groq が異常応答を返しました: %s", resp.Status))
	}

	var parsed groqTranscriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "Groq 応答の解析に失敗しました", err)
	}
	return strings.TrimSpace(parsed.Text), nil
}
