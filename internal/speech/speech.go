// Package speech implements the speech transcriber (spec §4.O): while a
// recording session is active, it listens to microphone audio and
// transcribes it into timestamped subtitle entries, writing an SRT sidecar
// the moment the session stops.
package speech

import (
	"context"
)

// AudioClip is one captured span of microphone audio, offset from the
// start of the current recording session.
type AudioClip struct {
	Data         []byte
	StartSeconds float64
	EndSeconds   float64
}

// Microphone yields one AudioClip per utterance it detects (silence-bounded
// speech segment), until ctx is cancelled. Concrete adapters wrap a
// platform audio-capture library; not provided by this package.
type Microphone interface {
	Listen(ctx context.Context) (<-chan AudioClip, error)
}

// Recognizer turns one audio clip into text, or "" if nothing intelligible
// was said. The original runs Google and Groq speech-to-text concurrently
// and asks an LLM to reconcile the two transcripts against a custom
// dictionary of game-specific vocabulary (weapon/stage names); this
// interface captures that whole reconciled pipeline as one call so the
// transcriber logic here stays engine-agnostic.
type Recognizer interface {
	Recognize(ctx context.Context, clip AudioClip) (string, error)
}

// Entry is one recognized, timestamped line of speech.
type Entry struct {
	Text         string
	StartSeconds float64
	EndSeconds   float64
}
