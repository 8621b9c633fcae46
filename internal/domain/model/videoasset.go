package model

// VideoAsset represents a recorded or edited video together with its
// aligned sidecar files. Its identity is VideoPath; sidecars share its
// filename stem (see internal/asset for the stem convention).
type VideoAsset struct {
	VideoPath     string
	SubtitlePath  *string
	ThumbnailPath *string
	Metadata      *RecordingMetadata
}
