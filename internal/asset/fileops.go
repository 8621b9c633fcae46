package asset

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/saw4405/splat-replay/internal/domain/model"
)

// fileOperations is the shared sidecar read/write logic used by both the
// recorded and edited asset repositories, mirroring asset_file_operations.py.
type fileOperations struct{}

func (fileOperations) saveSubtitle(videoPath, content string) error {
	path := sidecarPath(videoPath, ".srt")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func (fileOperations) loadSubtitle(videoPath string) (string, bool) {
	data, err := os.ReadFile(sidecarPath(videoPath, ".srt"))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (fileOperations) saveThumbnail(videoPath string, data []byte) error {
	path := sidecarPath(videoPath, ".png")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (fileOperations) loadThumbnail(videoPath string) ([]byte, bool) {
	data, err := os.ReadFile(sidecarPath(videoPath, ".png"))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (fileOperations) saveMetadata(videoPath string, metadata model.RecordingMetadata) error {
	path := sidecarPath(videoPath, ".json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(metadata.ToDict(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (fileOperations) loadMetadataDict(videoPath string) (map[string]string, bool) {
	raw, err := os.ReadFile(sidecarPath(videoPath, ".json"))
	if err != nil {
		return nil, false
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, false
	}
	out := make(map[string]string, len(generic))
	for k, v := range generic {
		if v == nil {
			out[k] = ""
			continue
		}
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		b, _ := json.Marshal(v)
		out[k] = string(b)
	}
	return out, true
}

func (fileOperations) deleteRelatedFiles(videoPath string) {
	for _, ext := range []string{".srt", ".png", ".json"} {
		_ = os.Remove(sidecarPath(videoPath, ext))
	}
}

func sidecarPath(videoPath, ext string) string {
	return videoPath[:len(videoPath)-len(filepath.Ext(videoPath))] + ext
}
