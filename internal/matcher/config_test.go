package matcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMatcherFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "matchers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadConfigResolvesCompositeReferences(t *testing.T) {
	path := writeMatcherFile(t, `
matchers:
  - name: dark
    kind: brightness
    max_value: 10
  - name: bright
    kind: brightness
    max_value: 250
  - name: either
    kind: or
    or: [dark, bright]
`)

	matchers, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Contains(t, matchers, "dark")
	assert.Contains(t, matchers, "bright")
	assert.Contains(t, matchers, "either")
}

func TestLoadConfigRejectsUndefinedReference(t *testing.T) {
	path := writeMatcherFile(t, `
matchers:
  - name: broken
    kind: not
    not: missing
`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadROIsReadsNamedEntries(t *testing.T) {
	path := writeMatcherFile(t, `
matchers: []
rois:
  - name: game_mode_text
    roi:
      pixel: {x: 10, y: 20, w: 100, h: 30}
  - name: rate_text
    roi:
      normalized: {x: 0.1, y: 0.2, w: 0.3, h: 0.4}
`)

	rois, err := LoadROIs(path)
	require.NoError(t, err)
	require.Contains(t, rois, "game_mode_text")
	require.Contains(t, rois, "rate_text")

	gameMode := rois["game_mode_text"]
	require.NotNil(t, gameMode.Pixel)
	assert.Equal(t, 10, gameMode.Pixel.X)

	rate := rois["rate_text"]
	require.NotNil(t, rate.Normalized)
	assert.InDelta(t, 0.3, rate.Normalized.W, 0.0001)
}

func TestLoadROIsEmptyWhenSectionAbsent(t *testing.T) {
	path := writeMatcherFile(t, `
matchers: []
`)

	rois, err := LoadROIs(path)
	require.NoError(t, err)
	assert.Empty(t, rois)
}
