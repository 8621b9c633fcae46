package setup

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFakeBinary(t *testing.T, name, output string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake binary scripts are POSIX shell only")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\necho '" + output + "'\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return path
}

func TestPathCheckerReportsInstalledWhenBinaryOnPath(t *testing.T) {
	writeFakeBinary(t, "fake-ffmpeg", "ffmpeg version 6.0")

	checker := newPathChecker("fake-ffmpeg", "-version")
	result := checker.Check(context.Background())

	assert.True(t, result.Installed)
	assert.Equal(t, "ffmpeg version 6.0", result.Version)
	assert.NotEmpty(t, result.InstallationPath)
}

func TestPathCheckerReportsMissingWhenBinaryAbsent(t *testing.T) {
	checker := newPathChecker("definitely-not-a-real-binary", "-version")
	result := checker.Check(context.Background())

	assert.False(t, result.Installed)
	assert.NotEmpty(t, result.ErrorMessage)
}

func TestFirstLineTruncatesMultilineOutput(t *testing.T) {
	assert.Equal(t, "first", firstLine("first\nsecond\nthird"))
	assert.Equal(t, "onlyline", firstLine("onlyline"))
}
