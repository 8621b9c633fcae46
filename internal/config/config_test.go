package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "splat-replay.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFallsBackToDefaultsWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	v, err := New(filepath.Join(dir, "does-not-exist.toml"))
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.OBS.Host)
	assert.Equal(t, 4455, cfg.OBS.Port)
	assert.Equal(t, "@every 30m", cfg.Setup.RecheckSchedule)
}

func TestLoadReadsFileOverridingDefaults(t *testing.T) {
	path := writeConfigFile(t, `
[obs]
host = "192.168.1.50"
port = 4444
password = "s3cr3t"

[capture]
device_name = "Elgato HD60 X"

[editor]
max_group_size = 5
volume_multiplier = 1.5
`)

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.50", cfg.OBS.Host)
	assert.Equal(t, 4444, cfg.OBS.Port)
	assert.Equal(t, "Elgato HD60 X", cfg.Capture.DeviceName)
	assert.Equal(t, 5, cfg.Editor.MaxGroupSize)
	assert.InDelta(t, 1.5, cfg.Editor.VolumeMultiplier, 0.0001)
}

func TestEnvironmentVariableOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
[obs]
host = "file-host"
`)
	t.Setenv("SPLAT_REPLAY_OBS_HOST", "env-host")

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.OBS.Host)
}

func TestOBSConfigSettingsConversion(t *testing.T) {
	c := OBSConfig{Host: "h", Port: 1, Password: "p"}
	s := c.Settings()
	assert.Equal(t, "h", s.Host)
	assert.Equal(t, 1, s.Port)
	assert.Equal(t, "p", s.Password)
}

func TestEditorConfigSettingsFallsBackToDefaultTemplates(t *testing.T) {
	c := EditorConfig{MaxGroupSize: 3, VolumeMultiplier: 2}
	s := c.Settings()
	assert.Equal(t, 3, s.MaxGroupSize)
	assert.NotEmpty(t, s.Templates.Title)
	assert.NotEmpty(t, s.Templates.Description)
}

func TestEditorConfigSettingsHonorsCustomTemplates(t *testing.T) {
	c := EditorConfig{TitleTemplate: "{{.game_mode}}", DescriptionTemplate: "custom"}
	s := c.Settings()
	assert.Equal(t, "{{.game_mode}}", s.Templates.Title)
	assert.Equal(t, "custom", s.Templates.Description)
}

func TestWatchInvokesCallbackOnFileChange(t *testing.T) {
	path := writeConfigFile(t, `
[obs]
host = "initial"
`)
	v, err := New(path)
	require.NoError(t, err)

	changed := make(chan Config, 1)
	Watch(v, func(cfg Config, err error) {
		if err == nil {
			changed <- cfg
		}
	})

	require.NoError(t, os.WriteFile(path, []byte("[obs]\nhost = \"updated\"\n"), 0o644))

	select {
	case cfg := <-changed:
		assert.Equal(t, "updated", cfg.OBS.Host)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config change notification")
	}
}
