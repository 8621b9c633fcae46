// Package config loads splat-replay's layered runtime settings with Viper,
// following the teacher's internal/config package: defaults registered in
// code, overridden by a TOML file, then by SPLAT_REPLAY_* environment
// variables, then by CLI flags bound in cmd/splat-replay. Matcher
// definitions (matchers.yaml) are a deliberately separate file/loader,
// handled by internal/matcher.LoadConfig rather than this package, per
// spec.md §6's two-file layering.
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/saw4405/splat-replay/internal/apperr"
	"github.com/saw4405/splat-replay/internal/domain/frame"
	"github.com/saw4405/splat-replay/internal/domain/model"
	"github.com/saw4405/splat-replay/internal/editor"
	"github.com/saw4405/splat-replay/internal/logging"
	"github.com/saw4405/splat-replay/internal/obsrecorder"
	"github.com/saw4405/splat-replay/internal/uploader"
)

const envPrefix = "SPLAT_REPLAY"

// Config is the full set of runtime settings splat-replay.toml (plus
// environment and flag overrides) decodes into. Each section has a
// conversion method building the Settings type the owning package
// actually wants, keeping package-specific shapes out of this struct.
type Config struct {
	Capture  CaptureConfig  `mapstructure:"capture"`
	OBS      OBSConfig      `mapstructure:"obs"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Setup    SetupConfig    `mapstructure:"setup"`
	Editor   EditorConfig   `mapstructure:"editor"`
	Uploader UploaderConfig `mapstructure:"uploader"`
	Speech   SpeechConfig   `mapstructure:"speech"`
	Behavior BehaviorConfig `mapstructure:"behavior"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Server   ServerConfig   `mapstructure:"server"`
	Matcher  MatcherConfig  `mapstructure:"matcher"`
}

// CaptureConfig names the capture device a recording session reads from
// (spec.md §6: "capture device name"), checked against the enumerated
// device list by internal/setup's device checker when the setup command
// runs; recording sessions do not check it.
type CaptureConfig struct {
	DeviceName string `mapstructure:"device_name"`
}

// OBSConfig is the OBS WebSocket connection (spec.md §6: "OBS connection").
type OBSConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
}

// Settings builds the obsrecorder.Settings OBSConfig describes.
func (c OBSConfig) Settings() obsrecorder.Settings {
	return obsrecorder.Settings{Host: c.Host, Port: c.Port, Password: c.Password}
}

// StorageConfig names the base directory recorded/edited assets live
// under (spec.md §6: "storage dirs"; spec.md §4.G's recorded/ and
// edited/ subdirectories are fixed relative to this one base).
type StorageConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

// SetupConfig configures the bootstrap verification flow (component N):
// where its persisted SetupState lives and how often it re-checks
// external tool presence while idle.
type SetupConfig struct {
	DatabasePath    string `mapstructure:"database_path"`
	RecheckSchedule string `mapstructure:"recheck_schedule"`
}

// RectConfig is frame.Rect's TOML-friendly shape.
type RectConfig struct {
	X int `mapstructure:"x"`
	Y int `mapstructure:"y"`
	W int `mapstructure:"w"`
	H int `mapstructure:"h"`
}

func (r RectConfig) toRect() frame.Rect {
	return frame.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

// EditorConfig configures the auto-editor (spec.md §6: "editor
// settings"; spec §4.K's grouping size limit, volume multiplier,
// thumbnail ROI, icon directory, title/description templates).
type EditorConfig struct {
	MaxGroupSize        int        `mapstructure:"max_group_size"`
	VolumeMultiplier    float64    `mapstructure:"volume_multiplier"`
	ThumbnailROI        RectConfig `mapstructure:"thumbnail_roi"`
	IconDir             string     `mapstructure:"icon_dir"`
	TitleTemplate       string     `mapstructure:"title_template"`
	DescriptionTemplate string     `mapstructure:"description_template"`
	// FontPath is a TTF/OTF file the thumbnail compositor draws overlay
	// text with; empty falls back to the built-in ASCII-only basicfont.
	FontPath string `mapstructure:"font_path"`
}

// Settings builds the editor.AutoEditorSettings EditorConfig describes,
// falling back to editor.DefaultTemplates for any template left blank.
func (c EditorConfig) Settings() editor.AutoEditorSettings {
	templates := editor.DefaultTemplates()
	if c.TitleTemplate != "" {
		templates.Title = c.TitleTemplate
	}
	if c.DescriptionTemplate != "" {
		templates.Description = c.DescriptionTemplate
	}
	return editor.AutoEditorSettings{
		MaxGroupSize:     c.MaxGroupSize,
		VolumeMultiplier: c.VolumeMultiplier,
		ThumbnailROI:     c.ThumbnailROI.toRect(),
		IconDir:          c.IconDir,
		Templates:        templates,
		FontPath:         c.FontPath,
	}
}

// UploaderConfig configures the YouTube upload step (spec.md §6: "upload
// settings"; spec §4.L's privacy/tags/playlist/caption configuration).
type UploaderConfig struct {
	PrivacyStatus   string   `mapstructure:"privacy_status"`
	Tags            []string `mapstructure:"tags"`
	PlaylistID      string   `mapstructure:"playlist_id"`
	CaptionName     string   `mapstructure:"caption_name"`
	CaptionLang     string   `mapstructure:"caption_lang"`
	CredentialsPath string   `mapstructure:"credentials_path"`
}

// Settings builds the uploader.Settings UploaderConfig describes.
func (c UploaderConfig) Settings() uploader.Settings {
	return uploader.Settings{
		PrivacyStatus: c.PrivacyStatus,
		Tags:          c.Tags,
		PlaylistID:    c.PlaylistID,
		CaptionName:   c.CaptionName,
		CaptionLang:   c.CaptionLang,
	}
}

// SpeechConfig configures the speech transcriber (spec.md §6: "transcriber
// settings"). The cmd/splat-replay wiring does not construct a
// transcriber, so none of these fields, Enabled included, is read there.
type SpeechConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"`
}

// BehaviorConfig configures the auto-process orchestrator's post-session
// automation toggles (spec.md §6: "behavior flags").
type BehaviorConfig struct {
	EditAfterPowerOff bool `mapstructure:"edit_after_power_off"`
	SleepAfterUpload  bool `mapstructure:"sleep_after_upload"`
}

// Settings builds the model.BehaviorSettings BehaviorConfig describes.
func (c BehaviorConfig) Settings() model.BehaviorSettings {
	return model.BehaviorSettings{EditAfterPowerOff: c.EditAfterPowerOff, SleepAfterUpload: c.SleepAfterUpload}
}

// LoggingConfig configures the process-wide logger.
type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// Settings builds the logging.Config LoggingConfig describes.
func (c LoggingConfig) Settings() logging.Config {
	return logging.Config{Level: c.Level, Format: c.Format, AddSource: c.AddSource}
}

// ServerConfig configures the HTTP surface (spec.md §6's REST/SSE API).
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// MatcherConfig points at the independent matchers.yaml file (spec.md §6:
// "a YAML file for matcher definitions"), loaded separately by
// internal/matcher.LoadConfig/LoadROIs rather than through this struct.
type MatcherConfig struct {
	ConfigPath string `mapstructure:"config_path"`
}

// SetDefaults registers this package's defaults on v, mirroring the
// teacher's config.SetDefaults(viper.GetViper()) called from
// cobra.OnInitialize.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("capture.device_name", "")

	v.SetDefault("obs.host", "localhost")
	v.SetDefault("obs.port", 4455)
	v.SetDefault("obs.password", "")

	v.SetDefault("storage.base_dir", "./data")

	v.SetDefault("setup.database_path", "./data/setup.db")
	v.SetDefault("setup.recheck_schedule", "@every 30m")

	v.SetDefault("editor.max_group_size", 10)
	v.SetDefault("editor.volume_multiplier", 1.0)
	v.SetDefault("editor.icon_dir", "./assets/icons")
	v.SetDefault("editor.font_path", "")

	v.SetDefault("uploader.privacy_status", "private")
	v.SetDefault("uploader.caption_lang", "ja")

	v.SetDefault("speech.enabled", false)
	v.SetDefault("speech.model", "whisper-large-v3-turbo")
	v.SetDefault("speech.language", "ja-JP")

	v.SetDefault("behavior.edit_after_power_off", false)
	v.SetDefault("behavior.sleep_after_upload", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8787)

	v.SetDefault("matcher.config_path", "./matchers.yaml")
}

// New builds a *viper.Viper configured the way the teacher's initConfig
// wires cmd/tvarr's: defaults, an optional explicit file path (falling
// back to a name/type search across the working directory, the user's
// home directory, and /etc/splat-replay), then SPLAT_REPLAY_*
// environment variables taking precedence over the file.
func New(explicitPath string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName("splat-replay")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath("/etc/splat-replay")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, apperr.Wrap(apperr.KindConfiguration, "read config file", err)
		}
	}
	return v, nil
}

// Load decodes v's current settings into a Config.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, apperr.Wrap(apperr.KindConfiguration, "decode config", err)
	}
	return cfg, nil
}

// Watch invokes onChange with the freshly decoded Config every time v's
// config file changes on disk, via Viper's fsnotify-backed WatchConfig —
// the same mechanism the teacher wires for its own config reloads. Decode
// errors are logged by the caller's onChange, not swallowed silently; a
// malformed edit simply keeps the last good Config until fixed.
func Watch(v *viper.Viper, onChange func(Config, error)) {
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := Load(v)
		onChange(cfg, err)
	})
	v.WatchConfig()
}
