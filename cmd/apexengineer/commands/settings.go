package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/apexlabs/apexengineer/pkg/capture"
	"github.com/apexlabs/apexengineer/pkg/cli"
	"github.com/apexlabs/apexengineer/pkg/infer"
	"github.com/apexlabs/apexengineer/pkg/jsontime"
	"github.com/apexlabs/apexengineer/pkg/ptt"
	"github.com/apexlabs/apexengineer/pkg/telemetry"
)

// DefaultSettingsFile is the engineer settings filename inside the base dir.
const DefaultSettingsFile = "engineer.yaml"

// Settings is the engineer.yaml tuning file. Everything has a working
// default; the file only needs the values being changed.
type Settings struct {
	Telemetry TelemetrySettings `yaml:"telemetry,omitempty"`
	PTT       PTTSettings       `yaml:"ptt,omitempty"`
	Capture   CaptureSettings   `yaml:"capture,omitempty"`
	ASR       ASRSettings       `yaml:"asr,omitempty"`
	TTS       TTSSettings       `yaml:"tts,omitempty"`
	Inference InferenceSettings `yaml:"inference,omitempty"`
}

// TelemetrySettings tunes the sampling side.
type TelemetrySettings struct {
	// Addr is the UDP address the game plugin sends datagrams to.
	Addr string `yaml:"addr,omitempty"`

	// Interval is the sampling period.
	Interval jsontime.Duration `yaml:"interval,omitempty"`

	// History is the rolling history capacity in snapshots.
	History int `yaml:"history,omitempty"`

	// Mock forces synthetic telemetry, skipping the UDP feed.
	Mock bool `yaml:"mock,omitempty"`
}

// PTTSettings tunes push-to-talk detection.
type PTTSettings struct {
	Debounce jsontime.Duration `yaml:"debounce,omitempty"`
}

// CaptureSettings bounds voice capture length.
type CaptureSettings struct {
	MinDuration jsontime.Duration `yaml:"min_duration,omitempty"`
	MaxDuration jsontime.Duration `yaml:"max_duration,omitempty"`
}

// ASRSettings selects the transcription provider.
type ASRSettings struct {
	// Provider is "openai" or "ws".
	Provider string `yaml:"provider,omitempty"`

	// Model overrides the provider's default transcription model.
	Model string `yaml:"model,omitempty"`

	// Endpoint is the websocket URL for the ws provider.
	Endpoint string `yaml:"endpoint,omitempty"`
}

// TTSSettings controls spoken responses.
type TTSSettings struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Model   string `yaml:"model,omitempty"`
	Voice   string `yaml:"voice,omitempty"`
}

// InferenceSettings tunes the dispatcher and backend.
type InferenceSettings struct {
	Timeout   jsontime.Duration `yaml:"timeout,omitempty"`
	MaxTokens int64             `yaml:"max_tokens,omitempty"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() *Settings {
	return &Settings{
		Telemetry: TelemetrySettings{
			Addr:     "127.0.0.1:9996",
			Interval: jsontime.Duration(telemetry.DefaultInterval),
			History:  telemetry.DefaultHistorySize,
		},
		PTT: PTTSettings{
			Debounce: jsontime.Duration(ptt.DefaultDebounce),
		},
		Capture: CaptureSettings{
			MinDuration: jsontime.Duration(capture.DefaultMinDuration),
			MaxDuration: jsontime.Duration(capture.DefaultMaxDuration),
		},
		ASR: ASRSettings{
			Provider: "openai",
		},
		TTS: TTSSettings{
			Enabled: true,
		},
		Inference: InferenceSettings{
			Timeout: jsontime.Duration(infer.DefaultTimeout),
		},
	}
}

// LoadSettings reads the settings file at path, or the default location
// when path is empty. A missing file yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, cli.DefaultBaseDir, DefaultSettingsFile)
	}

	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return s, nil
}
