// Package config provides configuration helpers and TOML parsing.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"hum/pomodoro"
	"hum/tone"
)

var ErrInvalidRange = errors.New("invalid range")

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Tone    ToneConfig     `toml:"tone"`
	Presets []PresetConfig `toml:"preset"`
	Timer   TimerConfig    `toml:"timer"`
	Audio   AudioConfig    `toml:"audio"`
	Hotkey  HotkeyConfig   `toml:"hotkey"`
}

// ToneConfig maps the tone engine's starting values and control ranges.
type ToneConfig struct {
	Carrier    *float64 `toml:"carrier"`
	Beat       *float64 `toml:"beat"`
	Volume     *float64 `toml:"volume"`
	CarrierMin *float64 `toml:"carrier_min"`
	CarrierMax *float64 `toml:"carrier_max"`
	BeatMin    *float64 `toml:"beat_min"`
	BeatMax    *float64 `toml:"beat_max"`
}

type PresetConfig struct {
	Name    string  `toml:"name"`
	Carrier float64 `toml:"carrier"`
	Beat    float64 `toml:"beat"`
}

type TimerConfig struct {
	Duration    *string `toml:"duration"`
	Track       *string `toml:"track"`
	TrackVolume *int    `toml:"track_volume"`
}

type AudioConfig struct {
	Device *string `toml:"device"`
}

type HotkeyConfig struct {
	Enabled *bool   `toml:"enabled"`
	Combo   *string `toml:"combo"`
}

// Config is the effective configuration after defaults, file and flags.
type Config struct {
	Controls      tone.Controls
	Settings      tone.Settings
	Presets       []tone.Preset
	TimerDuration time.Duration
	Track         string
	TrackVolume   int
	Device        string
	Hotkey        bool
	HotkeyCombo   string
}

func Default() Config {
	return Config{
		Controls:      tone.DefaultControls(),
		Settings:      tone.DefaultSettings(),
		Presets:       append([]tone.Preset(nil), tone.DefaultPresets...),
		TimerDuration: pomodoro.DefaultDuration * time.Second,
		TrackVolume:   50,
		HotkeyCombo:   "ctrl+shift+space", // hotkey.DefaultCombo
	}
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Apply overlays the values present in the file onto cfg.
func (fc FileConfig) Apply(cfg *Config) error {
	t := fc.Tone
	setFloat(&cfg.Controls.Carrier.Min, t.CarrierMin)
	setFloat(&cfg.Controls.Carrier.Max, t.CarrierMax)
	setFloat(&cfg.Controls.Beat.Min, t.BeatMin)
	setFloat(&cfg.Controls.Beat.Max, t.BeatMax)
	setFloat(&cfg.Settings.CarrierHz, t.Carrier)
	setFloat(&cfg.Settings.BeatHz, t.Beat)
	setFloat(&cfg.Settings.Volume, t.Volume)

	if len(fc.Presets) > 0 {
		cfg.Presets = cfg.Presets[:0]
		for _, p := range fc.Presets {
			cfg.Presets = append(cfg.Presets, tone.Preset{Name: p.Name, CarrierHz: p.Carrier, BeatHz: p.Beat})
		}
	}

	if fc.Timer.Duration != nil {
		d, err := time.ParseDuration(*fc.Timer.Duration)
		if err != nil {
			return fmt.Errorf("timer duration: %w", err)
		}
		cfg.TimerDuration = d
	}
	if fc.Timer.Track != nil {
		cfg.Track = ExpandHome(*fc.Timer.Track)
	}
	if fc.Timer.TrackVolume != nil {
		cfg.TrackVolume = *fc.Timer.TrackVolume
	}
	if fc.Audio.Device != nil {
		cfg.Device = *fc.Audio.Device
	}
	if fc.Hotkey.Enabled != nil {
		cfg.Hotkey = *fc.Hotkey.Enabled
	}
	if fc.Hotkey.Combo != nil {
		cfg.HotkeyCombo = *fc.Hotkey.Combo
	}
	return nil
}

func setFloat(target, value *float64) {
	if value != nil {
		*target = *value
	}
}

// Validate checks the ranges. The lowest carrier must stay above half the
// highest beat so that no derived channel frequency reaches zero.
func (c Config) Validate() error {
	cr, br := c.Controls.Carrier, c.Controls.Beat
	if cr.Min <= 0 || cr.Min >= cr.Max {
		return fmt.Errorf("carrier range [%g, %g]: %w", cr.Min, cr.Max, ErrInvalidRange)
	}
	if br.Min <= 0 || br.Min >= br.Max {
		return fmt.Errorf("beat range [%g, %g]: %w", br.Min, br.Max, ErrInvalidRange)
	}
	if cr.Min-br.Max/2 <= 0 {
		return fmt.Errorf("carrier min %g must exceed half of beat max %g: %w", cr.Min, br.Max, ErrInvalidRange)
	}
	if v := c.Settings.Volume; v < 0 || v > 1 {
		return fmt.Errorf("volume %g outside [0, 1]: %w", v, ErrInvalidRange)
	}
	if c.TimerDuration < time.Second {
		return fmt.Errorf("timer duration %s below 1s: %w", c.TimerDuration, ErrInvalidRange)
	}
	if c.TrackVolume < 0 || c.TrackVolume > 100 {
		return fmt.Errorf("track volume %d outside [0, 100]: %w", c.TrackVolume, ErrInvalidRange)
	}
	for i, p := range c.Presets {
		if p.Name == "" {
			return fmt.Errorf("preset %d has no name", i+1)
		}
	}
	return nil
}

// TimerSeconds returns the timer duration in whole seconds.
func (c Config) TimerSeconds() int {
	return int(c.TimerDuration / time.Second)
}

// PresetTOML renders a preset as a [[preset]] table ready to paste into the
// config file.
func PresetTOML(p tone.Preset) (string, error) {
	doc := struct {
		Preset []PresetConfig `toml:"preset"`
	}{
		Preset: []PresetConfig{{Name: p.Name, Carrier: p.CarrierHz, Beat: p.BeatHz}},
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return "", fmt.Errorf("encoding preset: %w", err)
	}
	return buf.String(), nil
}

// DefaultTemplate is written by `hum config` when no file exists.
func DefaultTemplate() string {
	d := Default()
	return fmt.Sprintf(`# hum configuration
# Uncomment a value to enable it. CLI flags override config values.

[tone]
# carrier = %g          # Carrier frequency in Hz
# beat = %g              # Beat frequency in Hz
# volume = %g           # 0-1
# carrier_min = %g
# carrier_max = %g
# beat_min = %g
# beat_max = %g

# [[preset]]
# name = "alpha"
# carrier = 200.0
# beat = 10.0

[timer]
# duration = "25m"
# track = "~/music/rain.flac"
# track_volume = %d

[audio]
# device = ""            # Output device name, empty for the system default

[hotkey]
# enabled = false        # Global tap/hold hotkey (tap: tone, hold: site timer)
# combo = "%s"
`,
		d.Settings.CarrierHz,
		d.Settings.BeatHz,
		d.Settings.Volume,
		d.Controls.Carrier.Min,
		d.Controls.Carrier.Max,
		d.Controls.Beat.Min,
		d.Controls.Beat.Max,
		d.TrackVolume,
		d.HotkeyCombo,
	)
}
