package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hum/audio"
	"hum/config"
	"hum/doctor"
	"hum/encoder"
	"hum/hotkey"
	"hum/tone"
)

const defaultRenderDuration = 10 * time.Minute

type renderFlags struct {
	duration time.Duration
	preset   string
}

func newRenderCmd(f *rootFlags) *cobra.Command {
	rf := &renderFlags{}
	defaults := config.Default()
	cmd := &cobra.Command{
		Use:   "render OUT.flac",
		Short: "Render a binaural session to a stereo FLAC file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRenderCmd(cmd, f, rf, args[0])
		},
	}
	cmd.Flags().Float64Var(&f.carrier, "carrier", defaults.Settings.CarrierHz, "carrier frequency in Hz")
	cmd.Flags().Float64Var(&f.beat, "beat", defaults.Settings.BeatHz, "beat frequency in Hz")
	cmd.Flags().Float64Var(&f.volume, "volume", defaults.Settings.Volume, "volume (0-1)")
	cmd.Flags().DurationVar(&rf.duration, "duration", defaultRenderDuration, "length of the rendered session")
	cmd.Flags().StringVar(&rf.preset, "preset", "", "start from a named preset (carrier and beat)")
	return cmd
}

func runRenderCmd(cmd *cobra.Command, f *rootFlags, rf *renderFlags, out string) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	settings := cfg.Settings
	if rf.preset != "" {
		p, err := tone.FindPreset(cfg.Presets, rf.preset)
		if err != nil {
			return fmt.Errorf("preset %q: %w", rf.preset, err)
		}
		settings.CarrierHz, settings.BeatHz = p.CarrierHz, p.BeatHz
		applyFloatFlag(cmd, "carrier", &settings.CarrierHz, f.carrier)
		applyFloatFlag(cmd, "beat", &settings.BeatHz, f.beat)
	}
	settings = settings.Clamp(cfg.Controls)
	if rf.duration <= 0 {
		return fmt.Errorf("invalid --duration %s", rf.duration)
	}
	frames := int(rf.duration.Seconds() * audio.SampleRate)

	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	enc, err := encoder.NewFlacWriter(file, audio.SampleRate)
	if err != nil {
		file.Close()
		return err
	}
	start := time.Now()
	renderErr := tone.Render(enc, settings, audio.SampleRate, frames)
	enc.AddEncodeTime(time.Since(start))
	if err := enc.Close(); err != nil && renderErr == nil {
		renderErr = fmt.Errorf("failed to finish flac stream: %w", err)
	}
	if renderErr != nil {
		return renderErr
	}

	left, right := tone.DeriveChannels(settings.CarrierHz, settings.BeatHz)
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %s, L %g Hz / R %g Hz, %d frames in %s\n",
		out, rf.duration, left, right, enc.TotalFrames(), enc.EncodeTime().Round(time.Millisecond))
	return nil
}

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List output devices",
		Args:  cobra.NoArgs,
		RunE:  runDevicesCmd,
	}
}

func runDevicesCmd(cmd *cobra.Command, _ []string) error {
	ctx, err := audio.NewContext()
	if err != nil {
		return fmt.Errorf("initializing audio: %w", err)
	}
	defer ctx.Close()
	devices, err := ctx.Devices()
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}
	if len(devices) == 0 {
		return audio.ErrNoDevices
	}
	for _, d := range devices {
		tag := ""
		if !audio.LooksLikeHeadphones(d.Name) {
			tag = "\t(speakers? beats need headphones)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", d.Name, tag)
	}
	return nil
}

func newPresetsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			writePresets(cmd.OutOrStdout(), cfg.Presets)
			return nil
		},
	}
}

func writePresets(w io.Writer, presets []tone.Preset) {
	for _, p := range presets {
		left, right := tone.DeriveChannels(p.CarrierHz, p.BeatHz)
		fmt.Fprintf(w, "%-10s carrier %6g Hz  beat %4g Hz  (L %g / R %g)\n", p.Name, p.CarrierHz, p.BeatHz, left, right)
	}
}

func newDoctorCmd(f *rootFlags) *cobra.Command {
	var skipHotkey bool
	var combo string
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run interactive audio diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := hotkey.ParseCombo(combo)
			if err != nil {
				return err
			}
			code := doctor.Run(doctor.Options{
				ConfigPath: f.configPath,
				Device:     f.device,
				Combo:      c,
				SkipHotkey: skipHotkey,
			})
			if code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipHotkey, "skip-hotkey", false, "skip the global hotkey check")
	cmd.Flags().StringVar(&combo, "hotkey-combo", hotkey.DefaultCombo, "hotkey combination to test")
	return cmd
}

func newConfigCmd(f *rootFlags) *cobra.Command {
	var printOnly bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if printOnly {
				fmt.Fprintln(cmd.OutOrStdout(), f.configPath)
				return nil
			}
			return runConfigCmd(f.configPath)
		},
	}
	cmd.Flags().BoolVar(&printOnly, "path", false, "print the config path instead of opening an editor")
	return cmd
}

func runConfigCmd(path string) error {
	if err := ensureConfigFile(path); err != nil {
		return err
	}
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// ensureConfigFile writes the commented template when no config exists.
func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.DefaultTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hum %s\n", version)
		},
	}
}
