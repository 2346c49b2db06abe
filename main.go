package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"hum/audio"
	"hum/beep"
	"hum/config"
	"hum/hotkey"
	"hum/log"
	"hum/pomodoro"
	"hum/shutdown"
	"hum/waveform"
)

var version = "dev"

// guiMode is set by initGUI before run; sink then points at the window.
var guiMode bool
var sink EventSink = nopSink{}

type rootFlags struct {
	configPath string
	device     string
	setup      bool
	logPath    string
	hotkey     bool
	combo      string
	gui        bool
	test       bool
	noBeep     bool
	carrier    float64
	beat       float64
	volume     float64
}

// wantsGUI reports whether --gui was passed. main checks it before cobra
// parses anything because the window must own the main thread.
func wantsGUI(args []string) bool {
	for _, a := range args {
		switch a {
		case "--gui", "-gui", "--gui=true", "-gui=true":
			return true
		}
	}
	return false
}

func run() {
	if err := newRootCmd(&rootFlags{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(f *rootFlags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hum",
		Short:         "Binaural beat generator and pomodoro timers",
		SilenceUsage:  true,
		SilenceErrors: false,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogDir(f.logPath)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoot(cmd, f)
		},
	}

	defaults := config.Default()
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", config.DefaultConfigPath(), "config file path")
	pf.StringVar(&f.device, "device", "", "use named output device")
	pf.StringVar(&f.logPath, "logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")

	fl := rootCmd.Flags()
	fl.BoolVar(&f.setup, "setup", false, "select output device interactively (otherwise uses system default)")
	fl.BoolVar(&f.hotkey, "hotkey", false, "enable the global hotkey (tap: tone, hold: site timer)")
	fl.StringVar(&f.combo, "hotkey-combo", hotkey.DefaultCombo, "global hotkey combination")
	fl.BoolVar(&f.gui, "gui", false, "open the desktop window (requires a build with -tags gui)")
	fl.BoolVar(&f.test, "test", false, "test mode (headless, stdin-driven)")
	fl.BoolVar(&f.noBeep, "no-beep", false, "disable chimes")
	fl.Float64Var(&f.carrier, "carrier", defaults.Settings.CarrierHz, "carrier frequency in Hz")
	fl.Float64Var(&f.beat, "beat", defaults.Settings.BeatHz, "beat frequency in Hz")
	fl.Float64Var(&f.volume, "volume", defaults.Settings.Volume, "volume (0-1)")

	rootCmd.AddCommand(newRenderCmd(f))
	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newPresetsCmd(f))
	rootCmd.AddCommand(newDoctorCmd(f))
	rootCmd.AddCommand(newConfigCmd(f))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// setupLogDir resolves the log directory and points the crash log into it.
func setupLogDir(flagPath string) error {
	dir, err := log.ResolveDir(flagPath)
	if err != nil {
		return fmt.Errorf("failed to resolve log directory: %w", err)
	}
	log.SetDir(dir)
	if err := log.EnsureDir(); err != nil {
		logErrf("Warning: could not create log directory: %v\n", err)
		return nil
	}
	if flagPath != "" {
		attachCrashLog(dir)
	}
	return nil
}

// initCrashLog attaches the crash log before any cgo audio code runs. The
// --logpath flag is not parsed yet, so this uses the env/default directory.
func initCrashLog() {
	dir, err := log.ResolveDir("")
	if err != nil {
		return
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return
	}
	attachCrashLog(dir)
}

func attachCrashLog(dir string) {
	crashPath := filepath.Join(dir, "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	crashFile.Close()
}

// loadConfig layers defaults, the config file and explicitly set flags, in
// that order, and validates the result.
func loadConfig(cmd *cobra.Command, f *rootFlags) (config.Config, error) {
	fileCfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.Default()
	if err := fileCfg.Apply(&cfg); err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatFlag(cmd, "carrier", &cfg.Settings.CarrierHz, f.carrier)
	applyFloatFlag(cmd, "beat", &cfg.Settings.BeatHz, f.beat)
	applyFloatFlag(cmd, "volume", &cfg.Settings.Volume, f.volume)
	applyStringFlag(cmd, "device", &cfg.Device, f.device)
	applyBoolFlag(cmd, "hotkey", &cfg.Hotkey, f.hotkey)
	applyStringFlag(cmd, "hotkey-combo", &cfg.HotkeyCombo, f.combo)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyFloatFlag(cmd *cobra.Command, name string, target *float64, value float64) {
	if cmd.Flags().Lookup(name) == nil || !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func applyStringFlag(cmd *cobra.Command, name string, target *string, value string) {
	if cmd.Flags().Lookup(name) == nil || !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func applyBoolFlag(cmd *cobra.Command, name string, target *bool, value bool) {
	if cmd.Flags().Lookup(name) == nil || !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

// resolveDevice turns the configured device name (or the --setup picker)
// into a DeviceInfo. A nil device means the system default.
func resolveDevice(name string, setup bool) (*audio.DeviceInfo, error) {
	if name == "" && !setup {
		return nil, nil
	}
	ctx, err := audio.NewContext()
	if err != nil {
		return nil, fmt.Errorf("initializing audio: %w", err)
	}
	defer ctx.Close()
	if name != "" {
		return audio.FindDevice(ctx, name)
	}
	return selectDevice(ctx)
}

func deviceLineText(dev *audio.DeviceInfo) string {
	name := "system default"
	suffix := ""
	if dev != nil {
		name = dev.Name
		if !audio.LooksLikeHeadphones(dev.Name) {
			suffix = " (headphones?)"
		}
	}
	return "out: " + name + suffix
}

func runRoot(cmd *cobra.Command, f *rootFlags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	if f.noBeep {
		beep.Disable()
	}
	if f.test {
		return runTestMode(cmd.InOrStdin(), cmd.OutOrStdout(), cfg)
	}
	if f.gui && !guiMode {
		return errors.New("built without GUI support (rebuild with -tags gui)")
	}

	if err := log.Init(); err != nil {
		logErrf("Warning: could not init logging: %v\n", err)
	}
	defer log.Close()
	frontend := "tui"
	if guiMode {
		frontend = "gui"
	}
	log.SessionStart(version, frontend)

	device, err := resolveDevice(cfg.Device, f.setup)
	if err != nil {
		return err
	}
	beep.Init()

	ctx, stop := shutdown.Context(context.Background())
	defer stop()

	canvas := waveform.New(waveformCols, waveformRows)
	opts := appOptions{
		cfg:     cfg,
		device:  device,
		surface: canvas,
		clock:   pomodoro.RealClock{},
		sink:    tuiSink{},
	}
	if guiMode {
		opts.surface = guiSurface()
		opts.sink = sink
	}
	a := newApp(opts)
	defer func() {
		a.close()
		log.SessionEnd(a.engine.Sessions())
	}()
	a.sink.DeviceLine(deviceLineText(device))

	var notice string
	hotkeyText := hotkeyLine(cfg)
	if cfg.Hotkey {
		done := make(chan struct{})
		if closeHotkey, err := startHotkey(a, cfg.HotkeyCombo, done); err != nil {
			log.Warnf("hotkey: %v", err)
			notice = fmt.Sprintf("Global hotkey unavailable: %v", err)
			hotkeyText = ""
		} else {
			defer closeHotkey()
		}
		defer close(done)
	}

	if guiMode {
		guiAttach(a)
		if notice != "" {
			a.sink.Notice(notice)
		}
		select {
		case <-ctx.Done():
		case <-guiDone():
		}
		guiQuit()
		return nil
	}
	return runTUI(ctx, a, canvas, tuiStatus{
		deviceLine: deviceLineText(device),
		hotkey:     hotkeyText,
		notice:     notice,
	})
}

func hotkeyLine(cfg config.Config) string {
	if !cfg.Hotkey {
		return ""
	}
	return cfg.HotkeyCombo + ": tap tone, hold site timer"
}

func startHotkey(a *app, combo string, done chan struct{}) (func(), error) {
	c, err := hotkey.ParseCombo(combo)
	if err != nil {
		return nil, err
	}
	hk := hotkey.New(c)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("registering %s: %w", c, err)
	}
	g := hotkey.NewGestures(hk, hotkey.DefaultHold)
	go a.watchHotkey(g, done)
	return func() {
		g.Close()
		hk.Unregister()
	}, nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
