// Package doctor runs interactive checks of the audio output path.
package doctor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"hum/audio"
	"hum/clipboard"
	"hum/config"
	"hum/hotkey"
	"hum/tone"
)

type Options struct {
	ConfigPath string
	Device     string
	Combo      hotkey.Combo
	// SkipHotkey leaves out the global hotkey check.
	SkipHotkey bool

	NewContext   tone.ContextFactory
	ToneDuration time.Duration
	In           io.Reader
	Out          io.Writer
}

type check struct {
	name  string
	run   func() bool
	fatal bool
}

type doctor struct {
	opts   Options
	in     *bufio.Reader
	out    io.Writer
	device *audio.DeviceInfo
	ctx    audio.Context
}

// Run executes the checks and returns an exit code (0=all pass, 1=any fail).
func Run(opts Options) int {
	if opts.In == nil {
		opts.In = os.Stdin
		restore := saveTerminal()
		defer restore()
		setupInterruptHandler(restore)
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.NewContext == nil {
		opts.NewContext = audio.NewContext
	}
	if opts.ToneDuration <= 0 {
		opts.ToneDuration = 3 * time.Second
	}
	d := &doctor{opts: opts, in: bufio.NewReader(opts.In), out: opts.Out}
	defer func() {
		if d.ctx != nil {
			d.ctx.Close()
		}
	}()

	d.printf("hum doctor - interactive audio diagnostics\n")
	d.printf("==========================================\n")

	// A failed fatal check ends the run.
	checks := []check{
		{name: "Configuration", run: d.checkConfig},
		{name: "Audio output", run: d.checkOutput, fatal: true},
		{name: "Channel separation", run: d.checkChannels},
		{name: "Binaural beat", run: d.checkBeat},
		{name: "Clipboard", run: d.checkClipboard},
	}
	if !opts.SkipHotkey {
		checks = append(checks, check{name: "Global hotkey", run: d.checkHotkey})
	}

	allPass := true
	for i, c := range checks {
		d.printf("\n[%d/%d] %s\n", i+1, len(checks), c.name)
		if !c.run() {
			allPass = false
			if c.fatal {
				break
			}
		}
	}

	d.printf("\n")
	if allPass {
		d.printf("All checks passed!\n")
		return 0
	}
	d.printf("Some checks failed. See details above.\n")
	return 1
}

func (d *doctor) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}

func (d *doctor) ask(question string) bool {
	d.printf("%s [y/n]: ", question)
	answer, _ := d.in.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}

func (d *doctor) checkConfig() bool {
	path := d.opts.ConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	fc, err := config.LoadConfig(path)
	if err != nil {
		d.printf("  FAIL: %v\n", err)
		return false
	}
	cfg := config.Default()
	if err := fc.Apply(&cfg); err != nil {
		d.printf("  FAIL: %v\n", err)
		return false
	}
	if err := cfg.Validate(); err != nil {
		d.printf("  FAIL: %v\n", err)
		return false
	}
	d.printf("  PASS: %s (%d presets)\n", path, len(cfg.Presets))
	return true
}

func (d *doctor) checkOutput() bool {
	ctx, err := d.opts.NewContext()
	if err != nil {
		d.printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	d.ctx = ctx

	devices, err := ctx.Devices()
	if err != nil {
		d.printf("  FAIL: cannot list devices: %v\n", err)
		return false
	}
	for _, dev := range devices {
		tag := ""
		if !audio.LooksLikeHeadphones(dev.Name) {
			tag = "  (speakers? beats need headphones)"
		}
		d.printf("  - %s%s\n", dev.Name, tag)
	}

	if d.opts.Device != "" {
		dev, err := audio.FindDevice(ctx, d.opts.Device)
		if err != nil {
			d.printf("  FAIL: %v\n", err)
			return false
		}
		d.device = dev
		d.printf("  Using: %s\n", dev.Name)
	}
	d.printf("  PASS: %d output device(s)\n", len(devices))
	return true
}

// playPanned plays a single sine on one side of the stereo field.
func (d *doctor) playPanned(hz, pan float64) error {
	osc := tone.NewOscillator(hz)
	g := tone.NewGraph(audio.SampleRate, tone.NewGain(0.4), nil)
	g.Connect(osc, tone.NewPanner(pan))
	if err := osc.Start(); err != nil {
		return err
	}
	defer osc.Stop()

	pb, err := d.ctx.NewPlayback(d.device, audio.DefaultPlaybackConfig(), g.Render)
	if err != nil {
		return err
	}
	defer pb.Close()
	if err := pb.Start(); err != nil {
		return err
	}
	time.Sleep(d.opts.ToneDuration / 2)
	pb.Stop()
	return nil
}

func (d *doctor) checkChannels() bool {
	if d.ctx == nil {
		d.printf("  SKIP: no audio output\n")
		return false
	}
	d.printf("Put on headphones. Playing a tone in the LEFT ear...\n")
	if err := d.playPanned(440, -1); err != nil {
		d.printf("  FAIL: playback error: %v\n", err)
		return false
	}
	if !d.ask("Did you hear it only in the left ear?") {
		d.printf("  FAIL: left channel not confirmed\n")
		return false
	}
	d.printf("Playing a tone in the RIGHT ear...\n")
	if err := d.playPanned(440, 1); err != nil {
		d.printf("  FAIL: playback error: %v\n", err)
		return false
	}
	if !d.ask("Did you hear it only in the right ear?") {
		d.printf("  FAIL: right channel not confirmed\n")
		return false
	}
	d.printf("  PASS: channels separated\n")
	return true
}

func (d *doctor) checkBeat() bool {
	if d.ctx == nil {
		d.printf("  SKIP: no audio output\n")
		return false
	}
	e := tone.NewEngine(tone.Options{
		NewContext: func() (audio.Context, error) { return d.ctx, nil },
		Device:     d.device,
		Settings:   tone.Settings{CarrierHz: 200, BeatHz: 4, Volume: 0.4},
	})
	s := e.Snapshot()
	d.printf("Playing %g Hz left / %g Hz right...\n", s.LeftHz, s.RightHz)
	if err := e.Start(); err != nil {
		d.printf("  FAIL: %v\n", err)
		return false
	}
	time.Sleep(d.opts.ToneDuration)
	e.Stop()
	// The context is shared with later checks, so the engine is not closed.
	if err := d.ctx.Resume(); err != nil {
		d.printf("  FAIL: resuming audio: %v\n", err)
		return false
	}

	if !d.ask("Did you hear a slow pulse, about 4 per second?") {
		d.printf("  FAIL: beat not confirmed (check that both earcups are on)\n")
		return false
	}
	d.printf("  PASS: binaural beat verified by user\n")
	return true
}

func (d *doctor) checkClipboard() bool {
	const probe = "hum-doctor-test"
	if err := clipboard.Copy(probe); err != nil {
		d.printf("  WARN: %v (preset copy will not work)\n", err)
		return true
	}
	got, err := clipboard.Read()
	if err != nil || got != probe {
		d.printf("  WARN: clipboard read back %q, %v\n", got, err)
		return true
	}
	d.printf("  PASS: clipboard round trip\n")
	return true
}

func (d *doctor) checkHotkey() bool {
	d.printf("Press %s...\n", d.opts.Combo)
	hk := hotkey.New(d.opts.Combo)
	if err := hk.Register(); err != nil {
		d.printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer hk.Unregister()

	select {
	case <-hk.Keydown():
		select {
		case <-hk.Keyup():
		case <-time.After(5 * time.Second):
		}
		d.printf("  PASS: hotkey detected\n")
		return true
	case <-time.After(10 * time.Second):
		d.printf("  FAIL: timeout waiting for hotkey\n")
		return false
	}
}
