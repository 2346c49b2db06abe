package tone

import (
	"fmt"
	"sync"
	"time"

	"hum/audio"
	"hum/log"
)

// ContextFactory opens the shared audio output context.
type ContextFactory func() (audio.Context, error)

type Options struct {
	NewContext    ContextFactory
	Device        *audio.DeviceInfo
	Playback      audio.PlaybackConfig
	Controls      Controls
	Settings      Settings
	Surface       Surface
	FrameInterval time.Duration
}

// Snapshot is what the display readouts show.
type Snapshot struct {
	Settings
	LeftHz  float64
	RightHz float64
	Running bool
}

// session holds the resources that exist only while playing.
type session struct {
	left     *Oscillator
	right    *Oscillator
	graph    *Graph
	playback audio.PlaybackDevice
	started  time.Time
}

// Engine is one binaural tone widget. It owns the shared audio context, the
// volume node and the analyser across sessions.
type Engine struct {
	mu         sync.Mutex
	newContext ContextFactory
	device     *audio.DeviceInfo
	playback   audio.PlaybackConfig
	controls   Controls
	settings   Settings

	ctx      audio.Context
	gain     *Gain
	analyser *Analyser
	vis      *Visualizer
	sess     *session
	sessions int
}

func NewEngine(opts Options) *Engine {
	if opts.NewContext == nil {
		opts.NewContext = audio.NewContext
	}
	if opts.Playback == (audio.PlaybackConfig{}) {
		opts.Playback = audio.DefaultPlaybackConfig()
	}
	if opts.Controls == (Controls{}) {
		opts.Controls = DefaultControls()
	}
	if opts.Settings == (Settings{}) {
		opts.Settings = DefaultSettings()
	}
	settings := opts.Settings.Clamp(opts.Controls)
	return &Engine{
		newContext: opts.NewContext,
		device:     opts.Device,
		playback:   opts.Playback,
		controls:   opts.Controls,
		settings:   settings,
		gain:       NewGain(settings.Volume),
		analyser:   NewAnalyser(AnalyserSize),
		vis:        NewVisualizer(opts.Surface, opts.FrameInterval),
	}
}

// Start begins a session. Starting a running engine does nothing. On failure
// no session state is kept and the error is returned for the operator.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess != nil {
		return nil
	}

	ctx, err := e.acquireContext()
	if err != nil {
		return fmt.Errorf("acquiring audio context: %w", err)
	}

	sess := &session{
		left:  NewOscillator(0),
		right: NewOscillator(0),
		graph: NewGraph(float64(e.playback.SampleRate), e.gain, e.analyser),
	}
	sess.graph.Connect(sess.left, NewPanner(-1))
	sess.graph.Connect(sess.right, NewPanner(1))
	e.applyFrequencies(sess)
	e.gain.Set(e.settings.Volume)

	if err := sess.left.Start(); err != nil {
		return err
	}
	if err := sess.right.Start(); err != nil {
		sess.left.Stop()
		return err
	}

	dev, err := ctx.NewPlayback(e.device, e.playback, sess.graph.Render)
	if err != nil {
		e.abort(sess)
		return fmt.Errorf("opening playback: %w", err)
	}
	if err := dev.Start(); err != nil {
		dev.Close()
		e.abort(sess)
		return fmt.Errorf("starting playback: %w", err)
	}
	sess.playback = dev
	sess.started = time.Now()

	e.sess = sess
	e.sessions++
	e.analyser.Reset()
	e.vis.Start(e.analyser)

	left, right := DeriveChannels(e.settings.CarrierHz, e.settings.BeatHz)
	log.ToneStart(e.settings.CarrierHz, e.settings.BeatHz, left, right, e.settings.Volume)
	return nil
}

func (e *Engine) acquireContext() (audio.Context, error) {
	if e.ctx == nil {
		ctx, err := e.newContext()
		if err != nil {
			return nil, err
		}
		e.ctx = ctx
		return ctx, nil
	}
	if e.ctx.State() == audio.StateSuspended {
		if err := e.ctx.Resume(); err != nil {
			return nil, fmt.Errorf("resuming: %w", err)
		}
	}
	return e.ctx, nil
}

func (e *Engine) abort(sess *session) {
	sess.left.Stop()
	sess.right.Stop()
	if err := e.ctx.Suspend(); err != nil {
		log.Warnf("suspending audio context: %v", err)
	}
}

// Stop ends the session and releases its oscillators. Stopping a stopped
// engine does nothing.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	sess := e.sess
	if sess == nil {
		return
	}
	e.sess = nil

	sess.left.Stop()
	sess.right.Stop()
	sess.playback.Stop()
	sess.playback.Close()
	e.vis.Stop()

	if err := e.ctx.Suspend(); err != nil {
		log.Warnf("suspending audio context: %v", err)
	}

	played := time.Since(sess.started)
	log.ToneStop(played)
	log.ToneHistory(e.settings.CarrierHz, e.settings.BeatHz, played)
}

func (e *Engine) Toggle() error {
	e.mu.Lock()
	running := e.sess != nil
	e.mu.Unlock()
	if running {
		e.Stop()
		return nil
	}
	return e.Start()
}

// UpdateFrequencies re-derives the channel frequencies from the current
// carrier and beat and applies them to the running oscillators.
func (e *Engine) UpdateFrequencies() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.retuneLocked()
}

func (e *Engine) retuneLocked() {
	if e.sess == nil {
		return
	}
	e.applyFrequencies(e.sess)
	left, right := DeriveChannels(e.settings.CarrierHz, e.settings.BeatHz)
	log.ToneRetune(e.settings.CarrierHz, e.settings.BeatHz, left, right)
}

func (e *Engine) applyFrequencies(sess *session) {
	left, right := DeriveChannels(e.settings.CarrierHz, e.settings.BeatHz)
	sess.left.SetFrequency(left)
	sess.right.SetFrequency(right)
}

func (e *Engine) SetCarrier(hz float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.CarrierHz = e.controls.Carrier.Clamp(hz)
	e.retuneLocked()
}

func (e *Engine) SetBeat(hz float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.BeatHz = e.controls.Beat.Clamp(hz)
	e.retuneLocked()
}

func (e *Engine) NudgeCarrier(steps int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.CarrierHz = e.controls.Carrier.Nudge(e.settings.CarrierHz, steps)
	e.retuneLocked()
}

func (e *Engine) NudgeBeat(steps int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.BeatHz = e.controls.Beat.Nudge(e.settings.BeatHz, steps)
	e.retuneLocked()
}

// SetVolume applies to the shared volume node whether or not a session is
// running.
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.Volume = e.controls.Volume.Clamp(v)
	e.gain.Set(e.settings.Volume)
}

func (e *Engine) NudgeVolume(steps int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.Volume = e.controls.Volume.Nudge(e.settings.Volume, steps)
	e.gain.Set(e.settings.Volume)
}

// ApplyPreset is two edits, carrier then beat, followed by one retune.
func (e *Engine) ApplyPreset(p Preset) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.CarrierHz = e.controls.Carrier.Clamp(p.CarrierHz)
	e.settings.BeatHz = e.controls.Beat.Clamp(p.BeatHz)
	e.retuneLocked()
}

func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess != nil
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	left, right := DeriveChannels(e.settings.CarrierHz, e.settings.BeatHz)
	return Snapshot{
		Settings: e.settings,
		LeftHz:   left,
		RightHz:  right,
		Running:  e.sess != nil,
	}
}

func (e *Engine) Controls() Controls {
	return e.controls
}

// Sessions returns how many sessions have been started.
func (e *Engine) Sessions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions
}

// Close stops any session and releases the shared audio context.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	if e.ctx != nil {
		e.ctx.Close()
		e.ctx = nil
	}
}
