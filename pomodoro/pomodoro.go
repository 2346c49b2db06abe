// Package pomodoro implements the countdown timers. The classic variant has
// separate start, stop and reset controls. The site variant has a single
// toggle, minute adjustment and a companion background track.
package pomodoro

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"hum/log"
)

// DefaultDuration is 25 minutes in seconds.
const DefaultDuration = 1500

var ErrNotSupported = errors.New("operation not supported by this timer variant")

type Variant int

const (
	Classic Variant = iota
	Site
)

func (v Variant) String() string {
	if v == Site {
		return "site"
	}
	return "classic"
}

// ParseVariant accepts "classic" or "site".
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "classic":
		return Classic, nil
	case "site":
		return Site, nil
	}
	return 0, fmt.Errorf("unknown timer variant %q", s)
}

// Track is the background audio played while the site timer runs.
type Track interface {
	Play() error
	Pause()
	Rewind()
	SetVolume(v float64)
}

type Snapshot struct {
	Name        string
	Variant     Variant
	Remaining   int
	Duration    int
	Running     bool
	TrackVolume int
}

type Options struct {
	Name     string
	Variant  Variant
	Duration int // seconds; DefaultDuration when zero
	Clock    Clock
	Track    Track
	// TrackVolume is the initial companion track volume in percent.
	TrackVolume int

	// OnChange is called after every visible change, OnFinish once per
	// completed countdown. Both run without the timer lock held.
	OnChange func(Snapshot)
	OnFinish func(Snapshot)
}

type Timer struct {
	mu          sync.Mutex
	name        string
	variant     Variant
	duration    int
	remaining   int
	trackVolume int
	clock       Clock
	track       Track
	onChange    func(Snapshot)
	onFinish    func(Snapshot)

	running bool
	gen     uint64
	cancel  func()
}

func New(opts Options) *Timer {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Name == "" {
		opts.Name = opts.Variant.String()
	}
	t := &Timer{
		name:        opts.Name,
		variant:     opts.Variant,
		duration:    opts.Duration,
		remaining:   opts.Duration,
		trackVolume: clampPercent(opts.TrackVolume),
		clock:       opts.Clock,
		track:       opts.Track,
		onChange:    opts.OnChange,
		onFinish:    opts.OnFinish,
	}
	if t.variant == Site && t.track != nil {
		t.track.SetVolume(float64(t.trackVolume) / 100)
	}
	return t
}

// Format renders seconds as zero padded MM:SS.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func (t *Timer) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.startLocked()
	snap := t.snapshotLocked()
	t.mu.Unlock()
	t.changed(snap)
}

func (t *Timer) startLocked() {
	t.running = true
	t.gen++
	gen := t.gen
	t.cancel = t.clock.Every(time.Second, func() { t.tick(gen) })
	if t.variant == Site {
		t.playTrack()
	}
	log.TimerEvent(t.name, "start", t.remaining)
}

func (t *Timer) tick(gen uint64) {
	t.mu.Lock()
	if !t.running || gen != t.gen {
		t.mu.Unlock()
		return
	}
	if t.remaining > 0 {
		t.remaining--
	}
	finished := t.remaining == 0
	if finished {
		t.finishLocked()
	}
	snap := t.snapshotLocked()
	t.mu.Unlock()

	t.changed(snap)
	if finished && t.onFinish != nil {
		t.onFinish(snap)
	}
}

func (t *Timer) finishLocked() {
	t.cancelLocked()
	log.TimerEvent(t.name, "finish", 0)
	if t.variant == Site {
		t.pauseTrack()
		t.rewindTrack()
		t.remaining = t.duration
	}
}

func (t *Timer) cancelLocked() {
	t.running = false
	t.gen++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Stop cancels the countdown and keeps the remaining time.
func (t *Timer) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.stopLocked()
	snap := t.snapshotLocked()
	t.mu.Unlock()
	t.changed(snap)
}

func (t *Timer) stopLocked() {
	t.cancelLocked()
	if t.variant == Site {
		t.pauseTrack()
	}
	log.TimerEvent(t.name, "stop", t.remaining)
}

// Reset cancels the countdown and restores the full duration.
func (t *Timer) Reset() {
	t.mu.Lock()
	t.cancelLocked()
	t.remaining = t.duration
	if t.variant == Site {
		t.pauseTrack()
		t.rewindTrack()
	}
	log.TimerEvent(t.name, "reset", t.remaining)
	snap := t.snapshotLocked()
	t.mu.Unlock()
	t.changed(snap)
}

func (t *Timer) Toggle() {
	t.mu.Lock()
	if t.running {
		t.stopLocked()
	} else {
		t.startLocked()
	}
	snap := t.snapshotLocked()
	t.mu.Unlock()
	t.changed(snap)
}

// Adjust moves the remaining time by deltaMinutes, clamping at zero. The
// running state is unchanged.
func (t *Timer) Adjust(deltaMinutes int) error {
	if t.variant != Site {
		return ErrNotSupported
	}
	t.mu.Lock()
	t.remaining = max(0, t.remaining+deltaMinutes*60)
	log.TimerEvent(t.name, "adjust", t.remaining)
	snap := t.snapshotLocked()
	t.mu.Unlock()
	t.changed(snap)
	return nil
}

// SetVolume sets the companion track volume in percent.
func (t *Timer) SetVolume(percent int) error {
	if t.variant != Site {
		return ErrNotSupported
	}
	t.mu.Lock()
	t.trackVolume = clampPercent(percent)
	if t.track == nil {
		log.Warn("companion track missing, volume not applied")
	} else {
		t.track.SetVolume(float64(t.trackVolume) / 100)
	}
	snap := t.snapshotLocked()
	t.mu.Unlock()
	t.changed(snap)
	return nil
}

func (t *Timer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Timer) snapshotLocked() Snapshot {
	return Snapshot{
		Name:        t.name,
		Variant:     t.variant,
		Remaining:   t.remaining,
		Duration:    t.duration,
		Running:     t.running,
		TrackVolume: t.trackVolume,
	}
}

// Close cancels the tick source and silences the track.
func (t *Timer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		t.stopLocked()
	}
}

func (t *Timer) changed(s Snapshot) {
	if t.onChange != nil {
		t.onChange(s)
	}
}

func (t *Timer) playTrack() {
	if t.track == nil {
		log.Warn("companion track missing, nothing to play")
		return
	}
	if err := t.track.Play(); err != nil {
		log.Errorf("companion track play: %v", err)
	}
}

func (t *Timer) pauseTrack() {
	if t.track == nil {
		log.Warn("companion track missing, nothing to pause")
		return
	}
	t.track.Pause()
}

func (t *Timer) rewindTrack() {
	if t.track == nil {
		log.Warn("companion track missing, nothing to rewind")
		return
	}
	t.track.Rewind()
}

func clampPercent(p int) int {
	return max(0, min(100, p))
}
