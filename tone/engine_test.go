package tone

import (
	"errors"
	"testing"

	"hum/audio"
)

func newTestEngine(t *testing.T, surface Surface) (*Engine, *audio.FakeContext) {
	t.Helper()
	fake := audio.NewFakeContext(false)
	e := NewEngine(Options{
		NewContext: func() (audio.Context, error) { return fake, nil },
		Surface:    surface,
	})
	t.Cleanup(e.Close)
	return e, fake
}

func TestEngineStartStopReleasesEverything(t *testing.T) {
	surface := &recordingSurface{}
	e, fake := newTestEngine(t, surface)

	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sess := e.sess
	if !sess.left.Running() || !sess.right.Running() {
		t.Fatal("oscillators not running after Start")
	}
	if fake.Active() != 1 {
		t.Fatalf("active playbacks = %d, want 1", fake.Active())
	}

	e.Stop()

	if e.Running() {
		t.Error("engine still running after Stop")
	}
	if !sess.left.Stopped() || !sess.right.Stopped() {
		t.Error("oscillators not stopped")
	}
	if fake.Active() != 0 {
		t.Errorf("active playbacks = %d, want 0", fake.Active())
	}
	if fake.State() != audio.StateSuspended {
		t.Errorf("context state = %v, want suspended", fake.State())
	}
	if _, clears, visible := surface.counts(); clears != 1 || visible {
		t.Errorf("surface clears = %d visible = %v, want 1 and false", clears, visible)
	}
}

func TestEngineStopIdempotent(t *testing.T) {
	surface := &recordingSurface{}
	e, _ := newTestEngine(t, surface)

	e.Stop()
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.Stop()
	e.Stop()
	if _, clears, _ := surface.counts(); clears != 1 {
		t.Errorf("clears = %d, want 1", clears)
	}
}

func TestEngineRestartUsesFreshOscillators(t *testing.T) {
	e, fake := newTestEngine(t, nil)

	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	first := e.sess
	e.Stop()
	if err := e.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if e.sess.left == first.left || e.sess.right == first.right {
		t.Error("second session reused stopped oscillators")
	}
	if err := first.left.Start(); !errors.Is(err, ErrOscillatorUsed) {
		t.Errorf("restarting old oscillator = %v, want ErrOscillatorUsed", err)
	}
	if fake.Resumes() != 1 {
		t.Errorf("context resumes = %d, want 1", fake.Resumes())
	}
	if e.Sessions() != 2 {
		t.Errorf("Sessions = %d, want 2", e.Sessions())
	}
}

func TestEngineBeatEditWhileRunning(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	e.SetBeat(20)

	if !e.Running() {
		t.Error("beat edit changed running state")
	}
	if l, r := e.sess.left.Frequency(), e.sess.right.Frequency(); l != 190 || r != 210 {
		t.Errorf("channels = (%g, %g), want (190, 210)", l, r)
	}
}

func TestEngineCarrierEditWhileStopped(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.NudgeCarrier(10)
	if e.Running() {
		t.Error("edit started the engine")
	}
	if s := e.Snapshot(); s.CarrierHz != 210 || s.LeftHz != 205 || s.RightHz != 215 {
		t.Errorf("snapshot = %+v", s)
	}
}

func TestEnginePresetThenStart(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.ApplyPreset(Preset{Name: "gamma", CarrierHz: 300, BeatHz: 40})
	e.ApplyPreset(Preset{Name: "alpha", CarrierHz: 200, BeatHz: 10})

	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if l, r := e.sess.left.Frequency(), e.sess.right.Frequency(); l != 195 || r != 205 {
		t.Errorf("channels = (%g, %g), want (195, 205)", l, r)
	}
}

func TestEnginePresetClamped(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.ApplyPreset(Preset{CarrierHz: 5000, BeatHz: 100})
	s := e.Snapshot()
	if s.CarrierHz != 1000 || s.BeatHz != 40 {
		t.Errorf("snapshot = %+v, want carrier 1000 beat 40", s)
	}
}

func TestEngineVolumeWhileStopped(t *testing.T) {
	e, fake := newTestEngine(t, nil)
	e.SetVolume(0)
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	buf := fake.Last().Pull(512)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d = %d at volume 0", i, s)
		}
	}

	e.SetVolume(2)
	if got := e.Snapshot().Volume; got != 1 {
		t.Errorf("volume = %g, want clamped 1", got)
	}
	buf = fake.Last().Pull(512)
	nonzero := false
	for _, s := range buf {
		if s != 0 {
			nonzero = true
			break
		}
	}
	if !nonzero {
		t.Error("volume change did not reach the running session")
	}
}

func TestEngineToggle(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	if err := e.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !e.Running() {
		t.Fatal("Toggle did not start")
	}
	if err := e.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if e.Running() {
		t.Fatal("Toggle did not stop")
	}
}

func TestEngineContextFailure(t *testing.T) {
	boom := errors.New("no sound server")
	calls := 0
	e := NewEngine(Options{
		NewContext: func() (audio.Context, error) {
			calls++
			return nil, boom
		},
	})
	defer e.Close()

	err := e.Start()
	if !errors.Is(err, boom) {
		t.Fatalf("Start error = %v, want wrapped %v", err, boom)
	}
	if e.Running() || e.Sessions() != 0 {
		t.Error("failed Start left session state behind")
	}
	e.Start()
	if calls != 2 {
		t.Errorf("context factory calls = %d, want 2", calls)
	}
}

func TestEngineCloseReleasesContext(t *testing.T) {
	fake := audio.NewFakeContext(false)
	e := NewEngine(Options{NewContext: func() (audio.Context, error) { return fake, nil }})
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.Close()
	if !fake.Closed() {
		t.Error("context not closed")
	}
	if fake.Active() != 0 {
		t.Error("playback left running after Close")
	}
}
