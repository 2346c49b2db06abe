package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"hum/audio"
	"hum/beep"
	"hum/config"
	"hum/log"
	"hum/pomodoro"
	"hum/tone"
)

// testSink prints the events a script can wait on. Tone and timer changes
// only go to the diagnostics log.
type testSink struct {
	mu  sync.Mutex
	out io.Writer
}

func (s *testSink) println(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format+"\n", args...)
}

func (s *testSink) ToneChanged(tone.Snapshot)      {}
func (s *testSink) TimerChanged(pomodoro.Snapshot) {}
func (s *testSink) TimerFinished(snap pomodoro.Snapshot) {
	s.println("FINISHED %s remaining=%s", snap.Name, pomodoro.Format(snap.Remaining))
}
func (s *testSink) Notice(text string)     { s.println("NOTICE %s", text) }
func (s *testSink) DeviceLine(text string) {}

// testEnv is the headless driver behind --test. Audio goes to a realtime
// fake context and both timers run on fake clocks advanced by TICK.
type testEnv struct {
	app      *app
	out      *testSink
	toneCtx  *audio.FakeContext
	trackCtx *audio.FakeContext
	clocks   [2]*pomodoro.FakeClock
}

func newTestEnv(out io.Writer, cfg config.Config) *testEnv {
	e := &testEnv{
		out:      &testSink{out: out},
		toneCtx:  audio.NewFakeContext(true),
		trackCtx: audio.NewFakeContext(true),
		clocks:   [2]*pomodoro.FakeClock{pomodoro.NewFakeClock(), pomodoro.NewFakeClock()},
	}
	e.app = newApp(appOptions{
		cfg:          cfg,
		newContext:   func() (audio.Context, error) { return e.toneCtx, nil },
		trackContext: func() (audio.Context, error) { return e.trackCtx, nil },
		clock:        e.clocks[pomodoro.Classic],
		siteClock:    e.clocks[pomodoro.Site],
		sink:         e.out,
	})
	return e
}

func runTestMode(in io.Reader, out io.Writer, cfg config.Config) error {
	beep.Disable()

	if err := log.Init(); err != nil {
		logErrf("Warning: could not init logging: %v\n", err)
	}
	defer log.Close()
	log.SessionStart(version, "test")

	e := newTestEnv(out, cfg)
	defer func() {
		e.app.close()
		log.SessionEnd(e.app.engine.Sessions())
	}()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "QUIT" {
			return nil
		}
		if err := e.exec(line); err != nil {
			e.out.println("ERROR %v", err)
			log.Warnf("test command %q: %v", line, err)
		}
	}
	return scanner.Err()
}

func (e *testEnv) exec(line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	a := e.app
	switch cmd {
	case "START":
		return a.startTone()
	case "STOP":
		a.stopTone()
	case "TOGGLE":
		return a.toggleTone()
	case "CARRIER", "BEAT", "VOLUME":
		v, err := floatArg(args)
		if err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}
		switch cmd {
		case "CARRIER":
			a.setCarrier(v)
		case "BEAT":
			a.setBeat(v)
		default:
			a.setVolume(v)
		}
	case "PRESET":
		if len(args) != 1 {
			return fmt.Errorf("PRESET needs a name")
		}
		return a.applyPreset(args[0])
	case "TIMER":
		return e.execTimer(args)
	case "SLEEP":
		ms, err := intArg(args)
		if err != nil {
			return fmt.Errorf("SLEEP: %w", err)
		}
		time.Sleep(time.Duration(ms) * time.Millisecond)
	case "STATUS":
		e.out.println("%s", e.status())
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (e *testEnv) execTimer(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("TIMER needs a variant and an action")
	}
	v, err := pomodoro.ParseVariant(args[0])
	if err != nil {
		return err
	}
	t := e.app.timer(v)
	action, rest := args[1], args[2:]
	switch action {
	case "START":
		t.Start()
	case "STOP":
		t.Stop()
	case "RESET":
		t.Reset()
	case "TOGGLE":
		t.Toggle()
	case "ADJUST":
		n, err := intArg(rest)
		if err != nil {
			return fmt.Errorf("ADJUST: %w", err)
		}
		return t.Adjust(n)
	case "VOLUME":
		n, err := intArg(rest)
		if err != nil {
			return fmt.Errorf("VOLUME: %w", err)
		}
		return t.SetVolume(n)
	case "TICK":
		n, err := intArg(rest)
		if err != nil {
			return fmt.Errorf("TICK: %w", err)
		}
		e.clocks[v].Advance(n)
	default:
		return fmt.Errorf("unknown timer action %q", action)
	}
	return nil
}

// status is one line with every readout the display would show.
func (e *testEnv) status() string {
	s := e.app.engine.Snapshot()
	c := e.app.classic.Snapshot()
	site := e.app.site.Snapshot()
	return fmt.Sprintf("STATUS running=%t carrier=%g beat=%g left=%g right=%g volume=%g playbacks=%d "+
		"classic=%s classic_running=%t site=%s site_running=%t site_volume=%d",
		s.Running, s.CarrierHz, s.BeatHz, s.LeftHz, s.RightHz, s.Volume, e.toneCtx.Active(),
		pomodoro.Format(c.Remaining), c.Running, pomodoro.Format(site.Remaining), site.Running, site.TrackVolume)
}

func floatArg(args []string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one number")
	}
	return strconv.ParseFloat(args[0], 64)
}

func intArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one integer")
	}
	return strconv.Atoi(args[0])
}
