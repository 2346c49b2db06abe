package track

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"hum/audio"
	"hum/encoder"
)

// writeRamp writes a stereo FLAC whose left channel counts up from 0 and
// right channel counts down.
func writeRamp(t *testing.T, frames int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ramp.flac")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := encoder.NewFlacWriter(f, 22050)
	if err != nil {
		t.Fatalf("NewFlacWriter: %v", err)
	}
	block := make([]int16, frames*2)
	for i := 0; i < frames; i++ {
		block[i*2] = int16(i)
		block[i*2+1] = int16(-i)
	}
	if err := enc.EncodeBlock(block); err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}

func loadFake(t *testing.T, path string) (*Track, *audio.FakeContext) {
	t.Helper()
	fake := audio.NewFakeContext(false)
	tr, err := Load(path, func() (audio.Context, error) { return fake, nil }, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(tr.Close)
	return tr, fake
}

func TestDecode(t *testing.T) {
	path := writeRamp(t, 100)
	samples, rate, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rate != 22050 {
		t.Errorf("rate = %d, want 22050", rate)
	}
	if len(samples) != 200 {
		t.Fatalf("samples = %d, want 200", len(samples))
	}
	if samples[20] != 10 || samples[21] != -10 {
		t.Errorf("frame 10 = (%d, %d), want (10, -10)", samples[20], samples[21])
	}
}

func TestDecodeMissingFile(t *testing.T) {
	if _, _, err := Decode(filepath.Join(t.TempDir(), "nope.flac")); err == nil {
		t.Error("Decode of missing file succeeded")
	}
}

func TestPlayLoops(t *testing.T) {
	tr, fake := loadFake(t, writeRamp(t, 10))
	if err := tr.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	buf := fake.Last().Pull(15)
	// Frame 12 wraps to source frame 2.
	if buf[24] != 2 || buf[25] != -2 {
		t.Errorf("frame 12 = (%d, %d), want (2, -2)", buf[24], buf[25])
	}
	if tr.Position() != 5 {
		t.Errorf("Position = %d, want 5", tr.Position())
	}
}

func TestPauseKeepsPositionRewindResets(t *testing.T) {
	tr, fake := loadFake(t, writeRamp(t, 50))
	tr.Play()
	fake.Last().Pull(7)
	tr.Pause()
	if tr.Playing() || fake.Active() != 0 {
		t.Fatal("still playing after Pause")
	}
	if tr.Position() != 7 {
		t.Errorf("Position after pause = %d, want 7", tr.Position())
	}

	tr.Play()
	buf := fake.Last().Pull(1)
	if buf[0] != 7 {
		t.Errorf("resumed at %d, want 7", buf[0])
	}

	tr.Rewind()
	buf = fake.Last().Pull(1)
	if buf[0] != 0 {
		t.Errorf("after rewind got %d, want 0", buf[0])
	}
}

func TestVolumeScalesSamples(t *testing.T) {
	tr, fake := loadFake(t, writeRamp(t, 50))
	tr.SetVolume(0.5)
	tr.Play()
	buf := fake.Last().Pull(41)
	if buf[80] != 20 {
		t.Errorf("frame 40 at half volume = %d, want 20", buf[80])
	}
	tr.SetVolume(7)
	if tr.Volume() != 1 {
		t.Errorf("Volume = %g, want clamped 1", tr.Volume())
	}
}

func TestPlayContextFailure(t *testing.T) {
	boom := errors.New("no server")
	tr, err := Load(writeRamp(t, 5), func() (audio.Context, error) { return nil, boom }, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := tr.Play(); !errors.Is(err, boom) {
		t.Errorf("Play = %v, want wrapped %v", err, boom)
	}
	if tr.Playing() {
		t.Error("Playing after failed Play")
	}
}
