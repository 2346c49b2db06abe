package tone

import (
	"errors"
	"testing"
)

type countingEncoder struct {
	frames int
	blocks int
	peakL  int16
	fail   error
}

func (c *countingEncoder) EncodeBlock(block []int16) error {
	if c.fail != nil {
		return c.fail
	}
	c.blocks++
	c.frames += len(block) / 2
	for i := 0; i < len(block); i += 2 {
		c.peakL = max(c.peakL, block[i])
	}
	return nil
}

func TestRenderFrameCount(t *testing.T) {
	enc := &countingEncoder{}
	frames := 3*RenderBlockFrames + 100
	if err := Render(enc, DefaultSettings(), 44100, frames); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if enc.frames != frames {
		t.Errorf("frames = %d, want %d", enc.frames, frames)
	}
	if enc.blocks != 4 {
		t.Errorf("blocks = %d, want 4", enc.blocks)
	}
	if enc.peakL < 16000 {
		t.Errorf("left peak = %d, want about 16383 at volume 0.5", enc.peakL)
	}
}

func TestRenderEncoderError(t *testing.T) {
	boom := errors.New("disk full")
	err := Render(&countingEncoder{fail: boom}, DefaultSettings(), 44100, 10)
	if !errors.Is(err, boom) {
		t.Errorf("Render error = %v, want wrapped %v", err, boom)
	}
}
