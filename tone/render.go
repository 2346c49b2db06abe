package tone

import "fmt"

// BlockEncoder consumes interleaved stereo int16 blocks.
type BlockEncoder interface {
	EncodeBlock(block []int16) error
}

// RenderBlockFrames is the number of frames handed to the encoder per block.
const RenderBlockFrames = 4096

// Render synthesizes frames of binaural audio offline with the same node
// chain a live session uses.
func Render(enc BlockEncoder, s Settings, sampleRate uint32, frames int) error {
	left, right := DeriveChannels(s.CarrierHz, s.BeatHz)
	lo, ro := NewOscillator(left), NewOscillator(right)

	graph := NewGraph(float64(sampleRate), NewGain(s.Volume), nil)
	graph.Connect(lo, NewPanner(-1))
	graph.Connect(ro, NewPanner(1))
	if err := lo.Start(); err != nil {
		return err
	}
	if err := ro.Start(); err != nil {
		return err
	}
	defer lo.Stop()
	defer ro.Stop()

	block := make([]int16, RenderBlockFrames*2)
	for done := 0; done < frames; {
		n := min(RenderBlockFrames, frames-done)
		buf := block[:n*2]
		graph.Render(buf)
		if err := enc.EncodeBlock(buf); err != nil {
			return fmt.Errorf("encoding block at frame %d: %w", done, err)
		}
		done += n
	}
	return nil
}
