package encoder

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// FlacEncoder writes verbatim stereo FLAC frames. When the destination is
// an io.Seeker, Close rewrites the stream header with the final sample
// count.
type FlacEncoder struct {
	buf         *bytes.Buffer
	enc         *flac.Encoder
	sampleRate  uint32
	totalFrames uint64
	encodeTime  time.Duration
	mu          sync.Mutex
}

// NewFlac encodes into memory; read the result with Bytes after Close.
func NewFlac(sampleRate uint32) (*FlacEncoder, error) {
	buf := &bytes.Buffer{}
	e, err := NewFlacWriter(buf, sampleRate)
	if err != nil {
		return nil, err
	}
	e.buf = buf
	return e, nil
}

// NewFlacWriter encodes into w. Close closes w if it is an io.Closer.
func NewFlacWriter(w io.Writer, sampleRate uint32) (*FlacEncoder, error) {
	info := &meta.StreamInfo{
		BlockSizeMin:  BlockSize,
		BlockSizeMax:  BlockSize,
		SampleRate:    sampleRate,
		NChannels:     Channels,
		BitsPerSample: BitsPerSample,
		NSamples:      0,
	}
	enc, err := flac.NewEncoder(w, info)
	if err != nil {
		return nil, fmt.Errorf("creating flac encoder: %w", err)
	}
	return &FlacEncoder{enc: enc, sampleRate: sampleRate}, nil
}

// EncodeBlock writes one frame from interleaved left/right samples. Blocks
// may not exceed BlockSize frames.
func (e *FlacEncoder) EncodeBlock(block []int16) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(block) / Channels
	if n == 0 {
		return nil
	}
	if n > BlockSize {
		return fmt.Errorf("block of %d frames exceeds %d", n, BlockSize)
	}

	left := make([]int32, n)
	right := make([]int32, n)
	for i := 0; i < n; i++ {
		left[i] = int32(block[i*2])
		right[i] = int32(block[i*2+1])
	}

	f := &frame.Frame{
		Header: frame.Header{
			BlockSize:     uint16(n),
			SampleRate:    e.sampleRate,
			Channels:      frame.ChannelsLR,
			BitsPerSample: BitsPerSample,
		},
		Subframes: []*frame.Subframe{
			verbatim(left),
			verbatim(right),
		},
	}

	if err := e.enc.WriteFrame(f); err != nil {
		return fmt.Errorf("writing flac frame: %w", err)
	}
	e.totalFrames += uint64(n)
	return nil
}

func verbatim(samples []int32) *frame.Subframe {
	return &frame.Subframe{
		SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
		Samples:   samples,
		NSamples:  len(samples),
	}
}

func (e *FlacEncoder) Close() error {
	return e.enc.Close()
}

// Bytes returns the encoded stream of an in-memory encoder, nil otherwise.
func (e *FlacEncoder) Bytes() []byte {
	if e.buf == nil {
		return nil
	}
	return e.buf.Bytes()
}

func (e *FlacEncoder) TotalFrames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalFrames
}

func (e *FlacEncoder) AddEncodeTime(d time.Duration) {
	e.mu.Lock()
	e.encodeTime += d
	e.mu.Unlock()
}

func (e *FlacEncoder) EncodeTime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.encodeTime
}
