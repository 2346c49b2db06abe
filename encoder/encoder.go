// Package encoder turns rendered tone blocks into FLAC.
package encoder

const (
	// BlockSize is the largest block EncodeBlock accepts, in frames.
	BlockSize = 4096

	BitsPerSample = 16
	Channels      = 2
)
