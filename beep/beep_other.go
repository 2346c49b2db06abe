//go:build !linux && !darwin

package beep

// No chime playback on this platform.
func play([]int16) {}
