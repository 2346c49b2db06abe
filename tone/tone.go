// Package tone implements the binaural tone engine: two sine oscillators
// panned hard left and right, a shared volume node, an analyser tap and the
// visualization loop that reads it.
package tone

import (
	"errors"
	"math"
	"strings"
)

var ErrUnknownPreset = errors.New("unknown preset")

// DeriveChannels splits a carrier into the left and right ear frequencies.
// Inputs are not validated; negative results pass through.
func DeriveChannels(carrierHz, beatHz float64) (leftHz, rightHz float64) {
	half := beatHz / 2
	return carrierHz - half, carrierHz + half
}

// Range bounds an operator control.
type Range struct {
	Min  float64
	Max  float64
	Step float64
}

func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Min
	}
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Nudge moves v by steps increments of Step and clamps the result.
func (r Range) Nudge(v float64, steps int) float64 {
	return r.Clamp(v + float64(steps)*r.Step)
}

type Controls struct {
	Carrier Range
	Beat    Range
	Volume  Range
}

func DefaultControls() Controls {
	return Controls{
		Carrier: Range{Min: 50, Max: 1000, Step: 1},
		Beat:    Range{Min: 0.5, Max: 40, Step: 0.5},
		Volume:  Range{Min: 0, Max: 1, Step: 0.05},
	}
}

type Settings struct {
	CarrierHz float64
	BeatHz    float64
	Volume    float64
}

func DefaultSettings() Settings {
	return Settings{CarrierHz: 200, BeatHz: 10, Volume: 0.5}
}

// Clamp forces every field into its control range.
func (s Settings) Clamp(c Controls) Settings {
	return Settings{
		CarrierHz: c.Carrier.Clamp(s.CarrierHz),
		BeatHz:    c.Beat.Clamp(s.BeatHz),
		Volume:    c.Volume.Clamp(s.Volume),
	}
}

type Preset struct {
	Name      string
	CarrierHz float64
	BeatHz    float64
}

var DefaultPresets = []Preset{
	{Name: "delta", CarrierHz: 100, BeatHz: 2},
	{Name: "theta", CarrierHz: 150, BeatHz: 6},
	{Name: "alpha", CarrierHz: 200, BeatHz: 10},
	{Name: "beta", CarrierHz: 250, BeatHz: 20},
	{Name: "gamma", CarrierHz: 300, BeatHz: 40},
}

// FindPreset looks a preset up by case-insensitive name.
func FindPreset(presets []Preset, name string) (Preset, error) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Preset{}, ErrUnknownPreset
}
