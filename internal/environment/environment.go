// Package environment models the small ambient state (air quality and
// temperature) that picks sprite variants and the advisory banner.
//
// State is a value. The frame driver owns the only copy and replaces it
// between frames by applying Events; renderers only read it.
package environment

import (
	"fmt"

	"github.com/ayusman/kathputli/internal/geom"
)

// Bounds and thresholds.
const (
	MinAirIndex = 0
	MaxAirIndex = 100

	MinTemperature = -30.0
	MaxTemperature = 50.0

	// MaskThreshold is the air index below which the mask head is worn.
	MaskThreshold = 40
	// ColdThreshold is the temperature (°C) below which the coat is worn.
	ColdThreshold = 5.0

	// AirStep and TemperatureStep are the increments applied per event.
	AirStep         = 10
	TemperatureStep = 5.0

	// MaxShiver is the largest per-pixel jitter, in pixels, reached at MinTemperature.
	MaxShiver = 3.0
)

// Sprite part identifiers chosen by the selectors.
const (
	HeadDefault = "Head"
	HeadMask    = "HeadMask"
	BodyDefault = "Body"
	BodyCoat    = "BodyCoat"
)

// State is the ambient condition for a frame.
type State struct {
	AirIndex    int     `json:"air_index" yaml:"air_index"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// Default returns clean air at room temperature.
func Default() State {
	return State{AirIndex: 80, Temperature: 20}
}

// Normalize clamps both values into their bounds.
func (s State) Normalize() State {
	s.AirIndex = int(geom.Clamp(float64(s.AirIndex), MinAirIndex, MaxAirIndex))
	s.Temperature = geom.Clamp(s.Temperature, MinTemperature, MaxTemperature)
	return s
}

// Event is a discrete change to the state, typically a key press.
type Event string

// Known events.
const (
	AirUp   Event = "air_up"
	AirDown Event = "air_down"
	Warmer  Event = "warmer"
	Colder  Event = "colder"
	Reset   Event = "reset"
)

// ParseEvent validates an event name.
func ParseEvent(name string) (Event, error) {
	switch e := Event(name); e {
	case AirUp, AirDown, Warmer, Colder, Reset:
		return e, nil
	}
	return "", fmt.Errorf("unknown environment event %q", name)
}

// Apply returns the state after ev. Unknown events leave it unchanged.
func (s State) Apply(ev Event) State {
	switch ev {
	case AirUp:
		s.AirIndex += AirStep
	case AirDown:
		s.AirIndex -= AirStep
	case Warmer:
		s.Temperature += TemperatureStep
	case Colder:
		s.Temperature -= TemperatureStep
	case Reset:
		s = Default()
	}
	return s.Normalize()
}

// SelectHeadSprite returns the head part for the state.
func SelectHeadSprite(s State) string {
	if s.AirIndex < MaskThreshold {
		return HeadMask
	}
	return HeadDefault
}

// SelectBodySprite returns the body part for the state.
func SelectBodySprite(s State) string {
	if s.Temperature < ColdThreshold {
		return BodyCoat
	}
	return BodyDefault
}

// Advisory reports whether a warning banner should be shown, and its text.
func Advisory(s State) (bool, string) {
	if s.AirIndex < MaskThreshold {
		return true, fmt.Sprintf("Air quality %d: wear a mask outdoors", s.AirIndex)
	}
	return false, ""
}

// ShiverAmplitude returns the sprite jitter in pixels: zero at or above the
// cold threshold, rising linearly to MaxShiver at MinTemperature.
func ShiverAmplitude(s State) float64 {
	if s.Temperature >= ColdThreshold {
		return 0
	}
	t := (ColdThreshold - s.Temperature) / (ColdThreshold - MinTemperature)
	return geom.Lerp(0, MaxShiver, t)
}
