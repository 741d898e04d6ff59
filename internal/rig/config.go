// Package rig turns detected pose landmarks into the handful of rotations and
// anchors that drive the puppet sprites.
package rig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ayusman/kathputli/internal/geom"
)

// AngleID names one derived rotation.
type AngleID int

// Derived rotations.
const (
	Head AngleID = iota
	LeftUpperArm
	RightUpperArm
	LeftForearm
	RightForearm
	NumAngles
)

var angleNames = [NumAngles]string{"Head", "LeftUpperArm", "RightUpperArm", "LeftForearm", "RightForearm"}

// ErrUnknownAngle is returned by ParseAngle for names outside the enumeration.
var ErrUnknownAngle = errors.New("unknown rig joint")

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid rig config")

func (a AngleID) String() string {
	if a < 0 || a >= NumAngles {
		return fmt.Sprintf("AngleID(%d)", int(a))
	}
	return angleNames[a]
}

// ParseAngle resolves a derived rotation by name, ignoring case.
func ParseAngle(name string) (AngleID, error) {
	for i, n := range angleNames {
		if strings.EqualFold(n, name) {
			return AngleID(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAngle, name)
}

// Calibration adjusts one raw geometric angle to sprite space.
type Calibration struct {
	// Offset is subtracted from the raw angle (radians).
	Offset float64 `json:"offset" yaml:"offset"`
	// Clamp, when set, bounds the calibrated angle.
	Clamp *geom.Range `json:"clamp,omitempty" yaml:"clamp,omitempty"`
}

// Apply calibrates a raw angle.
func (c Calibration) Apply(raw float64) float64 {
	return c.Clamp.Apply(raw - c.Offset)
}

// Config is the static rig calibration. It is built once at startup and
// only read afterwards.
type Config struct {
	// Canvas is the target canvas; normalized deltas are scaled by it.
	Canvas geom.Size `json:"canvas"`
	// Joints holds one calibration per derived rotation.
	Joints [NumAngles]Calibration `json:"joints"`
	// BodyTilt weights the shoulder-line angle added to the head rotation.
	// Zero disables the term.
	BodyTilt float64 `json:"body_tilt"`
	// RestAnchor is the torso anchor used when the nose is not detected.
	RestAnchor geom.Point `json:"rest_anchor"`
}

// Reference calibration for the bundled sprite set. These were fit by eye
// against the artwork and have no anatomical derivation.
const (
	DefaultUpperArmOffset = 1.52
	DefaultForearmOffset  = 1.0947
	DefaultCanvasWidth    = 800
	DefaultCanvasHeight   = 600
)

// DefaultRestAnchor is the torso anchor at which the reference puppet,
// drawn in tracked mode, sits exactly on its fixed layout.
var DefaultRestAnchor = geom.Pt(400, 465)

// DefaultConfig returns the reference rig for the bundled sprites.
func DefaultConfig() Config {
	cfg := Config{
		Canvas:     geom.Size{W: DefaultCanvasWidth, H: DefaultCanvasHeight},
		RestAnchor: DefaultRestAnchor,
	}
	cfg.Joints[LeftUpperArm] = Calibration{Offset: DefaultUpperArmOffset}
	cfg.Joints[RightUpperArm] = Calibration{
		Offset: DefaultUpperArmOffset,
		Clamp:  &geom.Range{Min: 0.2, Max: 1.21},
	}
	cfg.Joints[LeftForearm] = Calibration{Offset: DefaultForearmOffset}
	cfg.Joints[RightForearm] = Calibration{Offset: DefaultForearmOffset}
	return cfg
}

// Validate checks the canvas and clamp ranges.
func (c Config) Validate() error {
	if c.Canvas.W <= 0 || c.Canvas.H <= 0 {
		return fmt.Errorf("%w: canvas %vx%v", ErrInvalidConfig, c.Canvas.W, c.Canvas.H)
	}
	for id, cal := range c.Joints {
		if !cal.Clamp.Valid() {
			return fmt.Errorf("%w: %s clamp min %v > max %v",
				ErrInvalidConfig, AngleID(id), cal.Clamp.Min, cal.Clamp.Max)
		}
	}
	return nil
}
