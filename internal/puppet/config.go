package puppet

import (
	"fmt"

	"github.com/ayusman/kathputli/internal/geom"
)

// AnchorMode selects whether the puppet stays put or follows the tracked torso.
type AnchorMode string

const (
	// AnchorFixed pins every part to its configured canvas position.
	AnchorFixed AnchorMode = "fixed"
	// AnchorTracked shifts the whole puppet with the rig's torso anchor.
	AnchorTracked AnchorMode = "tracked"
)

// ChainMode selects how forearms are placed.
type ChainMode string

const (
	// ChainIndependent places each forearm at its own configured anchor.
	ChainIndependent ChainMode = "independent"
	// ChainChained hangs each forearm from the rotated end of its upper arm.
	ChainChained ChainMode = "chained"
)

// Limb places one arm.
type Limb struct {
	// UpperAnchor is the canvas position of the upper arm's pivot.
	UpperAnchor geom.Point `json:"upper_anchor" yaml:"upper_anchor"`
	// ForearmAnchor is the forearm pivot position in independent mode.
	ForearmAnchor geom.Point `json:"forearm_anchor" yaml:"forearm_anchor"`
	// Reach is +1 when the upper-arm sprite extends toward +x at rest, -1 toward -x.
	Reach float64 `json:"reach" yaml:"reach"`
	// Correction is an empirical pixel nudge added to the chained forearm position.
	Correction geom.Point `json:"correction" yaml:"correction"`
}

// Config is the static renderer configuration.
type Config struct {
	Anchor AnchorMode `json:"anchor" yaml:"anchor"`
	Chain  ChainMode  `json:"chain" yaml:"chain"`

	// BodyAnchor is the body's bottom-center point in fixed mode.
	BodyAnchor geom.Point `json:"body_anchor" yaml:"body_anchor"`
	// TrackedOffset is the body's bottom-center relative to the tracked torso anchor.
	TrackedOffset geom.Point `json:"tracked_offset" yaml:"tracked_offset"`
	// HeadOffset is the head pivot relative to BodyAnchor.
	HeadOffset geom.Point `json:"head_offset" yaml:"head_offset"`

	Left  Limb `json:"left" yaml:"left"`
	Right Limb `json:"right" yaml:"right"`

	// ShowForearms draws forearm sprites; early rigs had upper arms only.
	ShowForearms bool `json:"show_forearms" yaml:"show_forearms"`
	// EnvironmentSprites swaps head and body variants by environment state.
	EnvironmentSprites bool `json:"environment_sprites" yaml:"environment_sprites"`
}

// DefaultConfig returns the reference layout for an 800x600 canvas.
func DefaultConfig() Config {
	return Config{
		Anchor:        AnchorFixed,
		Chain:         ChainIndependent,
		BodyAnchor:    geom.Pt(400, 600),
		TrackedOffset: geom.Pt(0, 135),
		HeadOffset:    geom.Pt(0, -135),
		Left: Limb{
			UpperAnchor:   geom.Pt(330, 500),
			ForearmAnchor: geom.Pt(290, 560),
			Reach:         -1,
			Correction:    geom.Pt(6, -4),
		},
		Right: Limb{
			UpperAnchor:   geom.Pt(470, 500),
			ForearmAnchor: geom.Pt(510, 560),
			Reach:         1,
			Correction:    geom.Pt(-6, -4),
		},
		ShowForearms:       true,
		EnvironmentSprites: true,
	}
}

// Validate checks the mode names.
func (c Config) Validate() error {
	switch c.Anchor {
	case AnchorFixed, AnchorTracked:
	default:
		return fmt.Errorf("unknown anchor mode %q", c.Anchor)
	}
	switch c.Chain {
	case ChainIndependent, ChainChained:
	default:
		return fmt.Errorf("unknown chain mode %q", c.Chain)
	}
	return nil
}

// requiredParts lists every part the configuration can emit.
func (c Config) requiredParts() []PartID {
	ids := []PartID{Body, Head, LeftUpperArm, RightUpperArm}
	if c.ShowForearms {
		ids = append(ids, LeftForearm, RightForearm)
	}
	if c.EnvironmentSprites {
		ids = append(ids, BodyCoat, HeadMask)
	}
	return ids
}
