package rig

import (
	"github.com/ayusman/kathputli/internal/detector"
	"github.com/ayusman/kathputli/internal/geom"
)

// Output is the rig state for one frame. Rotations are in radians.
type Output struct {
	Head          float64    `json:"head"`
	LeftUpperArm  float64    `json:"left_upper_arm"`
	RightUpperArm float64    `json:"right_upper_arm"`
	LeftForearm   float64    `json:"left_forearm"`
	RightForearm  float64    `json:"right_forearm"`
	TorsoAnchor   geom.Point `json:"torso_anchor"`
	// TorsoTracked is false when TorsoAnchor is the rest anchor.
	TorsoTracked bool `json:"torso_tracked"`
}

// Rotation returns the rotation for id, or 0 for an unknown id.
func (o Output) Rotation(id AngleID) float64 {
	switch id {
	case Head:
		return o.Head
	case LeftUpperArm:
		return o.LeftUpperArm
	case RightUpperArm:
		return o.RightUpperArm
	case LeftForearm:
		return o.LeftForearm
	case RightForearm:
		return o.RightForearm
	}
	return 0
}

func (o *Output) setRotation(id AngleID, v float64) {
	switch id {
	case Head:
		o.Head = v
	case LeftUpperArm:
		o.LeftUpperArm = v
	case RightUpperArm:
		o.RightUpperArm = v
	case LeftForearm:
		o.LeftForearm = v
	case RightForearm:
		o.RightForearm = v
	}
}

// Neutral returns the output used when nothing is detected.
func Neutral(cfg Config) Output {
	return Output{TorsoAnchor: cfg.RestAnchor}
}

// segment is the pair of joints whose direction gives a limb rotation.
type segment struct {
	from, to detector.Joint
}

var limbSegments = map[AngleID]segment{
	LeftUpperArm:  {detector.LeftShoulder, detector.LeftElbow},
	RightUpperArm: {detector.RightShoulder, detector.RightElbow},
	LeftForearm:   {detector.LeftElbow, detector.LeftWrist},
	RightForearm:  {detector.RightElbow, detector.RightWrist},
}

// Compute derives the rig output for one pose.
//
// Each value is computed independently. A value whose landmarks are missing
// keeps its neutral default, so partial occlusion only freezes the affected
// parts. A nil pose yields Neutral(cfg). Compute keeps no state between calls.
func Compute(pose *detector.Pose, cfg Config) Output {
	out := Neutral(cfg)

	for id, seg := range limbSegments {
		if raw, ok := segmentAngle(pose, seg, cfg.Canvas); ok {
			out.setRotation(id, cfg.Joints[id].Apply(raw))
		}
	}

	if head, ok := headAngle(pose, cfg); ok {
		out.Head = head
	}

	if nose, ok := pose.Get(detector.Nose); ok {
		out.TorsoAnchor = geom.ToCanvas(nose.X, nose.Y, cfg.Canvas)
		out.TorsoTracked = true
	}

	return out
}

func segmentAngle(pose *detector.Pose, seg segment, canvas geom.Size) (float64, bool) {
	a, okA := pose.Get(seg.from)
	b, okB := pose.Get(seg.to)
	if !okA || !okB {
		return 0, false
	}
	return geom.ScaledAngle(a.Point(), b.Point(), canvas), true
}

// headAngle is the eye-line angle in normalized space, plus the weighted
// shoulder-line tilt when BodyTilt is set and both shoulders are visible.
func headAngle(pose *detector.Pose, cfg Config) (float64, bool) {
	left, okL := pose.Get(detector.LeftEye)
	right, okR := pose.Get(detector.RightEye)
	if !okL || !okR {
		return 0, false
	}

	raw := geom.Angle(left.Point(), right.Point())
	if cfg.BodyTilt != 0 {
		shoulders := segment{detector.RightShoulder, detector.LeftShoulder}
		if tilt, ok := segmentAngle(pose, shoulders, cfg.Canvas); ok {
			raw += cfg.BodyTilt * tilt
		}
	}

	return cfg.Joints[Head].Apply(raw), true
}
