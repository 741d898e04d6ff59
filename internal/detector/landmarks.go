// Package detector provides pose detection interfaces and types for driving the puppet.
package detector

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ayusman/kathputli/internal/geom"
)

// Joint identifies one tracked body keypoint.
type Joint int

// Tracked joints. The order is the wire order of Pose.Points.
const (
	Nose Joint = iota
	LeftEye
	RightEye
	LeftEar
	RightEar
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	NumJoints
)

var jointNames = [NumJoints]string{
	"Nose", "LeftEye", "RightEye", "LeftEar", "RightEar",
	"LeftShoulder", "RightShoulder", "LeftElbow", "RightElbow",
	"LeftWrist", "RightWrist", "LeftHip", "RightHip",
	"LeftKnee", "RightKnee", "LeftAnkle", "RightAnkle",
}

// ErrUnknownJoint is returned by ParseJoint for names outside the enumeration.
var ErrUnknownJoint = errors.New("unknown joint")

func (j Joint) String() string {
	if j < 0 || j >= NumJoints {
		return fmt.Sprintf("Joint(%d)", int(j))
	}
	return jointNames[j]
}

// ParseJoint resolves a joint by name, ignoring case.
func ParseJoint(name string) (Joint, error) {
	for i, n := range jointNames {
		if strings.EqualFold(n, name) {
			return Joint(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownJoint, name)
}

// Landmark is a single keypoint in normalized [0,1]x[0,1] image space.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Visibility float64 `json:"visibility"`
	Present    bool    `json:"present"`
}

// Point returns the normalized position as a geom.Point.
func (l Landmark) Point() geom.Point {
	return geom.Point{X: l.X, Y: l.Y}
}

// Pose is the set of landmarks found for one person in one frame.
// A nil *Pose means nobody was detected and behaves like a pose with
// every landmark absent.
type Pose struct {
	Points [NumJoints]Landmark `json:"points"`
	Score  float64             `json:"score"`
}

// Get returns the landmark for j and whether it is present.
func (p *Pose) Get(j Joint) (Landmark, bool) {
	if p == nil || j < 0 || j >= NumJoints {
		return Landmark{}, false
	}
	lm := p.Points[j]
	return lm, lm.Present
}

// Set marks j as present at (x, y).
func (p *Pose) Set(j Joint, x, y float64) {
	p.Points[j] = Landmark{X: x, Y: y, Visibility: 1, Present: true}
}

// PresentCount returns how many landmarks are present.
func (p *Pose) PresentCount() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, lm := range p.Points {
		if lm.Present {
			n++
		}
	}
	return n
}

// Clone returns a copy of p. Cloning nil returns nil.
func (p *Pose) Clone() *Pose {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
