// Package overlay draws the diagnostic views: a stick figure on white and
// the bare skeleton on black.
package overlay

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/kathputli/internal/detector"
)

// HeadRadius is the stick figure's head radius in pixels.
const HeadRadius = 15

// Bone connects two joints.
type Bone struct {
	From, To detector.Joint
}

// StickBones are the limbs of the stick figure. The nose stands in for the neck.
var StickBones = []Bone{
	{detector.Nose, detector.LeftShoulder}, {detector.Nose, detector.RightShoulder},
	{detector.LeftShoulder, detector.LeftElbow}, {detector.LeftElbow, detector.LeftWrist},
	{detector.RightShoulder, detector.RightElbow}, {detector.RightElbow, detector.RightWrist},
	{detector.LeftShoulder, detector.LeftHip}, {detector.RightShoulder, detector.RightHip},
	{detector.LeftHip, detector.LeftKnee}, {detector.LeftKnee, detector.LeftAnkle},
	{detector.RightHip, detector.RightKnee}, {detector.RightKnee, detector.RightAnkle},
}

// SkeletonBones are the connections drawn in the silhouette view.
var SkeletonBones = []Bone{
	{detector.Nose, detector.LeftEye}, {detector.LeftEye, detector.LeftEar},
	{detector.Nose, detector.RightEye}, {detector.RightEye, detector.RightEar},
	{detector.LeftShoulder, detector.RightShoulder},
	{detector.LeftShoulder, detector.LeftElbow}, {detector.LeftElbow, detector.LeftWrist},
	{detector.RightShoulder, detector.RightElbow}, {detector.RightElbow, detector.RightWrist},
	{detector.LeftShoulder, detector.LeftHip}, {detector.RightShoulder, detector.RightHip},
	{detector.LeftHip, detector.RightHip},
	{detector.LeftHip, detector.LeftKnee}, {detector.LeftKnee, detector.LeftAnkle},
	{detector.RightHip, detector.RightKnee}, {detector.RightKnee, detector.RightAnkle},
}

// Segment is a line in pixel coordinates.
type Segment struct {
	From, To image.Point
}

// Figure is the geometry of one drawing, independent of any bitmap.
type Figure struct {
	Segments []Segment
	Dots     []image.Point
	// Head is the center of a filled circle when HasHead is set.
	Head    image.Point
	HasHead bool
}

// StickFigure lays out the stick figure for a frame of the given pixel size.
// Bones with an absent end are left out; the head sits HeadRadius above the nose.
func StickFigure(pose *detector.Pose, width, height int) Figure {
	fig := Figure{Segments: segments(pose, StickBones, width, height)}
	if nose, ok := pixel(pose, detector.Nose, width, height); ok {
		fig.Head = image.Pt(nose.X, nose.Y-HeadRadius)
		fig.HasHead = true
	}
	return fig
}

// Skeleton lays out every present landmark and the bones between them.
func Skeleton(pose *detector.Pose, width, height int) Figure {
	fig := Figure{Segments: segments(pose, SkeletonBones, width, height)}
	for j := detector.Joint(0); j < detector.NumJoints; j++ {
		if p, ok := pixel(pose, j, width, height); ok {
			fig.Dots = append(fig.Dots, p)
		}
	}
	return fig
}

func segments(pose *detector.Pose, bones []Bone, width, height int) []Segment {
	var out []Segment
	for _, b := range bones {
		from, ok1 := pixel(pose, b.From, width, height)
		to, ok2 := pixel(pose, b.To, width, height)
		if ok1 && ok2 {
			out = append(out, Segment{From: from, To: to})
		}
	}
	return out
}

func pixel(pose *detector.Pose, j detector.Joint, width, height int) (image.Point, bool) {
	lm, ok := pose.Get(j)
	if !ok {
		return image.Point{}, false
	}
	return image.Pt(int(lm.X*float64(width)), int(lm.Y*float64(height))), true
}

var (
	black = color.RGBA{0, 0, 0, 255}
	white = color.RGBA{255, 255, 255, 255}
)

// Draw renders fig onto dst with the given ink.
func Draw(dst *gocv.Mat, fig Figure, ink color.RGBA, thickness int) {
	for _, s := range fig.Segments {
		gocv.Line(dst, s.From, s.To, ink, thickness)
	}
	for _, d := range fig.Dots {
		gocv.Circle(dst, d, 2, ink, -1)
	}
	if fig.HasHead {
		gocv.Circle(dst, fig.Head, HeadRadius, ink, -1)
	}
}

// RenderStickman returns a new BGR frame with the stick figure in black on
// white. A nil pose yields a blank white frame. The caller closes the Mat.
func RenderStickman(pose *detector.Pose, width, height int) gocv.Mat {
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), height, width, gocv.MatTypeCV8UC3)
	Draw(&mat, StickFigure(pose, width, height), black, 2)
	return mat
}

// RenderSilhouette returns a new BGR frame with the skeleton in white on
// black. The caller closes the Mat.
func RenderSilhouette(pose *detector.Pose, width, height int) gocv.Mat {
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(0, 0, 0, 0))
	Draw(&mat, Skeleton(pose, width, height), white, 2)
	return mat
}
