// Package geom holds the small amount of 2D math shared by the rig and the renderer.
//
// Coordinates follow the image convention: x grows to the right, y grows downward.
// Rotations are counter-clockwise as seen on screen, in radians.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Point is a position or displacement in canvas space.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p scaled by k.
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Round returns the nearest integer pixel coordinates.
func (p Point) Round() (int, int) {
	return int(math.Round(p.X)), int(math.Round(p.Y))
}

// Size is a width and height in pixels.
type Size struct {
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// ToCanvas maps a normalized [0,1]x[0,1] position into canvas pixels.
func ToCanvas(x, y float64, canvas Size) Point {
	return Point{X: x * canvas.W, Y: y * canvas.H}
}

// Angle returns atan2(dy, dx) of the vector from a to b.
func Angle(a, b Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// ScaledAngle is Angle for normalized points, with dx and dy scaled to the
// canvas first so that non-square canvases do not skew the result.
func ScaledAngle(a, b Point, canvas Size) float64 {
	return math.Atan2((b.Y-a.Y)*canvas.H, (b.X-a.X)*canvas.W)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates between a and b. t is clamped to [0, 1].
func Lerp(a, b, t float64) float64 {
	t = Clamp(t, 0, 1)
	return a + (b-a)*t
}

// Range is a closed interval used to clamp a joint rotation.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Apply clamps v into the range. A nil range leaves v unchanged.
func (r *Range) Apply(v float64) float64 {
	if r == nil {
		return v
	}
	return Clamp(v, r.Min, r.Max)
}

// Valid reports whether Min <= Max.
func (r *Range) Valid() bool {
	return r == nil || r.Min <= r.Max
}

// Rotate turns v counter-clockwise (on screen) by angle radians.
func Rotate(v Point, angle float64) Point {
	// Screen y points down, so a visual CCW turn is a mathematical CW turn.
	out := mgl64.Rotate2D(-angle).Mul2x1(mgl64.Vec2{v.X, v.Y})
	return Point{X: out.X(), Y: out.Y()}
}

// RotatedExtent returns the bounding box size of a w x h rectangle rotated by angle.
func RotatedExtent(w, h, angle float64) Size {
	c := math.Abs(math.Cos(angle))
	s := math.Abs(math.Sin(angle))
	return Size{W: w*c + h*s, H: w*s + h*c}
}

// Rect is an axis-aligned rectangle described by its top-left corner and size.
type Rect struct {
	Min  Point
	Size Size
}

// RectCentered returns the rect of the given size whose center is c.
func RectCentered(size Size, c Point) Rect {
	return Rect{Min: Point{X: c.X - size.W/2, Y: c.Y - size.H/2}, Size: size}
}

// RectMidBottom returns the rect of the given size whose bottom edge midpoint is p.
func RectMidBottom(size Size, p Point) Rect {
	return Rect{Min: Point{X: p.X - size.W/2, Y: p.Y - size.H}, Size: size}
}

// Center returns the center of r.
func (r Rect) Center() Point {
	return Point{X: r.Min.X + r.Size.W/2, Y: r.Min.Y + r.Size.H/2}
}

// MidBottom returns the midpoint of the bottom edge of r.
func (r Rect) MidBottom() Point {
	return Point{X: r.Min.X + r.Size.W/2, Y: r.Min.Y + r.Size.H}
}
