package sprite

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ayusman/kathputli/internal/geom"
	"github.com/ayusman/kathputli/internal/puppet"
)

// Background is the default canvas color.
var Background = color.NRGBA{255, 255, 255, 255}

// NewCanvas returns a blank canvas of the given size.
func NewCanvas(size geom.Size, bg color.Color) *image.NRGBA {
	return imaging.New(int(size.W), int(size.H), bg)
}

// Compose draws cmds onto a copy of canvas in order. Commands whose part is
// not in the library are skipped. A positive shiver amplitude runs each
// sprite through Shiver before it is rotated.
func Compose(canvas image.Image, cmds []puppet.DrawCommand, lib *Library, shiver float64, rng *rand.Rand) *image.NRGBA {
	dst := imaging.Clone(canvas)
	for _, cmd := range cmds {
		src, ok := lib.Image(cmd.Part)
		if !ok {
			continue
		}
		if shiver > 0 && rng != nil {
			src = Shiver(src, shiver, rng)
		}

		rotated := src
		if cmd.Rotation != 0 {
			// imaging rotates counter-clockwise, same as the rig.
			rotated = imaging.Rotate(src, cmd.Rotation*180/math.Pi, color.Transparent)
		}

		b := rotated.Bounds()
		topLeft := image.Pt(cmd.CenterX-b.Dx()/2, cmd.CenterY-b.Dy()/2)
		dst = imaging.Overlay(dst, rotated, topLeft, 1)
	}
	return dst
}

// Shiver returns a copy of img where each pixel is taken from a random
// neighbour up to amplitude pixels away. Sprite placement is untouched.
func Shiver(img *image.NRGBA, amplitude float64, rng *rand.Rand) *image.NRGBA {
	a := int(math.Round(amplitude))
	if a <= 0 || rng == nil {
		return imaging.Clone(img)
	}

	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sx := clampInt(x+rng.Intn(2*a+1)-a, b.Min.X, b.Max.X-1)
			sy := clampInt(y+rng.Intn(2*a+1)-a, b.Min.Y, b.Max.Y-1)
			out.SetNRGBA(x, y, img.NRGBAAt(sx, sy))
		}
	}
	return out
}

// DrawAdvisory overlays a translucent banner with text along the top edge.
func DrawAdvisory(img image.Image, text string) *image.NRGBA {
	if text == "" {
		return imaging.Clone(img)
	}

	w := img.Bounds().Dx()
	banner := imaging.New(w, img.Bounds().Dy(), color.Transparent)
	const bannerHeight = 28
	for y := 0; y < bannerHeight && y < banner.Bounds().Dy(); y++ {
		for x := 0; x < w; x++ {
			banner.SetNRGBA(x, y, color.NRGBA{120, 20, 20, 200})
		}
	}

	bounds, _ := font.BoundString(basicfont.Face7x13, text)
	textWidth := bounds.Max.X.Ceil()

	d := &font.Drawer{
		Dst:  banner,
		Src:  image.NewUniform(color.NRGBA{255, 255, 255, 255}),
		Face: basicfont.Face7x13,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(max((w-textWidth)/2, 4) * 64),
			Y: fixed.Int26_6(19 * 64),
		},
	}
	d.DrawString(text)

	return imaging.Overlay(img, banner, img.Bounds().Min, 1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
