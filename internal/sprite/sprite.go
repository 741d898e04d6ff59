// Package sprite holds the puppet's bitmaps and turns draw commands into a
// composed canvas.
package sprite

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/ayusman/kathputli/internal/geom"
	"github.com/ayusman/kathputli/internal/puppet"
)

// DefaultPreRotation is applied to sprites at load time, in degrees
// counter-clockwise. The head artwork is drawn upside down relative to the
// eye-line angle the rig reports for an upright face.
var DefaultPreRotation = map[puppet.PartID]float64{
	puppet.Head:     180,
	puppet.HeadMask: 180,
}

// Library maps part ids to their bitmaps.
type Library struct {
	images map[puppet.PartID]*image.NRGBA
}

// New creates a library from in-memory images.
func New(images map[puppet.PartID]image.Image) *Library {
	l := &Library{images: make(map[puppet.PartID]*image.NRGBA, len(images))}
	for id, img := range images {
		l.images[id] = imaging.Clone(img)
	}
	return l
}

// Load reads every <partId>.png in dir. preRotate gives per-part rotations
// in degrees applied once at load.
func Load(dir string, preRotate map[puppet.PartID]float64) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read sprite dir: %w", err)
	}

	l := &Library{images: make(map[puppet.PartID]*image.NRGBA)}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}
		id := puppet.PartID(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))

		img, err := imaging.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("open sprite %s: %w", e.Name(), err)
		}

		nrgba := imaging.Clone(img)
		if deg := preRotate[id]; deg != 0 {
			nrgba = imaging.Rotate(nrgba, deg, color.Transparent)
		}
		l.images[id] = nrgba
	}

	if len(l.images) == 0 {
		return nil, fmt.Errorf("no sprites in %s", dir)
	}

	// The default rotations name optional parts; anything else must exist.
	for _, id := range sortedKeys(preRotate) {
		if _, ok := l.images[id]; ok {
			continue
		}
		if _, ok := DefaultPreRotation[id]; ok {
			continue
		}
		return nil, &puppet.ConfigurationError{Kind: "part", Name: string(id), Msg: "pre-rotation for a sprite that was not loaded"}
	}
	return l, nil
}

func sortedKeys[V any](m map[puppet.PartID]V) []puppet.PartID {
	ids := make([]puppet.PartID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Placeholders returns flat-colored sprites with the reference puppet's
// proportions, for running without artwork.
func Placeholders() *Library {
	skin := color.NRGBA{224, 172, 105, 255}
	cloth := color.NRGBA{178, 34, 52, 255}
	coat := color.NRGBA{70, 90, 140, 255}
	mask := color.NRGBA{200, 200, 210, 255}

	return New(map[puppet.PartID]image.Image{
		puppet.Body:          imaging.New(160, 270, cloth),
		puppet.BodyCoat:      imaging.New(170, 275, coat),
		puppet.Head:          imaging.New(110, 120, skin),
		puppet.HeadMask:      imaging.New(110, 120, mask),
		puppet.LeftUpperArm:  imaging.New(110, 34, cloth),
		puppet.RightUpperArm: imaging.New(110, 34, cloth),
		puppet.LeftForearm:   imaging.New(100, 28, skin),
		puppet.RightForearm:  imaging.New(100, 28, skin),
	})
}

// Image returns the bitmap for id.
func (l *Library) Image(id puppet.PartID) (*image.NRGBA, bool) {
	img, ok := l.images[id]
	return img, ok
}

// IDs returns the loaded part ids, sorted.
func (l *Library) IDs() []puppet.PartID {
	return sortedKeys(l.images)
}

// Registry builds the asset registry from the loaded bitmap sizes. pivots
// optionally overrides the rotation pivot per part, in normalized sprite
// coordinates. A pivot for a part the library lacks is a
// *puppet.ConfigurationError.
func (l *Library) Registry(pivots map[puppet.PartID]geom.Point) (*puppet.Registry, error) {
	for _, id := range sortedKeys(pivots) {
		if _, ok := l.images[id]; !ok {
			return nil, &puppet.ConfigurationError{Kind: "part", Name: string(id), Msg: "pivot for a sprite that was not loaded"}
		}
	}

	reg, err := puppet.NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, id := range l.IDs() {
		b := l.images[id].Bounds()
		part := puppet.SpritePart{ID: id, Width: b.Dx(), Height: b.Dy()}
		if p, ok := pivots[id]; ok {
			part.Pivot = &p
		}
		if err := reg.Add(part); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
