// Package puppet places the puppet's sprite parts on the canvas from rig output.
package puppet

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ayusman/kathputli/internal/environment"
	"github.com/ayusman/kathputli/internal/geom"
)

// PartID identifies a sprite part.
type PartID string

// Sprite parts of the reference puppet.
const (
	Body          PartID = environment.BodyDefault
	BodyCoat      PartID = environment.BodyCoat
	Head          PartID = environment.HeadDefault
	HeadMask      PartID = environment.HeadMask
	LeftUpperArm  PartID = "LeftUpperArm"
	RightUpperArm PartID = "RightUpperArm"
	LeftForearm   PartID = "LeftForearm"
	RightForearm  PartID = "RightForearm"
)

// SpritePart is the static metadata for one sprite.
type SpritePart struct {
	ID     PartID `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	// Pivot is the point, in normalized sprite coordinates, that rotation
	// turns about and that is placed on the target position. Nil means the
	// sprite center.
	Pivot *geom.Point `json:"pivot,omitempty"`
}

// Size returns the sprite size.
func (p SpritePart) Size() geom.Size {
	return geom.Size{W: float64(p.Width), H: float64(p.Height)}
}

// centerFor returns where the sprite center must go so that its pivot,
// after rotating by angle, lands on target.
func (p SpritePart) centerFor(target geom.Point, angle float64) geom.Point {
	if p.Pivot == nil {
		return target
	}
	offset := geom.Pt((p.Pivot.X-0.5)*float64(p.Width), (p.Pivot.Y-0.5)*float64(p.Height))
	return target.Sub(geom.Rotate(offset, angle))
}

// Registry is the process-wide table of sprite parts. Parts are added while
// loading assets and only looked up afterwards.
type Registry struct {
	mu    sync.RWMutex
	parts map[PartID]SpritePart
}

// NewRegistry creates a registry holding parts.
func NewRegistry(parts ...SpritePart) (*Registry, error) {
	r := &Registry{parts: make(map[PartID]SpritePart)}
	for _, p := range parts {
		if err := r.Add(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers a part. Non-positive dimensions are a configuration error.
func (r *Registry) Add(p SpritePart) error {
	if p.ID == "" {
		return &ConfigurationError{Kind: "part", Name: "", Msg: "empty part id"}
	}
	if p.Width <= 0 || p.Height <= 0 {
		return &ConfigurationError{
			Kind: "part",
			Name: string(p.ID),
			Msg:  fmt.Sprintf("invalid size %dx%d", p.Width, p.Height),
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.parts[p.ID] = p
	return nil
}

// Lookup returns the part with the given id.
func (r *Registry) Lookup(id PartID) (SpritePart, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parts[id]
	return p, ok
}

// Require returns a ConfigurationError for the first id not registered.
func (r *Registry) Require(ids ...PartID) error {
	for _, id := range ids {
		if _, ok := r.Lookup(id); !ok {
			return missingPart(id)
		}
	}
	return nil
}

// IDs returns the registered part ids in sorted order.
func (r *Registry) IDs() []PartID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]PartID, 0, len(r.parts))
	for id := range r.parts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
