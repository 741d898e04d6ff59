package puppet

import (
	"github.com/ayusman/kathputli/internal/environment"
	"github.com/ayusman/kathputli/internal/geom"
	"github.com/ayusman/kathputli/internal/rig"
)

// Z-order layers, drawn back to front.
const (
	ZTorso = iota
	ZHead
	ZUpperArm
	ZForearm
)

// DrawCommand places one sprite part for one frame.
type DrawCommand struct {
	Part     PartID  `json:"partId"`
	CenterX  int     `json:"centerX"`
	CenterY  int     `json:"centerY"`
	Rotation float64 `json:"rotationRadians"`
	Z        int     `json:"z"`
}

// Renderer turns rig output into draw commands. It is safe for concurrent
// use; it holds only immutable configuration.
type Renderer struct {
	parts *Registry
	cfg   Config
}

// NewRenderer checks cfg and that every part it can emit is registered.
func NewRenderer(parts *Registry, cfg Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := parts.Require(cfg.requiredParts()...); err != nil {
		return nil, err
	}
	return &Renderer{parts: parts, cfg: cfg}, nil
}

// Config returns the renderer configuration.
func (r *Renderer) Config() Config {
	return r.cfg
}

// Render returns the draw commands for one frame in back-to-front order:
// torso, head, upper arms, then forearms.
func (r *Renderer) Render(out rig.Output, env environment.State) []DrawCommand {
	shift := r.displacement(out)

	bodyID, headID := Body, Head
	if r.cfg.EnvironmentSprites {
		bodyID = PartID(environment.SelectBodySprite(env))
		headID = PartID(environment.SelectHeadSprite(env))
	}

	cmds := make([]DrawCommand, 0, 6)

	body := r.part(bodyID)
	bodyRect := geom.RectMidBottom(body.Size(), r.cfg.BodyAnchor.Add(shift))
	bx, by := bodyRect.Center().Round()
	cmds = append(cmds, DrawCommand{Part: body.ID, CenterX: bx, CenterY: by, Z: ZTorso})

	cmds = append(cmds, r.place(r.part(headID), r.cfg.BodyAnchor.Add(r.cfg.HeadOffset).Add(shift), out.Head, ZHead))

	leftUpper := r.cfg.Left.UpperAnchor.Add(shift)
	rightUpper := r.cfg.Right.UpperAnchor.Add(shift)
	cmds = append(cmds,
		r.place(r.part(LeftUpperArm), leftUpper, out.LeftUpperArm, ZUpperArm),
		r.place(r.part(RightUpperArm), rightUpper, out.RightUpperArm, ZUpperArm),
	)

	if r.cfg.ShowForearms {
		leftFore := r.forearmTarget(r.cfg.Left, LeftUpperArm, leftUpper, out.LeftUpperArm, shift)
		rightFore := r.forearmTarget(r.cfg.Right, RightUpperArm, rightUpper, out.RightUpperArm, shift)
		cmds = append(cmds,
			r.place(r.part(LeftForearm), leftFore, out.LeftForearm, ZForearm),
			r.place(r.part(RightForearm), rightFore, out.RightForearm, ZForearm),
		)
	}

	return cmds
}

// displacement is how far the whole puppet moves from its configured layout.
func (r *Renderer) displacement(out rig.Output) geom.Point {
	if r.cfg.Anchor != AnchorTracked {
		return geom.Point{}
	}
	return out.TorsoAnchor.Add(r.cfg.TrackedOffset).Sub(r.cfg.BodyAnchor)
}

// forearmTarget returns the forearm pivot position. In chained mode the
// forearm hangs from the far end of the rotated upper arm.
func (r *Renderer) forearmTarget(limb Limb, upperID PartID, upperPivot geom.Point, upperAngle float64, shift geom.Point) geom.Point {
	if r.cfg.Chain != ChainChained {
		return limb.ForearmAnchor.Add(shift)
	}
	upper := r.part(upperID)
	center := upper.centerFor(upperPivot, upperAngle)
	reach := geom.Rotate(geom.Pt(limb.Reach*float64(upper.Width)/2, 0), upperAngle)
	return center.Add(reach).Add(limb.Correction)
}

func (r *Renderer) part(id PartID) SpritePart {
	// NewRenderer guarantees presence.
	p, _ := r.parts.Lookup(id)
	return p
}

func (r *Renderer) place(p SpritePart, target geom.Point, angle float64, z int) DrawCommand {
	x, y := p.centerFor(target, angle).Round()
	return DrawCommand{Part: p.ID, CenterX: x, CenterY: y, Rotation: angle, Z: z}
}
