package ecs

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformer/common"
	"github.com/milk9111/platformer/levels"
)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypePlatform
	collisionTypeCharacter
)

// Collision categories used by shape filters and probe masks.
const (
	LayerSolid uint = 1 << iota
	LayerPlatform
	LayerCharacter
)

var (
	ErrNilLevel     = errors.New("ecs: physics world needs a level")
	ErrUnknownLayer = errors.New("ecs: unknown collision layer")
)

// LayerMask turns layer names from prefabs into a category mask.
func LayerMask(names ...string) (uint, error) {
	var mask uint
	for _, name := range names {
		switch name {
		case "solid":
			mask |= LayerSolid
		case "platform":
			mask |= LayerPlatform
		case "character":
			mask |= LayerCharacter
		default:
			return 0, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
		}
	}
	return mask, nil
}

// PhysicsWorld owns the Chipmunk space built from a level. The space works
// in pixels with y pointing down; CharacterBody converts to the controller's
// world units.
type PhysicsWorld struct {
	level         *levels.Level
	space         *cp.Space
	handlersReady bool

	characters map[*cp.Shape]*CharacterBody
}

// NewPhysicsWorld creates a physics world for a level.
func NewPhysicsWorld(level *levels.Level) (*PhysicsWorld, error) {
	if level == nil {
		return nil, ErrNilLevel
	}
	if err := level.Validate(); err != nil {
		return nil, fmt.Errorf("ecs: new physics world: %w", err)
	}

	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: common.Gravity * common.PixelsPerUnit})

	pw := &PhysicsWorld{
		level:      level,
		space:      space,
		characters: make(map[*cp.Shape]*CharacterBody),
	}
	pw.buildStaticShapes()
	pw.setupHandlers()
	return pw, nil
}

// Space returns the underlying Chipmunk space.
func (pw *PhysicsWorld) Space() *cp.Space {
	if pw == nil {
		return nil
	}
	return pw.space
}

// Level returns the level the static shapes were built from.
func (pw *PhysicsWorld) Level() *levels.Level {
	if pw == nil {
		return nil
	}
	return pw.level
}

// Step advances the physics simulation.
func (pw *PhysicsWorld) Step(dt float64) {
	if pw == nil || pw.space == nil {
		return
	}
	pw.space.Step(dt)
}

// AddCharacter creates a dynamic, non-rotating box body centred on (x, y)
// in pixels.
func (pw *PhysicsWorld) AddCharacter(x, y, width, height float64) *CharacterBody {
	body := cp.NewBody(1, cp.INFINITY)
	body.SetPosition(cp.Vector{X: x, Y: y})

	shape := cp.NewBox(body, width, height, 0)
	shape.SetFriction(0)
	shape.SetCollisionType(collisionTypeCharacter)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, LayerCharacter, LayerSolid|LayerPlatform))

	cb := &CharacterBody{
		pw:               pw,
		body:             body,
		shape:            shape,
		width:            width,
		height:           height,
		gravityScale:     1,
		collisionEnabled: true,
	}
	body.SetVelocityUpdateFunc(func(b *cp.Body, gravity cp.Vector, damping, dt float64) {
		cp.BodyUpdateVelocity(b, gravity.Mult(cb.gravityScale), damping, dt)
	})

	pw.space.AddBody(body)
	pw.space.AddShape(shape)
	pw.characters[shape] = cb
	return cb
}

// RemoveCharacter takes the body out of the space. It is a no-op for bodies
// that were already removed.
func (pw *PhysicsWorld) RemoveCharacter(cb *CharacterBody) {
	if pw == nil || cb == nil || cb.pw != pw {
		return
	}
	if _, ok := pw.characters[cb.shape]; !ok {
		return
	}
	delete(pw.characters, cb.shape)
	pw.space.RemoveShape(cb.shape)
	pw.space.RemoveBody(cb.body)
}

func (pw *PhysicsWorld) buildStaticShapes() {
	lvl := pw.level
	for i, layer := range lvl.Layers {
		meta := lvl.Meta(i)
		if !meta.Physics {
			continue
		}
		if meta.Platform {
			pw.processLayerTiles(layer, collisionTypePlatform, LayerPlatform)
		} else {
			pw.processLayerTiles(layer, collisionTypeSolid, LayerSolid)
		}
	}

	worldW, worldH := lvl.PixelSize()
	segments := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: worldW, Y: 0}},
		{a: cp.Vector{X: 0, Y: worldH}, b: cp.Vector{X: worldW, Y: worldH}},
		{a: cp.Vector{X: 0, Y: 0}, b: cp.Vector{X: 0, Y: worldH}},
		{a: cp.Vector{X: worldW, Y: 0}, b: cp.Vector{X: worldW, Y: worldH}},
	}
	for _, seg := range segments {
		shape := cp.NewSegment(pw.space.StaticBody, seg.a, seg.b, 1)
		shape.SetFriction(0)
		shape.SetCollisionType(collisionTypeSolid)
		shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, LayerSolid, cp.ALL_CATEGORIES))
		pw.space.AddShape(shape)
	}
}

// processLayerTiles merges runs of filled tiles into as few boxes as
// possible: grow right first, then down while the whole row is filled.
func (pw *PhysicsWorld) processLayerTiles(layer []int, kind cp.CollisionType, category uint) {
	lvl := pw.level
	size := float64(lvl.TileSize)
	processed := make([]bool, lvl.Width*lvl.Height)
	for y := 0; y < lvl.Height; y++ {
		for x := 0; x < lvl.Width; x++ {
			idx := y*lvl.Width + x
			if processed[idx] {
				continue
			}
			if layer[idx] == 0 {
				processed[idx] = true
				continue
			}

			w := 1
			for x+w < lvl.Width {
				idx2 := y*lvl.Width + (x + w)
				if processed[idx2] || layer[idx2] == 0 {
					break
				}
				w++
			}

			h := 1
			// one-way platforms stay one tile thick so only their top face counts
			if kind != collisionTypePlatform {
			heightLoop:
				for y+h < lvl.Height {
					for xi := x; xi < x+w; xi++ {
						idx2 := (y+h)*lvl.Width + xi
						if processed[idx2] || layer[idx2] == 0 {
							break heightLoop
						}
					}
					h++
				}
			}

			x0 := float64(x) * size
			y0 := float64(y) * size
			bb := cp.BB{L: x0, B: y0, R: x0 + float64(w)*size, T: y0 + float64(h)*size}
			shape := cp.NewBox2(pw.space.StaticBody, bb, 0)
			shape.SetFriction(0)
			shape.SetCollisionType(kind)
			shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, category, cp.ALL_CATEGORIES))
			pw.space.AddShape(shape)

			for yy := y; yy < y+h; yy++ {
				for xx := x; xx < x+w; xx++ {
					processed[yy*lvl.Width+xx] = true
				}
			}
		}
	}
}

func (pw *PhysicsWorld) setupHandlers() {
	if pw.handlersReady {
		return
	}

	platformHandler := pw.space.NewCollisionHandler(collisionTypeCharacter, collisionTypePlatform)
	platformHandler.UserData = pw
	platformHandler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		// the normal points from the character to the platform; only a
		// platform below the character (y down) holds it up
		if arb.Normal().Y < 0.5 {
			return arb.Ignore()
		}
		return true
	}

	pw.handlersReady = true
}

// CharacterBody is a dynamic body seen through the controller's units:
// world units with y pointing up.
type CharacterBody struct {
	pw    *PhysicsWorld
	body  *cp.Body
	shape *cp.Shape

	width, height    float64
	gravityScale     float64
	collisionEnabled bool
}

func (cb *CharacterBody) Velocity() (float64, float64) {
	v := cb.body.Velocity()
	return v.X / common.PixelsPerUnit, -v.Y / common.PixelsPerUnit
}

func (cb *CharacterBody) SetVelocity(x, y float64) {
	cb.body.SetVelocity(x*common.PixelsPerUnit, -y*common.PixelsPerUnit)
}

func (cb *CharacterBody) GravityScale() float64 {
	return cb.gravityScale
}

func (cb *CharacterBody) SetGravityScale(s float64) {
	cb.gravityScale = s
}

// SetCollisionEnabled drops one-way platforms from the body's collision mask
// while disabled. Solid tiles always collide.
func (cb *CharacterBody) SetCollisionEnabled(enabled bool) {
	cb.collisionEnabled = enabled
	cb.shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, LayerCharacter, cb.collisionMask()))
}

func (cb *CharacterBody) CollisionEnabled() bool {
	return cb.collisionEnabled
}

func (cb *CharacterBody) collisionMask() uint {
	if cb.collisionEnabled {
		return LayerSolid | LayerPlatform
	}
	return LayerSolid
}

// Position returns the body centre in pixels.
func (cb *CharacterBody) Position() (float64, float64) {
	p := cb.body.Position()
	return p.X, p.Y
}

func (cb *CharacterBody) SetPosition(x, y float64) {
	cb.body.SetPosition(cp.Vector{X: x, Y: y})
	cb.body.SetVelocity(0, 0)
}

func (cb *CharacterBody) Size() (float64, float64) {
	return cb.width, cb.height
}

func (cb *CharacterBody) Body() *cp.Body {
	return cb.body
}

func (cb *CharacterBody) Shape() *cp.Shape {
	return cb.shape
}

// ProbeBox describes an overlap box relative to a character's centre, in
// pixels with y down.
type ProbeBox struct {
	OffsetX float64
	OffsetY float64
	Width   float64
	Height  float64
	Mask    uint
	// MirrorX flips OffsetX when the character faces left.
	MirrorX bool
}

// BoxProbe answers motion.Probe by querying the space for static shapes
// overlapping a box that follows a character.
type BoxProbe struct {
	cb  *CharacterBody
	box ProbeBox
	// FacingRight is consulted for mirrored probes. Nil means facing right.
	FacingRight func() bool
}

// BoxProbe creates a probe following cb.
func (pw *PhysicsWorld) BoxProbe(cb *CharacterBody, box ProbeBox) *BoxProbe {
	return &BoxProbe{cb: cb, box: box}
}

// Bounds returns the probe box in space coordinates.
func (p *BoxProbe) Bounds() cp.BB {
	x, y := p.cb.Position()
	ox := p.box.OffsetX
	if p.box.MirrorX && p.FacingRight != nil && !p.FacingRight() {
		ox = -ox
	}
	cx, cy := x+ox, y+p.box.OffsetY
	return cp.BB{
		L: cx - p.box.Width/2,
		B: cy - p.box.Height/2,
		R: cx + p.box.Width/2,
		T: cy + p.box.Height/2,
	}
}

// Overlapping reports whether any shape in the probe's mask touches the
// box. Platforms the character is currently dropping through are skipped.
func (p *BoxProbe) Overlapping() bool {
	mask := p.box.Mask & p.cb.collisionMask()
	if mask == 0 {
		return false
	}
	filter := cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, mask)
	hit := false
	p.cb.pw.space.BBQuery(p.Bounds(), filter, func(shape *cp.Shape, _ interface{}) {
		if shape.Body() == p.cb.body {
			return
		}
		hit = true
	}, nil)
	return hit
}
