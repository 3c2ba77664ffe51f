package system

import (
	"image/color"

	"github.com/milk9111/platformer/ecs"
	"github.com/milk9111/platformer/ecs/component"
)

const (
	dustPerJump    = 6
	dustLife       = 18
	dustSize       = 4.0
	dustGravity    = 0.15
	dustSpeed      = 1.6
	effectsLayerUp = 1
)

var dustColor = color.RGBA{R: 0xdd, G: 0xdd, B: 0xcc, A: 0xff}

// EffectsSystem turns jump cues into dust bursts, leaves ghost copies behind
// an emitting trail and integrates particles. Expiry is left to TTL.
type EffectsSystem struct{}

func NewEffectsSystem() *EffectsSystem {
	return &EffectsSystem{}
}

func (s *EffectsSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach2(w, component.JumpEffectRequestComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, req *component.JumpEffectRequest, t *component.Transform) {
		feetY := t.Y
		if pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent); ok {
			feetY += pb.Height / 2
		}
		for burst := 0; burst < req.Count; burst++ {
			for i := 0; i < dustPerJump; i++ {
				spawnDust(w, t.X, feetY, i, burst)
			}
		}
		ecs.Remove(w, e, component.JumpEffectRequestComponent)
	})

	ecs.ForEach3(w, component.TrailComponent.Kind(), component.TransformComponent.Kind(), component.SpriteComponent.Kind(), func(e ecs.Entity, trail *component.Trail, t *component.Transform, sprite *component.Sprite) {
		if !trail.Emitting {
			return
		}
		trail.Timer--
		if trail.Timer > 0 {
			return
		}
		trail.Timer = trail.Interval
		layer := 0
		if rl, ok := ecs.Get(w, e, component.RenderLayerComponent); ok {
			layer = rl.Index - effectsLayerUp
		}
		spawnGhost(w, *t, *sprite, trail, layer)
	})

	ecs.ForEach2(w, component.ParticleComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, p *component.Particle, t *component.Transform) {
		p.VY += p.Gravity
		t.X += p.VX
		t.Y += p.VY
		if p.Life > 0 {
			p.Life--
		}
	})
}

// spawnDust fans particles out symmetrically from the feet; later bursts in
// the same frame kick higher.
func spawnDust(w *ecs.World, x, y float64, i, burst int) {
	spread := float64(i) - float64(dustPerJump-1)/2
	e := w.CreateEntity()
	_ = ecs.Add(w, e, component.TransformComponent, &component.Transform{X: x + spread*2, Y: y, ScaleX: 1, ScaleY: 1})
	_ = ecs.Add(w, e, component.ParticleComponent, &component.Particle{
		VX:      spread * dustSpeed / 2,
		VY:      -dustSpeed * (0.5 + 0.25*float64(burst)),
		Gravity: dustGravity,
		Size:    dustSize,
		Color:   dustColor,
		Life:    dustLife,
		MaxLife: dustLife,
	})
	_ = ecs.Add(w, e, component.TTLComponent, &component.TTL{Frames: dustLife})
	_ = ecs.Add(w, e, component.RenderLayerComponent, &component.RenderLayer{Index: effectsLayerUp})
}

// spawnGhost leaves a still, fading copy of the sprite. It carries a
// Particle with no size so the renderer fades it like one.
func spawnGhost(w *ecs.World, t component.Transform, sprite component.Sprite, trail *component.Trail, layer int) {
	life := trail.Life
	if life <= 0 {
		life = 1
	}
	sprite.Color = trail.Color
	e := w.CreateEntity()
	_ = ecs.Add(w, e, component.TransformComponent, &t)
	_ = ecs.Add(w, e, component.SpriteComponent, &sprite)
	_ = ecs.Add(w, e, component.ParticleComponent, &component.Particle{Life: life, MaxLife: life})
	_ = ecs.Add(w, e, component.TTLComponent, &component.TTL{Frames: life})
	_ = ecs.Add(w, e, component.RenderLayerComponent, &component.RenderLayer{Index: layer})
}
