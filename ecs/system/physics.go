package system

import (
	"github.com/milk9111/platformer/common"
	"github.com/milk9111/platformer/ecs"
	"github.com/milk9111/platformer/ecs/component"
)

// PhysicsSystem creates character bodies for PhysicsBody entities, steps the
// space attached to the world and copies body positions back to transforms.
type PhysicsSystem struct {
	dt float64

	pw     *ecs.PhysicsWorld
	bodies map[ecs.Entity]*ecs.CharacterBody
}

func NewPhysicsSystem() *PhysicsSystem {
	return &PhysicsSystem{
		dt:     1.0 / common.TPS,
		bodies: make(map[ecs.Entity]*ecs.CharacterBody),
	}
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	pw := w.PhysicsWorld()
	if pw == nil {
		return
	}
	if pw != ps.pw {
		// a new level: bodies of the old space are gone with it
		ps.pw = pw
		ps.bodies = make(map[ecs.Entity]*ecs.CharacterBody)
	}

	ps.removeStale(w)
	ps.syncEntities(w)

	pw.Step(ps.dt)

	ps.syncTransforms(w)
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, pb *component.PhysicsBody, t *component.Transform) {
		if _, ok := ps.bodies[e]; ok {
			return
		}
		if pb.Width <= 0 || pb.Height <= 0 {
			return
		}
		cb := ps.pw.AddCharacter(t.X, t.Y, pb.Width, pb.Height)
		pb.Character = cb
		ps.bodies[e] = cb
	})
}

func (ps *PhysicsSystem) removeStale(w *ecs.World) {
	for e, cb := range ps.bodies {
		pb, ok := ecs.Get(w, e, component.PhysicsBodyComponent)
		if ok && pb.Character == component.CharacterBody(cb) {
			continue
		}
		ps.pw.RemoveCharacter(cb)
		delete(ps.bodies, e)
	}
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	for e, cb := range ps.bodies {
		t, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			continue
		}
		t.X, t.Y = cb.Position()
	}
}
