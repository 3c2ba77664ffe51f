package component

import "image/color"

// Trail spawns fading copies of the sprite while Emitting is set.
type Trail struct {
	Emitting bool
	Interval int
	Timer    int
	Life     int
	Color    color.RGBA
}

var TrailComponent = NewComponent[Trail]()

// JumpEffectRequest asks the effects system for a dust burst at the
// entity's feet. Count accumulates when several jumps land in one frame.
type JumpEffectRequest struct {
	Count int
}

var JumpEffectRequestComponent = NewComponent[JumpEffectRequest]()

// Particle is a short lived coloured square integrated by the effects
// system and removed by TTL.
type Particle struct {
	VX      float64
	VY      float64
	Gravity float64
	Size    float64
	Color   color.RGBA
	Life    int
	MaxLife int
}

var ParticleComponent = NewComponent[Particle]()
