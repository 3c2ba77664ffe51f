package motion

import "go.uber.org/zap"

// Body is the rigid body a controller steers. Velocities are world units per
// second with +Y up.
type Body interface {
	Velocity() (x, y float64)
	SetVelocity(x, y float64)
	GravityScale() float64
	SetGravityScale(scale float64)
}

// Probe reports whether a sensor volume overlaps anything it is filtered to.
type Probe interface {
	Overlapping() bool
}

// ProbeFunc adapts a plain function to Probe.
type ProbeFunc func() bool

func (f ProbeFunc) Overlapping() bool {
	if f == nil {
		return false
	}
	return f()
}

// Collider toggles the character's collision volume.
type Collider interface {
	SetCollisionEnabled(enabled bool)
}

// Signals receives fire-and-forget presentation cues.
type Signals interface {
	JumpEffect()
	SetTrailEmitting(emitting bool)
}

// Host bundles the collaborators a Controller needs. Body, Ground and Wall
// are required. Without Platform the character is never on a platform, and
// without Collider drop-through does nothing.
type Host struct {
	Body     Body
	Ground   Probe
	Wall     Probe
	Platform Probe
	Collider Collider
	Signals  Signals
	Logger   *zap.Logger
}

type nopSignals struct{}

func (nopSignals) JumpEffect()            {}
func (nopSignals) SetTrailEmitting(bool) {}
