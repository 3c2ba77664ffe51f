package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformer/motion"
)

// SensorBox is an overlap box relative to the body centre, in pixels.
type SensorBox struct {
	OffsetX float64
	OffsetY float64
	Width   float64
	Height  float64
	Layers  []string
	// MirrorX flips OffsetX when the character faces left.
	MirrorX bool
}

// Probe is a motion.Probe that can report its box for debug drawing.
type Probe interface {
	motion.Probe
	Bounds() cp.BB
}

// MotionSensors configures the ground, wall and platform probes of a
// character. The probes are filled in when the controller is bound.
type MotionSensors struct {
	Ground   SensorBox
	Wall     SensorBox
	Platform SensorBox

	GroundProbe   Probe
	WallProbe     Probe
	PlatformProbe Probe
}

var MotionSensorsComponent = NewComponent[MotionSensors]()
