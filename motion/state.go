package motion

import "math"

// Mode is the single tagged locomotion state derived from the controller.
type Mode uint8

const (
	ModeGrounded Mode = iota
	ModeRising
	ModeFalling
	ModeWallSliding
	ModeWallJumping
	ModeDashing
)

func (m Mode) String() string {
	switch m {
	case ModeGrounded:
		return "grounded"
	case ModeRising:
		return "rising"
	case ModeFalling:
		return "falling"
	case ModeWallSliding:
		return "wall_sliding"
	case ModeWallJumping:
		return "wall_jumping"
	case ModeDashing:
		return "dashing"
	default:
		return "unknown"
	}
}

// Airborne reports whether the mode has no ground contact.
func (m Mode) Airborne() bool {
	return m == ModeRising || m == ModeFalling || m == ModeWallSliding || m == ModeWallJumping
}

type dashPhase uint8

const (
	dashReady dashPhase = iota
	dashActive
	dashCooldown
	dashAwaitGround
)

type dropPhase uint8

const (
	dropIdle dropPhase = iota
	dropFalling
)

// Snapshot is a read-only copy of a controller's state for presentation,
// debugging and tests.
type Snapshot struct {
	Mode              Mode
	FacingRight       bool
	HorizontalInput   float64
	Grounded          bool
	OnPlatform        bool
	JumpsRemaining    int
	WallSliding       bool
	WallJumping       bool
	WallJumpDirection float64
	WallJumpTimer     float64
	Dashing           bool
	CanDash           bool
	CollisionEnabled  bool
	VelocityX         float64
	VelocityY         float64
	GravityScale      float64
}

// Speed is the magnitude of the velocity in the snapshot.
func (s Snapshot) Speed() float64 {
	return math.Hypot(s.VelocityX, s.VelocityY)
}
