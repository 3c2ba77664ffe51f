package motion

import "fmt"

// wallJumpGrace extends the wall jump override past WallJumpTime so the
// launch is not cut short by the same window that allowed it.
const wallJumpGrace = 0.1

// timerEpsilon absorbs float drift when timers are decremented by dt.
const timerEpsilon = 1e-9

// Vec2 is a plain 2D vector in world units.
type Vec2 struct {
	X float64
	Y float64
}

// Config holds the movement tuning for one character. Speeds are world units
// per second, times are seconds, and +Y points up.
type Config struct {
	MoveSpeed float64

	JumpPower float64
	MaxJumps  int

	BaseGravity         float64
	MaxFallSpeed        float64
	FallSpeedMultiplier float64

	WallSlideSpeed       float64
	WallJumpTime         float64
	WallJumpPower        Vec2
	WallJumpRefillsJumps bool

	DashSpeed    float64
	DashDuration float64
	DashCooldown float64

	DroppingTime float64
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		MoveSpeed:            5,
		JumpPower:            10,
		MaxJumps:             2,
		BaseGravity:          2,
		MaxFallSpeed:         18,
		FallSpeedMultiplier:  2,
		WallSlideSpeed:       2,
		WallJumpTime:         0.5,
		WallJumpPower:        Vec2{X: 5, Y: 10},
		WallJumpRefillsJumps: true,
		DashSpeed:            20,
		DashDuration:         0.1,
		DashCooldown:         0.1,
		DroppingTime:         0.25,
	}
}

// Validate reports the first field that cannot drive a controller.
func (c Config) Validate() error {
	if c.MaxJumps < 0 {
		return fmt.Errorf("%w: max_jumps %d is negative", ErrInvalidConfig, c.MaxJumps)
	}
	fields := []struct {
		name  string
		value float64
	}{
		{"move_speed", c.MoveSpeed},
		{"jump_power", c.JumpPower},
		{"base_gravity", c.BaseGravity},
		{"max_fall_speed", c.MaxFallSpeed},
		{"fall_speed_multiplier", c.FallSpeedMultiplier},
		{"wall_slide_speed", c.WallSlideSpeed},
		{"wall_jump_time", c.WallJumpTime},
		{"dash_speed", c.DashSpeed},
		{"dash_duration", c.DashDuration},
		{"dash_cooldown", c.DashCooldown},
		{"dropping_time", c.DroppingTime},
	}
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("%w: %s %g is negative", ErrInvalidConfig, f.name, f.value)
		}
	}
	return nil
}
