package motion

import (
	"fmt"

	"go.uber.org/zap"
)

// Controller converts input intents into velocity changes on a Body. It is
// driven by one Tick per simulation step and is not safe for concurrent use;
// all calls must come from the loop that owns the character.
type Controller struct {
	cfg Config

	body     Body
	ground   Probe
	wall     Probe
	platform Probe
	collider Collider
	signals  Signals
	log      *zap.Logger

	facingRight bool
	horizontal  float64

	grounded   bool
	onPlatform bool

	jumpsRemaining int
	// jumpArmed is set by a press that launched a jump and cleared at the
	// apex or on release.
	jumpArmed bool

	wallSliding       bool
	wallJumpDirection float64
	wallJumpTimer     float64
	// wallJumpOverride counts down while a wall jump owns horizontal velocity.
	wallJumpOverride float64

	dash      dashPhase
	dashTimer float64

	drop             dropPhase
	dropTimer        float64
	collisionEnabled bool

	mode Mode
}

// NewController validates cfg and host and returns a controller in the
// grounded state with full jump charges.
func NewController(cfg Config, host Host) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if host.Body == nil {
		return nil, ErrNilBody
	}
	if host.Ground == nil {
		return nil, ErrNilGroundProbe
	}
	if host.Wall == nil {
		return nil, ErrNilWallProbe
	}

	c := &Controller{
		cfg:               cfg,
		body:              host.Body,
		ground:            host.Ground,
		wall:              host.Wall,
		platform:          host.Platform,
		collider:          host.Collider,
		signals:           host.Signals,
		log:               host.Logger,
		facingRight:       true,
		grounded:          true,
		jumpsRemaining:    cfg.MaxJumps,
		wallJumpDirection: -1,
		collisionEnabled:  true,
		mode:              ModeGrounded,
	}
	if c.signals == nil {
		c.signals = nopSignals{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.body.SetGravityScale(cfg.BaseGravity)
	return c, nil
}

// Config returns the active tuning.
func (c *Controller) Config() Config {
	return c.cfg
}

// SetConfig swaps the tuning of a live controller. Jump charges are clamped
// to the new maximum.
func (c *Controller) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("motion: set config: %w", err)
	}
	c.cfg = cfg
	if c.jumpsRemaining > cfg.MaxJumps {
		c.jumpsRemaining = cfg.MaxJumps
	}
	return nil
}

// OnMoveInput stores the horizontal axis. It takes effect on the next Tick.
func (c *Controller) OnMoveInput(axis float64) {
	switch {
	case axis > 1:
		axis = 1
	case axis < -1:
		axis = -1
	}
	c.horizontal = axis
}

// OnJumpPressed spends a jump charge and, independently, performs a wall
// jump when the wall jump window is open. Both may happen on one press.
func (c *Controller) OnJumpPressed() {
	if c.dashing() {
		return
	}

	if c.jumpsRemaining > 0 {
		vx, _ := c.body.Velocity()
		c.body.SetVelocity(vx, c.cfg.JumpPower)
		c.jumpsRemaining--
		c.jumpArmed = true
		c.signals.JumpEffect()
	}

	if c.wallJumpTimer > 0 {
		c.body.SetVelocity(c.wallJumpDirection*c.cfg.WallJumpPower.X, c.cfg.WallJumpPower.Y)
		c.wallJumpTimer = 0
		c.wallJumpOverride = c.cfg.WallJumpTime + wallJumpGrace
		if c.facingSign() != c.wallJumpDirection {
			c.facingRight = !c.facingRight
		}
		if c.cfg.WallJumpRefillsJumps {
			c.jumpsRemaining = c.cfg.MaxJumps
		}
		c.jumpArmed = true
		c.signals.JumpEffect()
	}
}

// OnJumpReleased cuts an ascending jump short by halving vertical velocity.
// The cut costs one more charge.
func (c *Controller) OnJumpReleased() {
	armed := c.jumpArmed
	c.jumpArmed = false
	if !armed || c.jumpsRemaining <= 0 || c.dashing() {
		return
	}
	vx, vy := c.body.Velocity()
	c.body.SetVelocity(vx, vy*0.5)
	c.jumpsRemaining--
}

// OnDashPressed starts the dash sequence when one is available.
func (c *Controller) OnDashPressed() {
	if c.dash != dashReady {
		return
	}
	c.dash = dashActive
	c.dashTimer = c.cfg.DashDuration
	c.wallJumpOverride = 0
	c.jumpArmed = false
	c.signals.SetTrailEmitting(true)

	_, vy := c.body.Velocity()
	c.body.SetVelocity(c.facingSign()*c.cfg.DashSpeed, vy)
	c.noteMode()
}

// OnDropPressed disables the collision volume for DroppingTime so the
// character falls through the one-way platform it stands on.
func (c *Controller) OnDropPressed() {
	if c.collider == nil || c.drop != dropIdle {
		return
	}
	if !c.grounded || !c.onPlatform || !c.collisionEnabled {
		return
	}
	c.drop = dropFalling
	c.dropTimer = c.cfg.DroppingTime
	c.setCollisionEnabled(false)
}

// Tick runs one simulation step. The steps read flags written by earlier
// steps, so their order is fixed.
func (c *Controller) Tick(dt float64) {
	if dt < 0 {
		dt = 0
	}

	if !c.dashing() {
		c.checkGround()
		c.applyGravity()
		c.checkWallSlide()
		c.updateWallJumpWindow(dt)

		if !c.wallJumping() {
			_, vy := c.body.Velocity()
			c.body.SetVelocity(c.horizontal*c.cfg.MoveSpeed, vy)
			c.flip()
		}
	}

	c.advance(dt)
	c.noteMode()
}

func (c *Controller) checkGround() {
	if c.ground.Overlapping() {
		c.grounded = true
		c.jumpsRemaining = c.cfg.MaxJumps
	} else {
		c.grounded = false
	}
	c.onPlatform = c.grounded && c.platform != nil && c.platform.Overlapping()
}

func (c *Controller) applyGravity() {
	vx, vy := c.body.Velocity()
	if vy <= 0 {
		c.jumpArmed = false
	}
	if vy < 0 {
		c.body.SetGravityScale(c.cfg.BaseGravity * c.cfg.FallSpeedMultiplier)
		if vy < -c.cfg.MaxFallSpeed {
			c.body.SetVelocity(vx, -c.cfg.MaxFallSpeed)
		}
		return
	}
	c.body.SetGravityScale(c.cfg.BaseGravity)
}

func (c *Controller) checkWallSlide() {
	if !c.grounded && c.horizontal != 0 && c.wall.Overlapping() {
		c.wallSliding = true
		vx, vy := c.body.Velocity()
		if vy < -c.cfg.WallSlideSpeed {
			c.body.SetVelocity(vx, -c.cfg.WallSlideSpeed)
		}
		return
	}
	c.wallSliding = false
}

func (c *Controller) updateWallJumpWindow(dt float64) {
	if c.wallSliding {
		c.wallJumpOverride = 0
		c.wallJumpDirection = -c.facingSign()
		c.wallJumpTimer = c.cfg.WallJumpTime
		return
	}
	if c.wallJumpTimer > 0 {
		c.wallJumpTimer = decay(c.wallJumpTimer, dt)
	}
}

func (c *Controller) flip() {
	if (!c.facingRight && c.horizontal > 0) || (c.facingRight && c.horizontal < 0) {
		c.facingRight = !c.facingRight
	}
}

// advance moves the timed continuations forward: the wall jump override,
// the dash sequence and the drop-through re-enable.
func (c *Controller) advance(dt float64) {
	if c.wallJumpOverride > 0 {
		c.wallJumpOverride = decay(c.wallJumpOverride, dt)
	}

	switch c.dash {
	case dashActive:
		c.dashTimer = decay(c.dashTimer, dt)
		if c.dashTimer == 0 {
			_, vy := c.body.Velocity()
			c.body.SetVelocity(0, vy)
			c.signals.SetTrailEmitting(false)
			c.dash = dashCooldown
			c.dashTimer = c.cfg.DashCooldown
		}
	case dashCooldown:
		c.dashTimer = decay(c.dashTimer, dt)
		if c.dashTimer == 0 {
			c.dash = dashAwaitGround
			if c.grounded {
				c.dash = dashReady
			}
		}
	case dashAwaitGround:
		if c.grounded {
			c.dash = dashReady
		}
	}

	if c.drop == dropFalling {
		c.dropTimer = decay(c.dropTimer, dt)
		if c.dropTimer == 0 {
			c.drop = dropIdle
			c.setCollisionEnabled(true)
		}
	}
}

func (c *Controller) setCollisionEnabled(enabled bool) {
	c.collisionEnabled = enabled
	if c.collider != nil {
		c.collider.SetCollisionEnabled(enabled)
	}
}

func (c *Controller) noteMode() {
	m := c.Mode()
	if m == c.mode {
		return
	}
	c.log.Debug("motion mode changed", zap.Stringer("from", c.mode), zap.Stringer("to", m))
	c.mode = m
}

func (c *Controller) dashing() bool {
	return c.dash == dashActive
}

func (c *Controller) wallJumping() bool {
	return c.wallJumpOverride > 0
}

func (c *Controller) facingSign() float64 {
	if c.facingRight {
		return 1
	}
	return -1
}

// Mode reports the current locomotion mode. Overrides win over contact:
// dashing, then wall jumping, then wall sliding, then ground contact.
func (c *Controller) Mode() Mode {
	switch {
	case c.dashing():
		return ModeDashing
	case c.wallJumping():
		return ModeWallJumping
	case c.wallSliding:
		return ModeWallSliding
	case c.grounded:
		return ModeGrounded
	}
	if _, vy := c.body.Velocity(); vy > 0 {
		return ModeRising
	}
	return ModeFalling
}

// FacingRight reports the current orientation.
func (c *Controller) FacingRight() bool {
	return c.facingRight
}

// JumpsRemaining reports the unspent jump charges.
func (c *Controller) JumpsRemaining() int {
	return c.jumpsRemaining
}

// CanDash reports whether a dash press would start a dash.
func (c *Controller) CanDash() bool {
	return c.dash == dashReady
}

// Snapshot copies the controller state.
func (c *Controller) Snapshot() Snapshot {
	vx, vy := c.body.Velocity()
	return Snapshot{
		Mode:              c.Mode(),
		FacingRight:       c.facingRight,
		HorizontalInput:   c.horizontal,
		Grounded:          c.grounded,
		OnPlatform:        c.onPlatform,
		JumpsRemaining:    c.jumpsRemaining,
		WallSliding:       c.wallSliding,
		WallJumping:       c.wallJumping(),
		WallJumpDirection: c.wallJumpDirection,
		WallJumpTimer:     c.wallJumpTimer,
		Dashing:           c.dashing(),
		CanDash:           c.dash == dashReady,
		CollisionEnabled:  c.collisionEnabled,
		VelocityX:         vx,
		VelocityY:         vy,
		GravityScale:      c.body.GravityScale(),
	}
}

func decay(t, dt float64) float64 {
	t -= dt
	if t <= timerEpsilon {
		return 0
	}
	return t
}
