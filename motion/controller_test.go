package motion

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeBody struct {
	vx, vy float64
	scale  float64
}

func (b *fakeBody) Velocity() (float64, float64) { return b.vx, b.vy }
func (b *fakeBody) SetVelocity(x, y float64) { b.vx, b.vy = x, y }
func (b *fakeBody) GravityScale() float64 { return b.scale }
func (b *fakeBody) SetGravityScale(s float64) { b.scale = s }

type fakeCollider struct {
	calls []bool
}

func (c *fakeCollider) SetCollisionEnabled(enabled bool) { c.calls = append(c.calls, enabled) }

type fakeSignals struct {
	jumps int
	trail []bool
}

func (s *fakeSignals) JumpEffect() { s.jumps++ }
func (s *fakeSignals) SetTrailEmitting(emitting bool) { s.trail = append(s.trail, emitting) }

type rig struct {
	ctrl     *Controller
	body     *fakeBody
	ground   bool
	wall     bool
	platform bool
	collider *fakeCollider
	signals  *fakeSignals
}

func newRig(t *testing.T, cfg Config) *rig {
	t.Helper()
	r := &rig{
		body:     &fakeBody{},
		ground:   true,
		collider: &fakeCollider{},
		signals:  &fakeSignals{},
	}
	ctrl, err := NewController(cfg, Host{
		Body:     r.body,
		Ground:   ProbeFunc(func() bool { return r.ground }),
		Wall:     ProbeFunc(func() bool { return r.wall }),
		Platform: ProbeFunc(func() bool { return r.platform }),
		Collider: r.collider,
		Signals:  r.signals,
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	r.ctrl = ctrl
	return r
}

func (r *rig) ticks(n int, dt float64) {
	for i := 0; i < n; i++ {
		r.ctrl.Tick(dt)
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNewControllerRejectsMissingCollaborators(t *testing.T) {
	probe := ProbeFunc(func() bool { return false })
	bad := DefaultConfig()
	bad.MaxJumps = -1
	negative := DefaultConfig()
	negative.DashSpeed = -3

	cases := []struct {
		name string
		cfg  Config
		host Host
		want error
	}{
		{"nil_body", DefaultConfig(), Host{Ground: probe, Wall: probe}, ErrNilBody},
		{"nil_ground", DefaultConfig(), Host{Body: &fakeBody{}, Wall: probe}, ErrNilGroundProbe},
		{"nil_wall", DefaultConfig(), Host{Body: &fakeBody{}, Ground: probe}, ErrNilWallProbe},
		{"negative_jumps", bad, Host{Body: &fakeBody{}, Ground: probe, Wall: probe}, ErrInvalidConfig},
		{"negative_dash_speed", negative, Host{Body: &fakeBody{}, Ground: probe, Wall: probe}, ErrInvalidConfig},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctrl, err := NewController(c.cfg, c.host)
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
			if ctrl != nil {
				t.Fatalf("expected nil controller on error")
			}
		})
	}
}

func TestNewControllerStartsGrounded(t *testing.T) {
	r := newRig(t, DefaultConfig())
	s := r.ctrl.Snapshot()
	if s.Mode != ModeGrounded {
		t.Fatalf("expected grounded, got %v", s.Mode)
	}
	if s.JumpsRemaining != DefaultConfig().MaxJumps {
		t.Fatalf("expected full charges, got %d", s.JumpsRemaining)
	}
	if !s.FacingRight || !s.CanDash || !s.CollisionEnabled {
		t.Fatalf("unexpected initial flags: %+v", s)
	}
	if r.body.scale != DefaultConfig().BaseGravity {
		t.Fatalf("expected base gravity scale, got %v", r.body.scale)
	}
}

func TestShortHopScenario(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxJumps = 2
	r := newRig(t, cfg)

	r.ctrl.OnJumpPressed()
	if r.body.vy != cfg.JumpPower || r.ctrl.JumpsRemaining() != 1 {
		t.Fatalf("after press: vy=%v jumps=%d", r.body.vy, r.ctrl.JumpsRemaining())
	}
	if r.signals.jumps != 1 {
		t.Fatalf("expected one jump effect, got %d", r.signals.jumps)
	}

	r.ctrl.OnJumpReleased()
	if !approx(r.body.vy, cfg.JumpPower/2) || r.ctrl.JumpsRemaining() != 0 {
		t.Fatalf("after release: vy=%v jumps=%d", r.body.vy, r.ctrl.JumpsRemaining())
	}

	vx, vy := r.body.vx, r.body.vy
	r.ctrl.OnJumpPressed()
	if r.body.vx != vx || r.body.vy != vy {
		t.Fatalf("press without charges changed velocity to (%v,%v)", r.body.vx, r.body.vy)
	}
	if r.signals.jumps != 1 {
		t.Fatalf("press without charges emitted an effect")
	}
}

func TestJumpWithoutChargesOrWindowIsNoop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxJumps = 0
	r := newRig(t, cfg)
	r.ground = false
	r.body.vx, r.body.vy = 1.5, -2
	r.ctrl.Tick(0.016)

	vx, vy := r.body.vx, r.body.vy
	r.ctrl.OnJumpPressed()
	if r.body.vx != vx || r.body.vy != vy {
		t.Fatalf("expected no velocity change, got (%v,%v)", r.body.vx, r.body.vy)
	}
	if r.signals.jumps != 0 {
		t.Fatalf("expected no jump effect, got %d", r.signals.jumps)
	}
}

func TestReleaseAfterApexDoesNothing(t *testing.T) {
	r := newRig(t, DefaultConfig())
	r.ctrl.OnJumpPressed()
	r.ground = false
	r.body.vy = -1
	r.ctrl.Tick(0.016)

	before := r.ctrl.JumpsRemaining()
	r.ctrl.OnJumpReleased()
	if r.body.vy != -1 {
		t.Fatalf("release after apex changed vy to %v", r.body.vy)
	}
	if r.ctrl.JumpsRemaining() != before {
		t.Fatalf("release after apex spent a charge")
	}
}

func TestLandingRefillsJumps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxJumps = 3
	r := newRig(t, cfg)

	r.ctrl.Tick(0.016)
	r.ctrl.OnJumpPressed()
	r.ground = false
	r.ctrl.Tick(0.016)
	r.ctrl.OnJumpPressed()
	r.ctrl.OnJumpPressed()
	if r.ctrl.JumpsRemaining() != 0 {
		t.Fatalf("expected charges spent, got %d", r.ctrl.JumpsRemaining())
	}

	r.ground = true
	r.ctrl.Tick(0.016)
	if r.ctrl.JumpsRemaining() != cfg.MaxJumps {
		t.Fatalf("expected refill to %d, got %d", cfg.MaxJumps, r.ctrl.JumpsRemaining())
	}
	if r.ctrl.Mode() != ModeGrounded {
		t.Fatalf("expected grounded after landing, got %v", r.ctrl.Mode())
	}
}

func TestGravityScaling(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		name      string
		vy        float64
		wantVY    float64
		wantScale float64
	}{
		{"rising", 4, 4, cfg.BaseGravity},
		{"resting", 0, 0, cfg.BaseGravity},
		{"falling", -5, -5, cfg.BaseGravity * cfg.FallSpeedMultiplier},
		{"terminal", -40, -cfg.MaxFallSpeed, cfg.BaseGravity * cfg.FallSpeedMultiplier},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newRig(t, cfg)
			r.ground = false
			r.body.vy = c.vy
			r.ctrl.Tick(0.016)
			if r.body.vy != c.wantVY {
				t.Fatalf("expected vy %v, got %v", c.wantVY, r.body.vy)
			}
			if r.body.scale != c.wantScale {
				t.Fatalf("expected scale %v, got %v", c.wantScale, r.body.scale)
			}
		})
	}
}

func TestWallSlide(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		name        string
		grounded    bool
		wall        bool
		input       float64
		vy          float64
		wantSliding bool
		wantVY      float64
	}{
		{"pressing_into_wall", false, true, 1, -10, true, -cfg.WallSlideSpeed},
		{"slow_fall_kept", false, true, -1, -1, true, -1},
		{"no_input", false, true, 0, -10, false, -10},
		{"grounded", true, true, 1, 0, false, 0},
		{"no_wall", false, false, 1, -3, false, -3},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newRig(t, cfg)
			r.ground = c.grounded
			r.wall = c.wall
			r.body.vy = c.vy
			r.ctrl.OnMoveInput(c.input)
			r.ctrl.Tick(0.016)

			s := r.ctrl.Snapshot()
			if s.WallSliding != c.wantSliding {
				t.Fatalf("expected sliding=%v, got %v", c.wantSliding, s.WallSliding)
			}
			if r.body.vy != c.wantVY {
				t.Fatalf("expected vy %v, got %v", c.wantVY, r.body.vy)
			}
			if c.wantSliding && s.Mode != ModeWallSliding {
				t.Fatalf("expected wall sliding mode, got %v", s.Mode)
			}
			if c.wantSliding && r.body.vy < -cfg.WallSlideSpeed {
				t.Fatalf("slide speed exceeded: %v", r.body.vy)
			}
		})
	}
}

// slideOnRightWall puts the character on a wall to its right and leaves the
// wall jump window open.
func slideOnRightWall(t *testing.T, r *rig) {
	t.Helper()
	r.ground = false
	r.wall = true
	r.body.vy = -1
	r.ctrl.OnMoveInput(1)
	r.ctrl.Tick(0.1)
	s := r.ctrl.Snapshot()
	if !s.WallSliding {
		t.Fatalf("expected wall slide")
	}
	if s.WallJumpDirection != -1 || s.WallJumpTimer != r.ctrl.Config().WallJumpTime {
		t.Fatalf("unexpected window: dir=%v timer=%v", s.WallJumpDirection, s.WallJumpTimer)
	}
}

func TestWallJumpLaunchesAwayAndLocksInput(t *testing.T) {
	cfg := DefaultConfig()
	r := newRig(t, cfg)
	slideOnRightWall(t, r)

	r.wall = false
	r.ctrl.Tick(0.1)
	if got := r.ctrl.Snapshot().WallJumpTimer; !approx(got, cfg.WallJumpTime-0.1) {
		t.Fatalf("expected window to decay, got %v", got)
	}

	r.ctrl.OnJumpPressed()
	if r.body.vx != -cfg.WallJumpPower.X || r.body.vy != cfg.WallJumpPower.Y {
		t.Fatalf("expected launch (%v,%v), got (%v,%v)", -cfg.WallJumpPower.X, cfg.WallJumpPower.Y, r.body.vx, r.body.vy)
	}
	s := r.ctrl.Snapshot()
	if s.FacingRight {
		t.Fatalf("expected facing to flip away from the wall")
	}
	if s.WallJumpTimer != 0 || !s.WallJumping {
		t.Fatalf("expected window consumed and wall jump active: %+v", s)
	}
	if r.signals.jumps != 2 {
		t.Fatalf("expected both jump branches to emit, got %d", r.signals.jumps)
	}

	locked := int(math.Round((cfg.WallJumpTime + wallJumpGrace) / 0.1))
	for i := 0; i < locked; i++ {
		r.body.vy = 1
		r.ctrl.Tick(0.1)
		if r.body.vx != -cfg.WallJumpPower.X {
			t.Fatalf("tick %d: input regained control early, vx=%v", i, r.body.vx)
		}
	}
	r.ctrl.Tick(0.1)
	if r.body.vx != cfg.MoveSpeed {
		t.Fatalf("expected input control after lock, vx=%v", r.body.vx)
	}
	if !r.ctrl.FacingRight() {
		t.Fatalf("expected facing to follow input after lock")
	}
}

func TestWallJumpWindowExpires(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxJumps = 0
	r := newRig(t, cfg)
	slideOnRightWall(t, r)

	r.wall = false
	r.ticks(int(cfg.WallJumpTime/0.1)+1, 0.1)
	if got := r.ctrl.Snapshot().WallJumpTimer; got != 0 {
		t.Fatalf("expected closed window, got %v", got)
	}

	vx, vy := r.body.vx, r.body.vy
	r.ctrl.OnJumpPressed()
	if r.body.vx != vx || r.body.vy != vy || r.signals.jumps != 0 {
		t.Fatalf("expected no jump after window closed")
	}
}

func TestWallJumpRefillPolicy(t *testing.T) {
	cases := []struct {
		name   string
		refill bool
		want   int
	}{
		{"refills", true, 2},
		{"keeps_spent", false, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.MaxJumps = 2
			cfg.WallJumpRefillsJumps = c.refill
			r := newRig(t, cfg)
			r.ground = false
			r.ctrl.Tick(0.1)
			r.ctrl.OnJumpPressed()
			r.ctrl.OnJumpPressed()
			slideOnRightWall(t, r)

			r.ctrl.OnJumpPressed()
			if got := r.ctrl.JumpsRemaining(); got != c.want {
				t.Fatalf("expected %d charges after wall jump, got %d", c.want, got)
			}
		})
	}
}

func TestNewWallSlideCancelsWallJump(t *testing.T) {
	r := newRig(t, DefaultConfig())
	slideOnRightWall(t, r)
	r.ctrl.OnJumpPressed()
	if !r.ctrl.Snapshot().WallJumping {
		t.Fatalf("expected wall jump")
	}

	r.body.vy = -1
	r.ctrl.OnMoveInput(-1)
	r.ctrl.Tick(0.1)
	s := r.ctrl.Snapshot()
	if s.WallJumping {
		t.Fatalf("expected wall slide to cancel the wall jump")
	}
	if s.Mode != ModeWallSliding {
		t.Fatalf("expected wall sliding, got %v", s.Mode)
	}
	if s.WallJumpDirection != 1 {
		t.Fatalf("expected new window to point right, got %v", s.WallJumpDirection)
	}
}

func TestDashSequence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DashDuration = 0.2
	cfg.DashCooldown = 0.3
	r := newRig(t, cfg)
	r.ctrl.Tick(0.1)
	r.body.vy = 3

	r.ctrl.OnDashPressed()
	if r.body.vx != cfg.DashSpeed || r.body.vy != 3 {
		t.Fatalf("expected dash velocity (%v,3), got (%v,%v)", cfg.DashSpeed, r.body.vx, r.body.vy)
	}
	if s := r.ctrl.Snapshot(); !s.Dashing || s.CanDash || s.Mode != ModeDashing {
		t.Fatalf("unexpected dash state: %+v", s)
	}
	if len(r.signals.trail) != 1 || !r.signals.trail[0] {
		t.Fatalf("expected trail on, got %v", r.signals.trail)
	}

	r.ground = false
	r.wall = true
	r.ctrl.OnMoveInput(-1)
	r.body.vy = -50
	r.ctrl.Tick(0.1)
	if r.body.vx != cfg.DashSpeed || r.body.vy != -50 {
		t.Fatalf("dash did not freeze movement logic: (%v,%v)", r.body.vx, r.body.vy)
	}
	r.ctrl.OnJumpPressed()
	if r.body.vy != -50 {
		t.Fatalf("jump applied during dash")
	}

	r.ctrl.Tick(0.1)
	if r.body.vx != 0 {
		t.Fatalf("expected vx exactly 0 after dash, got %v", r.body.vx)
	}
	if s := r.ctrl.Snapshot(); s.Dashing || s.CanDash {
		t.Fatalf("unexpected state after dash: %+v", s)
	}
	if len(r.signals.trail) != 2 || r.signals.trail[1] {
		t.Fatalf("expected trail off, got %v", r.signals.trail)
	}

	r.wall = false
	r.ticks(20, 0.1)
	if r.ctrl.CanDash() {
		t.Fatalf("airborne character regained dash")
	}
	r.ctrl.OnDashPressed()
	if len(r.signals.trail) != 2 {
		t.Fatalf("dash started while unavailable")
	}

	r.ground = true
	r.ctrl.Tick(0.1)
	if !r.ctrl.CanDash() {
		t.Fatalf("expected dash after landing")
	}
}

func TestDashWaitsForCooldownEvenWhenGrounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DashDuration = 0.1
	cfg.DashCooldown = 0.5
	r := newRig(t, cfg)
	r.ctrl.OnMoveInput(-1)
	r.ctrl.Tick(0.1)

	r.ctrl.OnDashPressed()
	if r.body.vx != -cfg.DashSpeed {
		t.Fatalf("expected leftward dash, got %v", r.body.vx)
	}
	r.ctrl.Tick(0.1)
	for i := 0; i < 4; i++ {
		r.ctrl.Tick(0.1)
		if r.ctrl.CanDash() {
			t.Fatalf("dash available before cooldown elapsed (tick %d)", i)
		}
	}
	r.ctrl.Tick(0.1)
	if !r.ctrl.CanDash() {
		t.Fatalf("expected dash after cooldown while grounded")
	}
}

func TestDropThrough(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DroppingTime = 0.3

	t.Run("on_platform", func(t *testing.T) {
		r := newRig(t, cfg)
		r.platform = true
		r.ctrl.Tick(0.1)

		r.ctrl.OnDropPressed()
		r.ctrl.OnDropPressed()
		if len(r.collider.calls) != 1 || r.collider.calls[0] {
			t.Fatalf("expected a single disable, got %v", r.collider.calls)
		}
		if r.ctrl.Snapshot().CollisionEnabled {
			t.Fatalf("expected collision disabled")
		}

		r.ground = false
		r.platform = false
		r.ticks(2, 0.1)
		if len(r.collider.calls) != 1 {
			t.Fatalf("re-enabled too early: %v", r.collider.calls)
		}
		r.ctrl.Tick(0.1)
		if len(r.collider.calls) != 2 || !r.collider.calls[1] {
			t.Fatalf("expected re-enable, got %v", r.collider.calls)
		}
		if !r.ctrl.Snapshot().CollisionEnabled {
			t.Fatalf("expected collision enabled")
		}
	})

	t.Run("solid_ground", func(t *testing.T) {
		r := newRig(t, cfg)
		r.ctrl.Tick(0.1)
		r.ctrl.OnDropPressed()
		if len(r.collider.calls) != 0 {
			t.Fatalf("dropped through solid ground")
		}
	})

	t.Run("airborne", func(t *testing.T) {
		r := newRig(t, cfg)
		r.ground = false
		r.platform = true
		r.ctrl.Tick(0.1)
		r.ctrl.OnDropPressed()
		if len(r.collider.calls) != 0 {
			t.Fatalf("dropped while airborne")
		}
	})
}

func TestFacingFollowsInput(t *testing.T) {
	r := newRig(t, DefaultConfig())
	steps := []struct {
		input     float64
		wantRight bool
		wantVX    float64
	}{
		{-1, false, -5},
		{0, false, 0},
		{2, true, 5},
		{-0.5, false, -2.5},
	}
	for i, s := range steps {
		r.ctrl.OnMoveInput(s.input)
		r.ctrl.Tick(0.016)
		if r.ctrl.FacingRight() != s.wantRight {
			t.Fatalf("step %d: facing right=%v", i, r.ctrl.FacingRight())
		}
		if !approx(r.body.vx, s.wantVX) {
			t.Fatalf("step %d: expected vx %v, got %v", i, s.wantVX, r.body.vx)
		}
	}
}

func TestSetConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxJumps = 4
	r := newRig(t, cfg)

	smaller := cfg
	smaller.MaxJumps = 1
	if err := r.ctrl.SetConfig(smaller); err != nil {
		t.Fatalf("set config: %v", err)
	}
	if r.ctrl.JumpsRemaining() != 1 {
		t.Fatalf("expected charges clamped to 1, got %d", r.ctrl.JumpsRemaining())
	}

	bad := cfg
	bad.WallJumpTime = -1
	if err := r.ctrl.SetConfig(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid config, got %v", err)
	}
	if r.ctrl.Config().MaxJumps != 1 {
		t.Fatalf("rejected config was applied")
	}
}

func TestInvariantsHoldUnderRandomInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxJumps = 3
	r := newRig(t, cfg)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 5000; i++ {
		switch rng.Intn(8) {
		case 0:
			r.ctrl.OnJumpPressed()
		case 1:
			r.ctrl.OnJumpReleased()
		case 2:
			r.ctrl.OnDashPressed()
		case 3:
			r.ctrl.OnDropPressed()
		case 4:
			r.ctrl.OnMoveInput(rng.Float64()*2 - 1)
		case 5:
			r.ground = rng.Intn(2) == 0
			r.platform = r.ground && rng.Intn(2) == 0
		case 6:
			r.wall = rng.Intn(2) == 0
		case 7:
			r.body.vy = rng.Float64()*40 - 20
		}
		r.ctrl.Tick(1.0 / 60.0)

		s := r.ctrl.Snapshot()
		if s.JumpsRemaining < 0 || s.JumpsRemaining > cfg.MaxJumps {
			t.Fatalf("step %d: jumps out of range: %d", i, s.JumpsRemaining)
		}
		if s.WallJumpTimer < 0 || s.WallJumpTimer > cfg.WallJumpTime {
			t.Fatalf("step %d: wall jump timer out of range: %v", i, s.WallJumpTimer)
		}
		if s.Dashing && s.WallJumping {
			t.Fatalf("step %d: dash and wall jump both active", i)
		}
	}
}

func TestModeChangesAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	body := &fakeBody{}
	ground := true
	ctrl, err := NewController(DefaultConfig(), Host{
		Body:   body,
		Ground: ProbeFunc(func() bool { return ground }),
		Wall:   ProbeFunc(func() bool { return false }),
		Logger: zap.New(core),
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	ctrl.Tick(0.016)
	if logs.Len() != 0 {
		t.Fatalf("expected no transition while grounded, got %d", logs.Len())
	}

	ground = false
	body.vy = -1
	ctrl.Tick(0.016)
	entries := logs.FilterMessage("motion mode changed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one transition, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["from"] != "grounded" || fields["to"] != "falling" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}
