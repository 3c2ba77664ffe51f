package system

import (
	"github.com/milk9111/platformer/ecs"
	"github.com/milk9111/platformer/ecs/component"
	"github.com/milk9111/platformer/motion"
)

// Player state singletons (avoid allocations on transitions).
var (
	playerStateIdle     component.PlayerState = &playerIdleState{}
	playerStateRun      component.PlayerState = &playerRunState{}
	playerStateRise     component.PlayerState = &playerRiseState{}
	playerStateFall     component.PlayerState = &playerFallState{}
	playerStateWall     component.PlayerState = &playerWallSlideState{}
	playerStateWallJump component.PlayerState = &playerWallJumpState{}
	playerStateDash     component.PlayerState = &playerDashState{}
)

// runThreshold is the horizontal speed, in world units per second, above
// which a grounded player counts as running.
const runThreshold = 0.1

// playerStateFor maps the controller's mode onto a presentation state. The
// controller owns movement; these states only pick animations.
func playerStateFor(snap motion.Snapshot) component.PlayerState {
	switch snap.Mode {
	case motion.ModeDashing:
		return playerStateDash
	case motion.ModeWallJumping:
		return playerStateWallJump
	case motion.ModeWallSliding:
		return playerStateWall
	case motion.ModeRising:
		return playerStateRise
	case motion.ModeFalling:
		return playerStateFall
	}
	if snap.VelocityX > runThreshold || snap.VelocityX < -runThreshold {
		return playerStateRun
	}
	return playerStateIdle
}

type playerIdleState struct{}

type playerRunState struct{}

type playerRiseState struct{}

type playerFallState struct{}

type playerWallSlideState struct{}

type playerWallJumpState struct{}

type playerDashState struct{}

func (playerIdleState) Name() string { return "idle" }
func (playerIdleState) Enter(ctx *component.PlayerStateContext) {
	ctx.ChangeAnimation("idle")
}
func (playerIdleState) Exit(ctx *component.PlayerStateContext) {}
func (playerIdleState) HandleInput(ctx *component.PlayerStateContext) {
	// start the run animation on the press rather than a frame later
	if ctx.Input != nil && ctx.Input.MoveX != 0 && ctx.Motion.Grounded && !ctx.Motion.Dashing {
		ctx.ChangeState(playerStateRun)
	}
}
func (playerIdleState) Update(ctx *component.PlayerStateContext) { followMotion(ctx, playerStateIdle) }

func (playerRunState) Name() string { return "run" }
func (playerRunState) Enter(ctx *component.PlayerStateContext) {
	ctx.ChangeAnimation("run")
}
func (playerRunState) Exit(ctx *component.PlayerStateContext)        {}
func (playerRunState) HandleInput(ctx *component.PlayerStateContext) {}
func (playerRunState) Update(ctx *component.PlayerStateContext) {
	if ctx.Input != nil && ctx.Input.MoveX != 0 && ctx.Motion.Mode == motion.ModeGrounded {
		return
	}
	followMotion(ctx, playerStateRun)
}

func (playerRiseState) Name() string { return "rise" }
func (playerRiseState) Enter(ctx *component.PlayerStateContext) {
	ctx.ChangeAnimation("rise")
}
func (playerRiseState) Exit(ctx *component.PlayerStateContext)        {}
func (playerRiseState) HandleInput(ctx *component.PlayerStateContext) {}
func (playerRiseState) Update(ctx *component.PlayerStateContext)      { followMotion(ctx, playerStateRise) }

func (playerFallState) Name() string { return "fall" }
func (playerFallState) Enter(ctx *component.PlayerStateContext) {
	ctx.ChangeAnimation("fall")
}
func (playerFallState) Exit(ctx *component.PlayerStateContext)        {}
func (playerFallState) HandleInput(ctx *component.PlayerStateContext) {}
func (playerFallState) Update(ctx *component.PlayerStateContext)      { followMotion(ctx, playerStateFall) }

func (playerWallSlideState) Name() string { return "wall_slide" }
func (playerWallSlideState) Enter(ctx *component.PlayerStateContext) {
	ctx.ChangeAnimation("wall_slide")
}
func (playerWallSlideState) Exit(ctx *component.PlayerStateContext)        {}
func (playerWallSlideState) HandleInput(ctx *component.PlayerStateContext) {}
func (playerWallSlideState) Update(ctx *component.PlayerStateContext) {
	followMotion(ctx, playerStateWall)
}

func (playerWallJumpState) Name() string { return "wall_jump" }
func (playerWallJumpState) Enter(ctx *component.PlayerStateContext) {
	ctx.ChangeAnimation("wall_jump")
}
func (playerWallJumpState) Exit(ctx *component.PlayerStateContext)        {}
func (playerWallJumpState) HandleInput(ctx *component.PlayerStateContext) {}
func (playerWallJumpState) Update(ctx *component.PlayerStateContext) {
	followMotion(ctx, playerStateWallJump)
}

func (playerDashState) Name() string { return "dash" }
func (playerDashState) Enter(ctx *component.PlayerStateContext) {
	ctx.ChangeAnimation("dash")
}
func (playerDashState) Exit(ctx *component.PlayerStateContext)        {}
func (playerDashState) HandleInput(ctx *component.PlayerStateContext) {}
func (playerDashState) Update(ctx *component.PlayerStateContext)      { followMotion(ctx, playerStateDash) }

func followMotion(ctx *component.PlayerStateContext, current component.PlayerState) {
	if next := playerStateFor(ctx.Motion); next != current {
		ctx.ChangeState(next)
	}
}

// PlayerStateSystem drives the presentation state machine from the
// controller snapshot.
type PlayerStateSystem struct{}

func NewPlayerStateSystem() *PlayerStateSystem {
	return &PlayerStateSystem{}
}

func (s *PlayerStateSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach2(w, component.PlayerStateMachineComponent.Kind(), component.MotionComponent.Kind(), func(e ecs.Entity, sm *component.PlayerStateMachine, mc *component.Motion) {
		if mc.Controller == nil {
			return
		}
		input, _ := ecs.Get(w, e, component.InputComponent)

		ctx := &component.PlayerStateContext{
			Input:  input,
			Motion: mc.Controller.Snapshot(),
			ChangeState: func(state component.PlayerState) {
				sm.Pending = state
			},
			ChangeAnimation: func(name string) {
				setAnimation(w, e, name)
			},
		}

		if sm.State == nil {
			sm.State = playerStateFor(ctx.Motion)
			sm.State.Enter(ctx)
		}

		sm.State.HandleInput(ctx)
		if sm.Pending == nil {
			sm.State.Update(ctx)
		}
		if sm.Pending != nil && sm.Pending != sm.State {
			sm.State.Exit(ctx)
			sm.State = sm.Pending
			sm.State.Enter(ctx)
		}
		sm.Pending = nil
	})
}
