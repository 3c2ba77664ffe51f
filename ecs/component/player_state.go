package component

import "github.com/milk9111/platformer/motion"

// PlayerState defines the interface for player presentation states.
// Each state owns its own enter/exit, input handling, and update logic.
type PlayerState interface {
	Name() string
	Enter(ctx *PlayerStateContext)
	Exit(ctx *PlayerStateContext)
	HandleInput(ctx *PlayerStateContext)
	Update(ctx *PlayerStateContext)
}

// PlayerStateContext gives a state read access to the motion snapshot and
// callbacks for switching state and animation.
type PlayerStateContext struct {
	Input           *Input
	Motion          motion.Snapshot
	ChangeState     func(state PlayerState)
	ChangeAnimation func(animation string)
}

// PlayerStateMachine stores the active and pending states for the player.
type PlayerStateMachine struct {
	State   PlayerState
	Pending PlayerState
}

var PlayerStateMachineComponent = NewComponent[PlayerStateMachine]()
