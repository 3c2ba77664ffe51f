package component

// Input stores per-frame input state for an entity. The Pressed and Released
// fields are edges and hold for exactly one update.
type Input struct {
	MoveX        float64
	JumpHeld     bool
	JumpPressed  bool
	JumpReleased bool
	DashPressed  bool
	DropPressed  bool
	PausePressed bool
}

var InputComponent = NewComponent[Input]()
