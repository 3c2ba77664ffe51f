package component

const (
	WallNone = iota
	WallLeft
	WallRight
)

// PlayerCollision stores per-player contact state copied from the controller
// after each tick.
type PlayerCollision struct {
	Grounded    bool
	OnPlatform  bool
	WallSliding bool
	// Wall is one of WallNone, WallLeft or WallRight.
	Wall int
}

var PlayerCollisionComponent = NewComponent[PlayerCollision]()
