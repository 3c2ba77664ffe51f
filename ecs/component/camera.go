package component

type Camera struct {
	TargetName string
	Zoom       float64
	Smoothness float64
	// LookAhead shifts the view toward the target's facing side, in pixels.
	LookAhead float64
	// ViewW and ViewH are the logical screen size; set by the game on layout.
	ViewW float64
	ViewH float64
}

var CameraComponent = NewComponent[Camera]()
