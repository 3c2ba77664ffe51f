package component

import "image/color"

// AnimationDef describes one box animation: a colour and a squash that
// oscillates over FrameCount frames.
type AnimationDef struct {
	Name       string
	Color      color.RGBA
	FrameCount int
	FPS        float64
	Loop       bool
	SquashX    float64
	SquashY    float64
}

// AnimatorParams are the values presentation reads from motion each frame.
type AnimatorParams struct {
	VerticalVelocity float64
	Speed            float64
	WallSliding      bool
}

type Animation struct {
	Defs       map[string]AnimationDef
	Current    string
	Frame      int
	FrameTimer int
	Playing    bool
	Params     AnimatorParams
}

var AnimationComponent = NewComponent[Animation]()
