package component

import "image/color"

// Sprite is a flat coloured box drawn centred on the transform.
type Sprite struct {
	Width      float64
	Height     float64
	Color      color.RGBA
	FacingLeft bool
	// Squash scales the drawn box without touching the collider.
	SquashX float64
	SquashY float64
	// EyeColor marks the facing side so orientation reads at a glance.
	EyeColor color.RGBA
}

var SpriteComponent = NewComponent[Sprite]()
