package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformer/motion"
)

// CharacterBody is the runtime body physics creates for a character.
type CharacterBody interface {
	motion.Body
	motion.Collider
	Position() (x, y float64)
	SetPosition(x, y float64)
	Body() *cp.Body
}

// PhysicsBody stores collider configuration and, once the physics system has
// run, the live body.
type PhysicsBody struct {
	Width  float64
	Height float64

	Character CharacterBody
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
