package system

import (
	"github.com/milk9111/platformer/ecs"
	"github.com/milk9111/platformer/ecs/component"
)

// InputSource produces one frame of player intent. The game polls the
// keyboard and gamepad; tests and headless runs supply their own.
type InputSource interface {
	Poll() component.Input
}

// InputFunc adapts a function to InputSource.
type InputFunc func() component.Input

func (f InputFunc) Poll() component.Input {
	return f()
}

type InputSystem struct {
	source InputSource
}

func NewInputSystem(source InputSource) *InputSystem {
	return &InputSystem{source: source}
}

func (i *InputSystem) Update(w *ecs.World) {
	if i == nil || w == nil || i.source == nil {
		return
	}

	frame := i.source.Poll()
	ecs.ForEach(w, component.InputComponent.Kind(), func(e ecs.Entity, input *component.Input) {
		*input = frame
	})
}
