package ecs

import (
	"fmt"

	"github.com/milk9111/platformer/ecs/component"
)

// Add attaches value to e, replacing any previous value of the same kind.
func Add[T any](w *World, e Entity, handle component.ComponentHandle[T], value *T) error {
	if !IsAlive(w, e) {
		return fmt.Errorf("ecs: add %T to %v: %w", value, e, ErrEntityNotAlive)
	}
	if value == nil {
		return fmt.Errorf("ecs: add %T to %v: %w", value, e, ErrNilComponent)
	}
	kind := handle.Kind()
	if !kind.Valid() {
		return fmt.Errorf("ecs: add %T to %v: %w", value, e, component.ErrInvalidComponentKind)
	}
	storeFor(w, kind, true).set(e, value)
	return nil
}

// Get returns the stored pointer, so callers mutate components in place.
func Get[T any](w *World, e Entity, handle component.ComponentHandle[T]) (*T, bool) {
	if !IsAlive(w, e) {
		return nil, false
	}
	s := storeFor(w, handle.Kind(), false)
	if s == nil {
		return nil, false
	}
	return s.get(e)
}

func Has[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	_, ok := Get(w, e, handle)
	return ok
}

func Remove[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	if !IsAlive(w, e) {
		return false
	}
	s := storeFor(w, handle.Kind(), false)
	if s == nil {
		return false
	}
	return s.remove(e)
}
