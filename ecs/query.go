package ecs

import "github.com/milk9111/platformer/ecs/component"

// smallest returns the entities of the smallest store among kinds, or nil
// when any of them has no store yet.
func smallest(w *World, kinds ...component.Kind) []Entity {
	var best componentStore
	for _, k := range kinds {
		s, ok := w.stores[k.ID()]
		if !ok {
			return nil
		}
		if best == nil || s.len() < best.len() {
			best = s
		}
	}
	if best == nil {
		return nil
	}
	// copy so callbacks may add or remove components while iterating
	return append([]Entity(nil), best.entities()...)
}

// Query returns the live entities that have every kind.
func (w *World) Query(kinds ...component.Kind) []Entity {
	candidates := smallest(w, kinds...)
	out := candidates[:0]
	for _, e := range candidates {
		if !IsAlive(w, e) {
			continue
		}
		all := true
		for _, k := range kinds {
			if !w.stores[k.ID()].has(e) {
				all = false
				break
			}
		}
		if all {
			out = append(out, e)
		}
	}
	return out
}

// First returns one live entity having every kind.
func (w *World) First(kinds ...component.Kind) (Entity, bool) {
	return First(w, kinds...)
}

func First(w *World, kinds ...component.Kind) (Entity, bool) {
	ents := w.Query(kinds...)
	if len(ents) == 0 {
		return 0, false
	}
	return ents[0], true
}

func ForEach[A any](w *World, ka component.ComponentKind[A], fn func(Entity, *A)) {
	sa := storeFor(w, ka, false)
	if sa == nil {
		return
	}
	for _, e := range smallest(w, ka) {
		a, ok := sa.get(e)
		if !ok {
			continue
		}
		fn(e, a)
	}
}

func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	sa, sb := storeFor(w, ka, false), storeFor(w, kb, false)
	if sa == nil || sb == nil {
		return
	}
	for _, e := range smallest(w, ka, kb) {
		a, ok := sa.get(e)
		if !ok {
			continue
		}
		b, ok := sb.get(e)
		if !ok {
			continue
		}
		fn(e, a, b)
	}
}

func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	sa, sb, sc := storeFor(w, ka, false), storeFor(w, kb, false), storeFor(w, kc, false)
	if sa == nil || sb == nil || sc == nil {
		return
	}
	for _, e := range smallest(w, ka, kb, kc) {
		a, ok := sa.get(e)
		if !ok {
			continue
		}
		b, ok := sb.get(e)
		if !ok {
			continue
		}
		c, ok := sc.get(e)
		if !ok {
			continue
		}
		fn(e, a, b, c)
	}
}

func ForEach4[A, B, C, D any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], kd component.ComponentKind[D], fn func(Entity, *A, *B, *C, *D)) {
	sa, sb, sc, sd := storeFor(w, ka, false), storeFor(w, kb, false), storeFor(w, kc, false), storeFor(w, kd, false)
	if sa == nil || sb == nil || sc == nil || sd == nil {
		return
	}
	for _, e := range smallest(w, ka, kb, kc, kd) {
		a, ok := sa.get(e)
		if !ok {
			continue
		}
		b, ok := sb.get(e)
		if !ok {
			continue
		}
		c, ok := sc.get(e)
		if !ok {
			continue
		}
		d, ok := sd.get(e)
		if !ok {
			continue
		}
		fn(e, a, b, c, d)
	}
}
