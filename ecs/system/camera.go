package system

import (
	"github.com/milk9111/platformer/common"
	"github.com/milk9111/platformer/ecs"
	"github.com/milk9111/platformer/ecs/component"
)

// CameraSystem keeps the camera transform at the top-left corner of the view
// so the target sits in the middle, easing toward it and staying inside the
// level.
type CameraSystem struct {
	camEntity    ecs.Entity
	targetEntity ecs.Entity
	snapped      bool
}

func NewCameraSystem() *CameraSystem {
	return &CameraSystem{}
}

func (cs *CameraSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	if !cs.camEntity.Valid() || !w.IsAlive(cs.camEntity) {
		camEntity, ok := w.First(component.CameraComponent.Kind(), component.TransformComponent.Kind())
		if !ok {
			return
		}
		cs.camEntity = camEntity
		cs.snapped = false
	}
	cam, ok := ecs.Get(w, cs.camEntity, component.CameraComponent)
	if !ok {
		return
	}
	camTransform, ok := ecs.Get(w, cs.camEntity, component.TransformComponent)
	if !ok {
		return
	}

	if !cs.targetEntity.Valid() || !w.IsAlive(cs.targetEntity) {
		cs.targetEntity = findEntityByNameOrTag(w, cam.TargetName)
		cs.snapped = false
	}
	target, ok := ecs.Get(w, cs.targetEntity, component.TransformComponent)
	if !ok {
		return
	}

	zoom := cam.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	viewW, viewH := cam.ViewW/zoom, cam.ViewH/zoom

	lookAhead := cam.LookAhead
	if sprite, ok := ecs.Get(w, cs.targetEntity, component.SpriteComponent); ok && sprite.FacingLeft {
		lookAhead = -lookAhead
	}
	desiredX := target.X + lookAhead - viewW/2
	desiredY := target.Y - viewH/2

	if pw := w.PhysicsWorld(); pw != nil && pw.Level() != nil {
		worldW, worldH := pw.Level().PixelSize()
		desiredX = clampView(desiredX, viewW, worldW)
		desiredY = clampView(desiredY, viewH, worldH)
	}

	if !cs.snapped || cam.Smoothness <= 0 || cam.Smoothness >= 1 {
		camTransform.X, camTransform.Y = desiredX, desiredY
		cs.snapped = true
		return
	}
	camTransform.X = common.Lerp(camTransform.X, desiredX, cam.Smoothness)
	camTransform.Y = common.Lerp(camTransform.Y, desiredY, cam.Smoothness)
}

// clampView keeps a view of size view inside [0, world]. A world smaller than
// the view is centred.
func clampView(pos, view, world float64) float64 {
	if world <= view {
		return (world - view) / 2
	}
	return common.Clamp(pos, 0, world-view)
}

func findEntityByNameOrTag(w *ecs.World, name string) ecs.Entity {
	if name == "player" || name == "" {
		if e, ok := w.First(component.PlayerTagComponent.Kind()); ok {
			return e
		}
	}
	return 0
}
