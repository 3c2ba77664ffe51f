package entity

import (
	"errors"
	"fmt"
	"image/color"
	"sort"

	"github.com/milk9111/platformer/ecs"
	"github.com/milk9111/platformer/ecs/component"
	"github.com/milk9111/platformer/prefabs"
)

var (
	ErrNilWorld         = errors.New("build entity: world is nil")
	ErrNoComponents     = errors.New("build entity: prefab does not define components")
	ErrUnknownComponent = errors.New("build entity: no builder for component")
	ErrBadSensor        = errors.New("build entity: bad sensor")
)

var defaultSpriteColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

type buildContext struct {
	PrefabPath string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"player_tag":           addPlayerTag,
	"camera_tag":           addCameraTag,
	"input":                addInput,
	"player_state_machine": addPlayerStateMachine,
	"player_collision":     addPlayerCollision,
	"transform":            addTransform,
	"sprite":               addSprite,
	"render_layer":         addRenderLayer,
	"camera":               addCamera,
	"physics_body":         addPhysicsBody,
	"motion_sensors":       addMotionSensors,
	"motion":               addMotion,
	"gravity_scale":        addGravityScale,
	"animation":            addAnimation,
	"trail":                addTrail,
}

var componentBuildOrder = []string{
	"player_tag",
	"camera_tag",
	"input",
	"player_state_machine",
	"player_collision",
	"transform",
	"sprite",
	"render_layer",
	"camera",
	"physics_body",
	"motion_sensors",
	"motion",
	"gravity_scale",
	"animation",
	"trail",
}

func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, ErrNilWorld
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrNoComponents, prefabPath)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	build := func(name string, raw any) error {
		builder, ok := componentRegistry[name]
		if !ok {
			return fmt.Errorf("%w %q in %q", ErrUnknownComponent, name, prefabPath)
		}
		if err := builder(w, e, raw, ctx); err != nil {
			return fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
		return nil
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := build(name, raw); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, err
		}
		delete(remaining, name)
	}

	names := make([]string, 0, len(remaining))
	for name := range remaining {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := build(name, remaining[name]); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, err
		}
	}

	return e, nil
}

func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y, rotation float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent)
	if !ok {
		t = &component.Transform{ScaleX: 1, ScaleY: 1}
	}
	t.X = x
	t.Y = y
	t.Rotation = rotation
	return ecs.Add(w, e, component.TransformComponent, t)
}

func addPlayerTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PlayerTagComponent, &component.PlayerTag{})
}

func addCameraTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.CameraTagComponent, &component.CameraTag{})
}

func addInput(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.InputComponent, &component.Input{})
}

func addPlayerStateMachine(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PlayerStateMachineComponent, &component.PlayerStateMachine{})
}

func addPlayerCollision(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PlayerCollisionComponent, &component.PlayerCollision{})
}

type transformSpec = prefabs.TransformComponentSpec

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	if spec.ScaleX == 0 {
		spec.ScaleX = 1
	}
	if spec.ScaleY == 0 {
		spec.ScaleY = 1
	}
	return ecs.Add(w, e, component.TransformComponent, &component.Transform{
		X:        spec.X,
		Y:        spec.Y,
		ScaleX:   spec.ScaleX,
		ScaleY:   spec.ScaleY,
		Rotation: spec.Rotation,
	})
}

type spriteSpec = prefabs.SpriteComponentSpec

func addSprite(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[spriteSpec](raw)
	if err != nil {
		return fmt.Errorf("decode sprite spec: %w", err)
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return fmt.Errorf("sprite size %gx%g must be positive", spec.Width, spec.Height)
	}
	return ecs.Add(w, e, component.SpriteComponent, &component.Sprite{
		Width:      spec.Width,
		Height:     spec.Height,
		Color:      spec.Color.RGBA8(defaultSpriteColor),
		EyeColor:   spec.EyeColor.RGBA8(color.RGBA{}),
		FacingLeft: spec.FacingLeft,
		SquashX:    1,
		SquashY:    1,
	})
}

type renderLayerSpec = prefabs.RenderLayerComponentSpec

func addRenderLayer(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[renderLayerSpec](raw)
	if err != nil {
		return fmt.Errorf("decode render layer spec: %w", err)
	}
	return ecs.Add(w, e, component.RenderLayerComponent, &component.RenderLayer{Index: spec.Index})
}

type cameraSpec = prefabs.CameraComponentSpec

func addCamera(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[cameraSpec](raw)
	if err != nil {
		return fmt.Errorf("decode camera spec: %w", err)
	}
	if spec.Zoom <= 0 {
		spec.Zoom = 1
	}
	if spec.Smoothness == 0 {
		spec.Smoothness = 0.15
	}
	return ecs.Add(w, e, component.CameraComponent, &component.Camera{
		TargetName: spec.TargetName,
		Zoom:       spec.Zoom,
		Smoothness: spec.Smoothness,
		LookAhead:  spec.LookAhead,
	})
}

type physicsBodySpec = prefabs.PhysicsBodyComponentSpec

func addPhysicsBody(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[physicsBodySpec](raw)
	if err != nil {
		return fmt.Errorf("decode physics body spec: %w", err)
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		// fall back to the sprite box
		if sprite, ok := ecs.Get(w, e, component.SpriteComponent); ok {
			spec.Width, spec.Height = sprite.Width, sprite.Height
		}
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return fmt.Errorf("physics body size %gx%g must be positive", spec.Width, spec.Height)
	}
	return ecs.Add(w, e, component.PhysicsBodyComponent, &component.PhysicsBody{Width: spec.Width, Height: spec.Height})
}

type motionSensorsSpec = prefabs.MotionSensorsComponentSpec

func addMotionSensors(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[motionSensorsSpec](raw)
	if err != nil {
		return fmt.Errorf("decode motion sensors spec: %w", err)
	}
	ground, err := sensorBox("ground", spec.Ground, true)
	if err != nil {
		return err
	}
	wall, err := sensorBox("wall", spec.Wall, true)
	if err != nil {
		return err
	}
	platform, err := sensorBox("platform", spec.Platform, false)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.MotionSensorsComponent, &component.MotionSensors{
		Ground:   ground,
		Wall:     wall,
		Platform: platform,
	})
}

func sensorBox(name string, spec prefabs.SensorBoxSpec, required bool) (component.SensorBox, error) {
	if len(spec.Layers) == 0 {
		if required {
			return component.SensorBox{}, fmt.Errorf("%w: %s needs at least one layer", ErrBadSensor, name)
		}
		return component.SensorBox{}, nil
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return component.SensorBox{}, fmt.Errorf("%w: %s size %gx%g must be positive", ErrBadSensor, name, spec.Width, spec.Height)
	}
	if _, err := ecs.LayerMask(spec.Layers...); err != nil {
		return component.SensorBox{}, fmt.Errorf("%w: %s: %w", ErrBadSensor, name, err)
	}
	return component.SensorBox{
		OffsetX: spec.OffsetX,
		OffsetY: spec.OffsetY,
		Width:   spec.Width,
		Height:  spec.Height,
		Layers:  append([]string(nil), spec.Layers...),
		MirrorX: spec.MirrorX,
	}, nil
}

func addMotion(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	cfg, err := prefabs.DecodeMotionConfig(raw)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.MotionComponent, &component.Motion{Config: cfg})
}

type gravityScaleSpec = prefabs.GravityScaleComponentSpec

func addGravityScale(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[gravityScaleSpec](raw)
	if err != nil {
		return fmt.Errorf("decode gravity scale spec: %w", err)
	}
	if spec.Scale == 0 {
		spec.Scale = 1
	}
	return ecs.Add(w, e, component.GravityScaleComponent, &component.GravityScale{Scale: spec.Scale})
}

type animationSpec = prefabs.AnimationComponentSpec

func addAnimation(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[animationSpec](raw)
	if err != nil {
		return fmt.Errorf("decode animation spec: %w", err)
	}
	if len(spec.Defs) == 0 {
		return fmt.Errorf("animation defines no defs")
	}

	fallback := defaultSpriteColor
	if sprite, ok := ecs.Get(w, e, component.SpriteComponent); ok {
		fallback = sprite.Color
	}

	defs := make(map[string]component.AnimationDef, len(spec.Defs))
	for name, def := range spec.Defs {
		frames := def.FrameCount
		if frames <= 0 {
			frames = 1
		}
		defs[name] = component.AnimationDef{
			Name:       name,
			Color:      def.Color.RGBA8(fallback),
			FrameCount: frames,
			FPS:        def.FPS,
			Loop:       def.Loop,
			SquashX:    def.SquashX,
			SquashY:    def.SquashY,
		}
	}
	if spec.Current != "" {
		if _, ok := defs[spec.Current]; !ok {
			return fmt.Errorf("animation current %q is not defined", spec.Current)
		}
	}

	playing := spec.Playing
	if m, ok := raw.(map[string]any); ok {
		if _, has := m["playing"]; !has {
			playing = true
		}
	}

	return ecs.Add(w, e, component.AnimationComponent, &component.Animation{
		Defs:    defs,
		Current: spec.Current,
		Playing: playing,
	})
}

type trailSpec = prefabs.TrailComponentSpec

func addTrail(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[trailSpec](raw)
	if err != nil {
		return fmt.Errorf("decode trail spec: %w", err)
	}
	if spec.Interval <= 0 {
		spec.Interval = 1
	}
	if spec.Life <= 0 {
		spec.Life = 10
	}
	fallback := defaultSpriteColor
	if sprite, ok := ecs.Get(w, e, component.SpriteComponent); ok {
		fallback = sprite.Color
	}
	return ecs.Add(w, e, component.TrailComponent, &component.Trail{
		Interval: spec.Interval,
		Life:     spec.Life,
		Color:    spec.Color.RGBA8(fallback),
	})
}
