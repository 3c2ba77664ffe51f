package system

import (
	"errors"
	"fmt"

	"github.com/milk9111/platformer/common"
	"github.com/milk9111/platformer/ecs"
	"github.com/milk9111/platformer/ecs/component"
	"github.com/milk9111/platformer/motion"
	"go.uber.org/zap"
)

var (
	ErrNoPhysicsWorld     = errors.New("system: world has no physics world")
	ErrUnsupportedBody    = errors.New("system: character body does not support probes")
	ErrMissingSensorLayer = errors.New("system: sensor has no layers")
)

// MotionSystem binds a motion.Controller to every character once its body
// exists, forwards the frame's input and mirrors the result into the
// presentation components.
type MotionSystem struct {
	dt  float64
	log *zap.Logger
}

func NewMotionSystem(log *zap.Logger) *MotionSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &MotionSystem{dt: 1.0 / common.TPS, log: log}
}

func (m *MotionSystem) Update(w *ecs.World) {
	if m == nil || w == nil {
		return
	}

	ecs.ForEach4(w,
		component.MotionComponent.Kind(),
		component.MotionSensorsComponent.Kind(),
		component.PhysicsBodyComponent.Kind(),
		component.InputComponent.Kind(),
		func(e ecs.Entity, mc *component.Motion, sensors *component.MotionSensors, pb *component.PhysicsBody, input *component.Input) {
			if mc.Failed {
				return
			}
			if mc.Controller == nil {
				if pb.Character == nil {
					// physics creates the body on its first pass
					return
				}
				if err := m.bind(w, e, mc, sensors, pb); err != nil {
					mc.Failed = true
					m.log.Error("bind motion controller", zap.Stringer("entity", e), zap.Error(err))
					return
				}
				m.log.Debug("motion controller bound", zap.Stringer("entity", e))
			}

			ctrl := mc.Controller
			ctrl.Tick(m.dt)
			deliverInput(ctrl, input)
			mirrorSnapshot(w, e, ctrl.Snapshot())
		})
}

// ApplyConfig retunes every character. Unbound characters pick the config up
// when they bind.
func (m *MotionSystem) ApplyConfig(w *ecs.World, cfg motion.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("system: apply motion config: %w", err)
	}

	var errs []error
	ecs.ForEach(w, component.MotionComponent.Kind(), func(e ecs.Entity, mc *component.Motion) {
		mc.Config = cfg
		mc.Failed = false
		if mc.Controller == nil {
			return
		}
		if err := mc.Controller.SetConfig(cfg); err != nil {
			errs = append(errs, fmt.Errorf("entity %v: %w", e, err))
		}
	})
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	m.log.Info("motion config applied",
		zap.Float64("move_speed", cfg.MoveSpeed),
		zap.Float64("jump_power", cfg.JumpPower),
		zap.Int("max_jumps", cfg.MaxJumps),
	)
	return nil
}

func (m *MotionSystem) bind(w *ecs.World, e ecs.Entity, mc *component.Motion, sensors *component.MotionSensors, pb *component.PhysicsBody) error {
	pw := w.PhysicsWorld()
	if pw == nil {
		return ErrNoPhysicsWorld
	}
	cb, ok := pb.Character.(*ecs.CharacterBody)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupportedBody, pb.Character)
	}

	ground, err := sensorProbe(pw, cb, sensors.Ground)
	if err != nil {
		return fmt.Errorf("ground sensor: %w", err)
	}
	wall, err := sensorProbe(pw, cb, sensors.Wall)
	if err != nil {
		return fmt.Errorf("wall sensor: %w", err)
	}
	var platform *ecs.BoxProbe
	if len(sensors.Platform.Layers) > 0 {
		if platform, err = sensorProbe(pw, cb, sensors.Platform); err != nil {
			return fmt.Errorf("platform sensor: %w", err)
		}
	}

	host := motion.Host{
		Body:     cb,
		Ground:   ground,
		Wall:     wall,
		Collider: cb,
		Signals:  entitySignals{w: w, e: e},
		Logger:   m.log.With(zap.Stringer("entity", e)),
	}
	if platform != nil {
		host.Platform = platform
	}

	ctrl, err := motion.NewController(mc.Config, host)
	if err != nil {
		return err
	}

	ground.FacingRight = ctrl.FacingRight
	wall.FacingRight = ctrl.FacingRight
	sensors.GroundProbe = ground
	sensors.WallProbe = wall
	if platform != nil {
		platform.FacingRight = ctrl.FacingRight
		sensors.PlatformProbe = platform
	}
	mc.Controller = ctrl
	return nil
}

func sensorProbe(pw *ecs.PhysicsWorld, cb *ecs.CharacterBody, box component.SensorBox) (*ecs.BoxProbe, error) {
	if len(box.Layers) == 0 {
		return nil, ErrMissingSensorLayer
	}
	mask, err := ecs.LayerMask(box.Layers...)
	if err != nil {
		return nil, err
	}
	return pw.BoxProbe(cb, ecs.ProbeBox{
		OffsetX: box.OffsetX,
		OffsetY: box.OffsetY,
		Width:   box.Width,
		Height:  box.Height,
		Mask:    mask,
		MirrorX: box.MirrorX,
	}), nil
}

// deliverInput forwards one frame of input. Move comes first so a jump or
// dash pressed together with a direction uses it on the next tick.
func deliverInput(ctrl *motion.Controller, input *component.Input) {
	ctrl.OnMoveInput(input.MoveX)
	if input.JumpPressed {
		ctrl.OnJumpPressed()
	}
	if input.JumpReleased {
		ctrl.OnJumpReleased()
	}
	if input.DashPressed {
		ctrl.OnDashPressed()
	}
	if input.DropPressed {
		ctrl.OnDropPressed()
	}
}

func mirrorSnapshot(w *ecs.World, e ecs.Entity, snap motion.Snapshot) {
	if pc, ok := ecs.Get(w, e, component.PlayerCollisionComponent); ok {
		pc.Grounded = snap.Grounded
		pc.OnPlatform = snap.OnPlatform
		pc.WallSliding = snap.WallSliding
		pc.Wall = component.WallNone
		if snap.WallSliding {
			pc.Wall = component.WallLeft
			if snap.FacingRight {
				pc.Wall = component.WallRight
			}
		}
	}
	if gs, ok := ecs.Get(w, e, component.GravityScaleComponent); ok {
		gs.Scale = snap.GravityScale
	}
	if sprite, ok := ecs.Get(w, e, component.SpriteComponent); ok {
		sprite.FacingLeft = !snap.FacingRight
	}
}

// entitySignals turns controller cues into components the effects system
// consumes.
type entitySignals struct {
	w *ecs.World
	e ecs.Entity
}

func (s entitySignals) JumpEffect() {
	if req, ok := ecs.Get(s.w, s.e, component.JumpEffectRequestComponent); ok {
		req.Count++
		return
	}
	_ = ecs.Add(s.w, s.e, component.JumpEffectRequestComponent, &component.JumpEffectRequest{Count: 1})
}

func (s entitySignals) SetTrailEmitting(emitting bool) {
	if trail, ok := ecs.Get(s.w, s.e, component.TrailComponent); ok {
		trail.Emitting = emitting
		trail.Timer = 0
	}
}
