package prefabs

import (
	"fmt"

	"github.com/milk9111/platformer/motion"
	"gopkg.in/yaml.v3"
)

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var out T
	err := decodeInto(raw, &out)
	return out, err
}

// decodeInto overlays raw onto out; fields raw does not mention keep their
// current value.
func decodeInto[T any](raw any, out *T) error {
	if raw == nil {
		return nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, out)
}

type TransformComponentSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	ScaleX   float64 `yaml:"scale_x"`
	ScaleY   float64 `yaml:"scale_y"`
	Rotation float64 `yaml:"rotation"`
}

type SpriteComponentSpec struct {
	Width      float64    `yaml:"width"`
	Height     float64    `yaml:"height"`
	Color      *YAMLColor `yaml:"color"`
	EyeColor   *YAMLColor `yaml:"eye_color"`
	FacingLeft bool       `yaml:"facing_left"`
}

type RenderLayerComponentSpec struct {
	Index int `yaml:"index"`
}

type CameraComponentSpec struct {
	TargetName string  `yaml:"target_name"`
	Zoom       float64 `yaml:"zoom"`
	Smoothness float64 `yaml:"smoothness"`
	LookAhead  float64 `yaml:"look_ahead"`
}

type PhysicsBodyComponentSpec struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type SensorBoxSpec struct {
	OffsetX float64  `yaml:"offset_x"`
	OffsetY float64  `yaml:"offset_y"`
	Width   float64  `yaml:"width"`
	Height  float64  `yaml:"height"`
	Layers  []string `yaml:"layers"`
	MirrorX bool     `yaml:"mirror_x"`
}

type MotionSensorsComponentSpec struct {
	Ground   SensorBoxSpec `yaml:"ground"`
	Wall     SensorBoxSpec `yaml:"wall"`
	Platform SensorBoxSpec `yaml:"platform"`
}

type Vec2Spec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type MotionComponentSpec struct {
	MoveSpeed            float64  `yaml:"move_speed"`
	JumpPower            float64  `yaml:"jump_power"`
	MaxJumps             int      `yaml:"max_jumps"`
	BaseGravity          float64  `yaml:"base_gravity"`
	MaxFallSpeed         float64  `yaml:"max_fall_speed"`
	FallSpeedMultiplier  float64  `yaml:"fall_speed_multiplier"`
	WallSlideSpeed       float64  `yaml:"wall_slide_speed"`
	WallJumpTime         float64  `yaml:"wall_jump_time"`
	WallJumpPower        Vec2Spec `yaml:"wall_jump_power"`
	WallJumpRefillsJumps bool     `yaml:"wall_jump_refills_jumps"`
	DashSpeed            float64  `yaml:"dash_speed"`
	DashDuration         float64  `yaml:"dash_duration"`
	DashCooldown         float64  `yaml:"dash_cooldown"`
	DroppingTime         float64  `yaml:"dropping_time"`
}

func motionSpecFromConfig(cfg motion.Config) MotionComponentSpec {
	return MotionComponentSpec{
		MoveSpeed:            cfg.MoveSpeed,
		JumpPower:            cfg.JumpPower,
		MaxJumps:             cfg.MaxJumps,
		BaseGravity:          cfg.BaseGravity,
		MaxFallSpeed:         cfg.MaxFallSpeed,
		FallSpeedMultiplier:  cfg.FallSpeedMultiplier,
		WallSlideSpeed:       cfg.WallSlideSpeed,
		WallJumpTime:         cfg.WallJumpTime,
		WallJumpPower:        Vec2Spec{X: cfg.WallJumpPower.X, Y: cfg.WallJumpPower.Y},
		WallJumpRefillsJumps: cfg.WallJumpRefillsJumps,
		DashSpeed:            cfg.DashSpeed,
		DashDuration:         cfg.DashDuration,
		DashCooldown:         cfg.DashCooldown,
		DroppingTime:         cfg.DroppingTime,
	}
}

func (s MotionComponentSpec) Config() motion.Config {
	return motion.Config{
		MoveSpeed:            s.MoveSpeed,
		JumpPower:            s.JumpPower,
		MaxJumps:             s.MaxJumps,
		BaseGravity:          s.BaseGravity,
		MaxFallSpeed:         s.MaxFallSpeed,
		FallSpeedMultiplier:  s.FallSpeedMultiplier,
		WallSlideSpeed:       s.WallSlideSpeed,
		WallJumpTime:         s.WallJumpTime,
		WallJumpPower:        motion.Vec2{X: s.WallJumpPower.X, Y: s.WallJumpPower.Y},
		WallJumpRefillsJumps: s.WallJumpRefillsJumps,
		DashSpeed:            s.DashSpeed,
		DashDuration:         s.DashDuration,
		DashCooldown:         s.DashCooldown,
		DroppingTime:         s.DroppingTime,
	}
}

// DecodeMotionConfig decodes a motion component over the default tuning and
// validates the result.
func DecodeMotionConfig(raw any) (motion.Config, error) {
	spec := motionSpecFromConfig(motion.DefaultConfig())
	if err := decodeInto(raw, &spec); err != nil {
		return motion.Config{}, fmt.Errorf("prefabs: decode motion: %w", err)
	}
	cfg := spec.Config()
	if err := cfg.Validate(); err != nil {
		return motion.Config{}, fmt.Errorf("prefabs: decode motion: %w", err)
	}
	return cfg, nil
}

// LoadMotionConfig reads the motion component of an entity prefab. A prefab
// without one yields the default tuning.
func LoadMotionConfig(filename string) (motion.Config, error) {
	spec, err := LoadEntityBuildSpec(filename)
	if err != nil {
		return motion.Config{}, err
	}
	cfg, err := DecodeMotionConfig(spec.Components["motion"])
	if err != nil {
		return motion.Config{}, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

type AnimationDefComponentSpec struct {
	Color      *YAMLColor `yaml:"color"`
	FrameCount int        `yaml:"frame_count"`
	FPS        float64    `yaml:"fps"`
	Loop       bool       `yaml:"loop"`
	SquashX    float64    `yaml:"squash_x"`
	SquashY    float64    `yaml:"squash_y"`
}

type AnimationComponentSpec struct {
	Defs    map[string]AnimationDefComponentSpec `yaml:"defs"`
	Current string                               `yaml:"current"`
	Playing bool                                 `yaml:"playing"`
}

type TrailComponentSpec struct {
	Interval int        `yaml:"interval"`
	Life     int        `yaml:"life"`
	Color    *YAMLColor `yaml:"color"`
}

type GravityScaleComponentSpec struct {
	Scale float64 `yaml:"scale"`
}
