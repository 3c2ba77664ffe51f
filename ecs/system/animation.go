package system

import (
	"math"

	"github.com/milk9111/platformer/common"
	"github.com/milk9111/platformer/ecs"
	"github.com/milk9111/platformer/ecs/component"
)

type AnimationSystem struct{}

func NewAnimationSystem() *AnimationSystem {
	return &AnimationSystem{}
}

func (a *AnimationSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach2(w, component.AnimationComponent.Kind(), component.SpriteComponent.Kind(), func(e ecs.Entity, anim *component.Animation, sprite *component.Sprite) {
		if mc, ok := ecs.Get(w, e, component.MotionComponent); ok && mc.Controller != nil {
			snap := mc.Controller.Snapshot()
			anim.Params = component.AnimatorParams{
				VerticalVelocity: snap.VelocityY,
				Speed:            snap.Speed(),
				WallSliding:      snap.WallSliding,
			}
		}

		def, ok := anim.Defs[anim.Current]
		if !ok || def.FrameCount <= 0 {
			return
		}

		if anim.Playing {
			// advance frame every N ticks based on FPS
			ticksPerFrame := 1
			if def.FPS > 0 {
				ticksPerFrame = int(common.TPS / def.FPS)
			}
			if ticksPerFrame < 1 {
				ticksPerFrame = 1
			}

			anim.FrameTimer++
			if anim.FrameTimer >= ticksPerFrame {
				anim.FrameTimer = 0
				anim.Frame++
				if anim.Frame >= def.FrameCount {
					if def.Loop {
						anim.Frame = 0
					} else {
						anim.Frame = def.FrameCount - 1
						anim.Playing = false
					}
				}
			}
		}

		sprite.Color = def.Color
		sprite.SquashX, sprite.SquashY = squash(def, anim.Frame)
	})
}

// squash eases the box from its rest shape toward the definition's squash
// and back over one cycle of frames.
func squash(def component.AnimationDef, frame int) (float64, float64) {
	sx, sy := def.SquashX, def.SquashY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	if def.FrameCount <= 1 {
		return sx, sy
	}
	phase := math.Sin(math.Pi * float64(frame) / float64(def.FrameCount-1))
	return common.Lerp(1, sx, phase), common.Lerp(1, sy, phase)
}

// setAnimation switches to name and restarts it. Unknown names are ignored
// so a prefab may leave states without a dedicated look.
func setAnimation(w *ecs.World, e ecs.Entity, name string) {
	anim, ok := ecs.Get(w, e, component.AnimationComponent)
	if !ok {
		return
	}
	if _, ok := anim.Defs[name]; !ok {
		return
	}
	anim.Current = name
	anim.Frame = 0
	anim.FrameTimer = 0
	anim.Playing = true
}
