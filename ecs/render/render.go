package render

import (
	"image/color"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/platformer/ecs"
	"github.com/milk9111/platformer/ecs/component"
)

const eyeSize = 4

type RenderSystem struct {
	camEntity ecs.Entity
}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{}
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}

	if !r.camEntity.Valid() || !w.IsAlive(r.camEntity) {
		if camEntity, ok := w.First(component.CameraComponent.Kind()); ok {
			r.camEntity = camEntity
		}
	}
	view := cameraView(w, r.camEntity)

	if pw := w.PhysicsWorld(); pw != nil {
		if img := LevelImage(pw.Level()); img != nil {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(-view.x, -view.y)
			op.GeoM.Scale(view.zoom, view.zoom)
			screen.DrawImage(img, op)
		}
	}

	entities := w.Query(component.TransformComponent.Kind())
	sort.SliceStable(entities, func(i, j int) bool {
		li, lj := renderLayer(w, entities[i]), renderLayer(w, entities[j])
		if li != lj {
			return li < lj
		}
		return uint64(entities[i]) < uint64(entities[j])
	})

	for _, e := range entities {
		if e == r.camEntity {
			continue
		}
		t, _ := ecs.Get(w, e, component.TransformComponent)

		alpha := 1.0
		p, isParticle := ecs.Get(w, e, component.ParticleComponent)
		if isParticle && p.MaxLife > 0 {
			alpha = float64(p.Life) / float64(p.MaxLife)
		}

		if s, ok := ecs.Get(w, e, component.SpriteComponent); ok {
			drawSprite(screen, view, t, s, alpha)
			continue
		}
		if isParticle && p.Size > 0 {
			x, y := view.toScreen(t.X-p.Size/2, t.Y-p.Size/2)
			size := float32(p.Size * view.zoom)
			vector.DrawFilledRect(screen, x, y, size, size, fade(p.Color, alpha), false)
		}
	}
}

// drawSprite draws the box anchored at its feet so squash and stretch keep
// it on the ground.
func drawSprite(screen *ebiten.Image, view camera, t *component.Transform, s *component.Sprite, alpha float64) {
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	if s.SquashX != 0 {
		sx *= s.SquashX
	}
	if s.SquashY != 0 {
		sy *= s.SquashY
	}

	width, height := s.Width*sx, s.Height*sy
	left := t.X - width/2
	top := t.Y + s.Height/2 - height

	x, y := view.toScreen(left, top)
	vector.DrawFilledRect(screen, x, y, float32(width*view.zoom), float32(height*view.zoom), fade(s.Color, alpha), false)

	if s.EyeColor.A == 0 {
		return
	}
	eyeX := left + width - eyeSize*2
	if s.FacingLeft {
		eyeX = left + eyeSize
	}
	ex, ey := view.toScreen(eyeX, top+height/4)
	vector.DrawFilledRect(screen, ex, ey, eyeSize*float32(view.zoom), eyeSize*float32(view.zoom), fade(s.EyeColor, alpha), false)
}

func renderLayer(w *ecs.World, e ecs.Entity) int {
	if layer, ok := ecs.Get(w, e, component.RenderLayerComponent); ok {
		return layer.Index
	}
	return 0
}

func fade(c color.RGBA, alpha float64) color.RGBA {
	if alpha >= 1 {
		return c
	}
	if alpha < 0 {
		alpha = 0
	}
	// premultiplied, as ebiten expects for color.RGBA
	return color.RGBA{
		R: uint8(float64(c.R) * alpha),
		G: uint8(float64(c.G) * alpha),
		B: uint8(float64(c.B) * alpha),
		A: uint8(float64(c.A) * alpha),
	}
}

type camera struct {
	x, y float64
	zoom float64
}

func (c camera) toScreen(x, y float64) (float32, float32) {
	return float32((x - c.x) * c.zoom), float32((y - c.y) * c.zoom)
}

func cameraView(w *ecs.World, camEntity ecs.Entity) camera {
	view := camera{zoom: 1}
	if camTransform, ok := ecs.Get(w, camEntity, component.TransformComponent); ok {
		view.x = camTransform.X
		view.y = camTransform.Y
	}
	if camComp, ok := ecs.Get(w, camEntity, component.CameraComponent); ok && camComp.Zoom > 0 {
		view.zoom = camComp.Zoom
	}
	return view
}
