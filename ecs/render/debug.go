package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformer/ecs"
	"github.com/milk9111/platformer/ecs/component"
	"golang.org/x/image/colornames"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4
)

// DrawPhysicsDebug outlines every shape in the space and the motion probes
// of each character. A probe turns solid while it overlaps something.
func DrawPhysicsDebug(w *ecs.World, screen *ebiten.Image) {
	if w == nil || screen == nil || w.PhysicsWorld() == nil {
		return
	}

	camEntity, _ := w.First(component.CameraComponent.Kind())
	view := cameraView(w, camEntity)
	cp.DrawSpace(w.PhysicsWorld().Space(), &physicsDebugDrawer{screen: screen, view: view})

	ecs.ForEach(w, component.MotionSensorsComponent.Kind(), func(e ecs.Entity, sensors *component.MotionSensors) {
		drawProbe(screen, view, sensors.GroundProbe, colornames.Limegreen)
		drawProbe(screen, view, sensors.WallProbe, colornames.Orangered)
		drawProbe(screen, view, sensors.PlatformProbe, colornames.Gold)
	})
}

func drawProbe(screen *ebiten.Image, view camera, probe component.Probe, clr color.RGBA) {
	if probe == nil {
		return
	}
	bb := probe.Bounds()
	x, y := view.toScreen(bb.L, bb.B)
	width := float32((bb.R - bb.L) * view.zoom)
	height := float32((bb.T - bb.B) * view.zoom)
	if probe.Overlapping() {
		vector.DrawFilledRect(screen, x, y, width, height, clr, false)
		return
	}
	vector.StrokeRect(screen, x, y, width, height, 1, clr, false)
}

// DrawMotionDebug prints the player's controller state in the top-left
// corner.
func DrawMotionDebug(w *ecs.World, screen *ebiten.Image) {
	if w == nil || screen == nil {
		return
	}
	player, ok := w.First(component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	mc, ok := ecs.Get(w, player, component.MotionComponent)
	if !ok || mc.Controller == nil {
		ebitenutil.DebugPrintAt(screen, "motion: unbound", 10, 10)
		return
	}

	stateName := "none"
	if sm, ok := ecs.Get(w, player, component.PlayerStateMachineComponent); ok && sm.State != nil {
		stateName = sm.State.Name()
	}
	snap := mc.Controller.Snapshot()
	text := fmt.Sprintf(
		"State: %s\nMode: %s\nGrounded: %v  Platform: %v\nJumps: %d\nWall slide: %v  Wall jump: %.2f\nDash ready: %v\nCollision: %v\nVel: %.2f, %.2f\nGravity: %.2f\nTPS: %.0f",
		stateName, snap.Mode, snap.Grounded, snap.OnPlatform, snap.JumpsRemaining,
		snap.WallSliding, snap.WallJumpTimer, snap.CanDash, snap.CollisionEnabled,
		snap.VelocityX, snap.VelocityY, snap.GravityScale, ebiten.ActualTPS(),
	)
	ebitenutil.DebugPrintAt(screen, text, 10, 10)
}

type physicsDebugDrawer struct {
	screen *ebiten.Image
	view   camera
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	d.drawCircle(pos, radius, outline)
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.drawLine(pos, end, outline)
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, outline)
}

func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.drawPolygon(verts[:count], outline)
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	half := size / 2
	d.drawLine(cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y}, fill)
	d.drawLine(cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half}, fill)
}

func (d *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_COLLISION_POINTS
}

func (d *physicsDebugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
}

// ShapeColor tells one-way platforms apart from solids.
func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape.Filter.Categories&ecs.LayerPlatform != 0 {
		return cp.FColor{R: 0.9, G: 0.7, B: 0.1, A: 0.5}
	}
	if shape.Filter.Categories&ecs.LayerCharacter != 0 {
		return cp.FColor{R: 0.3, G: 0.7, B: 1, A: 0.5}
	}
	return cp.FColor{R: 0.1, G: 0.6, B: 0.1, A: 0.5}
}

func (d *physicsDebugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) Data() interface{} {
	return nil
}

func (d *physicsDebugDrawer) drawLine(a, b cp.Vector, c cp.FColor) {
	x1, y1 := d.view.toScreen(a.X, a.Y)
	x2, y2 := d.view.toScreen(b.X, b.Y)
	vector.StrokeLine(d.screen, x1, y1, x2, y2, 1, toNRGBA(c), false)
}

func (d *physicsDebugDrawer) drawPolygon(verts []cp.Vector, c cp.FColor) {
	for i := range verts {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], c)
	}
}

func (d *physicsDebugDrawer) drawCircle(center cp.Vector, radius float64, c cp.FColor) {
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points, c)
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
