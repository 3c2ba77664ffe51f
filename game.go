package main

import (
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/platformer/ecs"
	"github.com/milk9111/platformer/ecs/component"
	"github.com/milk9111/platformer/ecs/entity"
	"github.com/milk9111/platformer/ecs/render"
	"github.com/milk9111/platformer/ecs/system"
	"github.com/milk9111/platformer/levels"
	"github.com/milk9111/platformer/prefabs"
	"go.uber.org/zap"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	playerPrefab = "player.yaml"
	prefabDir    = "prefabs"
)

var backgroundColor = color.RGBA{R: 0x1b, G: 0x1e, B: 0x2b, A: 0xff}

type Game struct {
	frames int
	log    *zap.Logger

	levelName string
	debug     bool

	world     *ecs.World
	scheduler *ecs.Scheduler
	motion    *system.MotionSystem
	render    *render.RenderSystem
	input     *deviceInput
	watcher   *prefabs.Watcher

	paused     bool
	restarting bool
	pauseUI    *ebitenui.UI
}

// NewGame loads the level and builds the world. With watch set, edits to the
// player prefab retune the running controllers.
func NewGame(levelName string, debug, watch bool, log *zap.Logger) (*Game, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if levelName == "" {
		levelName = "test_room"
	}

	g := &Game{
		log:       log,
		levelName: levelName,
		debug:     debug,
		render:    render.NewRenderSystem(),
		input:     newDeviceInput(),
	}
	if err := g.loadWorld(); err != nil {
		return nil, err
	}
	g.pauseUI = NewPauseUI(g)

	if watch {
		w, err := prefabs.NewWatcher(prefabDir)
		if err != nil {
			// the embedded prefabs still work without a checkout to watch
			log.Warn("prefab hot reload disabled", zap.Error(err))
		} else {
			g.watcher = w
			log.Info("watching prefabs", zap.String("dir", prefabDir))
		}
	}
	return g, nil
}

func (g *Game) loadWorld() error {
	lvl, err := levels.LoadLevelFromFS(g.levelName)
	if err != nil {
		return fmt.Errorf("game: load level: %w", err)
	}
	pw, err := ecs.NewPhysicsWorld(lvl)
	if err != nil {
		return fmt.Errorf("game: load level: %w", err)
	}

	w := ecs.NewWorld()
	w.SetPhysicsWorld(pw)
	spawned, err := entity.SpawnLevelEntities(w, lvl)
	if err != nil {
		return fmt.Errorf("game: spawn %s: %w", lvl.Name, err)
	}
	if cam, ok := ecs.Get(w, spawned.Camera, component.CameraComponent); ok {
		cam.ViewW, cam.ViewH = baseWidth, baseHeight
	}

	g.motion = system.NewMotionSystem(g.log)
	g.scheduler = ecs.NewScheduler(
		system.NewInputSystem(g.input),
		g.motion,
		system.NewPhysicsSystem(),
		system.NewPlayerStateSystem(),
		system.NewAnimationSystem(),
		system.NewEffectsSystem(),
		system.NewTTLSystem(),
		system.NewCameraSystem(),
	)
	g.world = w

	g.log.Info("level loaded",
		zap.String("level", lvl.Name),
		zap.Int("width", lvl.Width),
		zap.Int("height", lvl.Height),
		zap.Int("entities", len(ecs.Entities(w))),
	)
	return nil
}

// Restart rebuilds the world from the level and prefabs.
func (g *Game) Restart() {
	g.restarting = true
}

func (g *Game) Close() error {
	if g.watcher == nil {
		return nil
	}
	return g.watcher.Close()
}

func (g *Game) Update() error {
	g.frames++
	g.applyReloads()

	g.input.Update()
	if g.input.frame.PausePressed {
		g.paused = !g.paused
	}

	if g.paused {
		g.pauseUI.Update()
	} else {
		g.scheduler.Update(g.world)
	}

	if g.restarting {
		g.restarting = false
		g.paused = false
		if err := g.loadWorld(); err != nil {
			return err
		}
	}
	return nil
}

// applyReloads drains the prefab watcher without blocking the frame.
func (g *Game) applyReloads() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			if filepath.Base(name) != playerPrefab {
				g.log.Debug("prefab changed", zap.String("file", name))
				continue
			}
			cfg, err := prefabs.LoadMotionConfig(playerPrefab)
			if err != nil {
				g.log.Warn("reload motion config", zap.String("file", name), zap.Error(err))
				continue
			}
			if err := g.motion.ApplyConfig(g.world, cfg); err != nil {
				g.log.Warn("apply motion config", zap.Error(err))
			}
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.log.Warn("prefab watcher", zap.Error(err))
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	g.render.Draw(g.world, screen)

	if g.debug {
		render.DrawPhysicsDebug(g.world, screen)
		render.DrawMotionDebug(g.world, screen)
	}

	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
