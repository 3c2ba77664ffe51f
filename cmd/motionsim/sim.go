package main

import (
	"errors"
	"fmt"

	"github.com/milk9111/platformer/ecs"
	"github.com/milk9111/platformer/ecs/component"
	"github.com/milk9111/platformer/ecs/entity"
	"github.com/milk9111/platformer/ecs/system"
	"github.com/milk9111/platformer/levels"
	"github.com/milk9111/platformer/motion"
	"github.com/milk9111/platformer/scenario"
	"go.uber.org/zap"
)

var (
	ErrBindFailed  = errors.New("motionsim: player controller failed to bind")
	ErrNoTransform = errors.New("motionsim: player has no transform")
)

type options struct {
	Level    string
	Scenario string
	// Every logs one line per this many ticks; 0 logs only the summary.
	Every int
}

type summary struct {
	Ticks      int
	FinalMode  motion.Mode
	FinalX     float64
	FinalY     float64
	HighestY   float64
	Jumps      int
	Dashes     int
	ModeCounts map[motion.Mode]int
}

// scriptedInput collects replayed events into the frame the input system
// hands to the player. Edges last one tick.
type scriptedInput struct {
	frame component.Input
}

func (s *scriptedInput) beginTick() {
	s.frame.JumpPressed = false
	s.frame.JumpReleased = false
	s.frame.DashPressed = false
	s.frame.DropPressed = false
}

func (s *scriptedInput) Poll() component.Input { return s.frame }

func (s *scriptedInput) OnMoveInput(axis float64) { s.frame.MoveX = axis }

func (s *scriptedInput) OnJumpPressed() {
	s.frame.JumpPressed = true
	s.frame.JumpHeld = true
}

func (s *scriptedInput) OnJumpReleased() {
	s.frame.JumpReleased = true
	s.frame.JumpHeld = false
}

func (s *scriptedInput) OnDashPressed() { s.frame.DashPressed = true }

func (s *scriptedInput) OnDropPressed() { s.frame.DropPressed = true }

func simulate(opts options, log *zap.Logger) (summary, error) {
	if log == nil {
		log = zap.NewNop()
	}

	lvl, err := levels.LoadLevelFromFS(opts.Level)
	if err != nil {
		return summary{}, err
	}
	sc, err := scenario.Load(opts.Scenario)
	if err != nil {
		return summary{}, err
	}
	pw, err := ecs.NewPhysicsWorld(lvl)
	if err != nil {
		return summary{}, err
	}

	w := ecs.NewWorld()
	w.SetPhysicsWorld(pw)
	spawned, err := entity.SpawnLevelEntities(w, lvl)
	if err != nil {
		return summary{}, err
	}
	player := spawned.Player

	input := &scriptedInput{}
	scheduler := ecs.NewScheduler(
		system.NewInputSystem(input),
		system.NewMotionSystem(log),
		system.NewPhysicsSystem(),
		system.NewPlayerStateSystem(),
	)

	out := summary{Ticks: sc.Ticks, ModeCounts: make(map[motion.Mode]int)}
	tr, ok := ecs.Get(w, player, component.TransformComponent)
	if !ok {
		return summary{}, ErrNoTransform
	}
	out.HighestY = tr.Y
	lastMode := motion.ModeGrounded

	log.Info("simulation started",
		zap.String("level", lvl.Name),
		zap.String("scenario", sc.Name),
		zap.Int("ticks", sc.Ticks),
		zap.Int("events", len(sc.Events())),
	)

	for tick := 0; tick < sc.Ticks; tick++ {
		input.beginTick()
		for _, ev := range sc.EventsAt(tick) {
			log.Debug("event", zap.Int("tick", tick), zap.String("action", string(ev.Action)), zap.Float64("value", ev.Value))
			scenario.Apply(input, ev)
		}

		scheduler.Update(w)

		mc, _ := ecs.Get(w, player, component.MotionComponent)
		if mc.Failed {
			return out, fmt.Errorf("%w at tick %d", ErrBindFailed, tick)
		}
		if mc.Controller == nil {
			continue
		}

		if req, ok := ecs.Get(w, player, component.JumpEffectRequestComponent); ok {
			out.Jumps += req.Count
			ecs.Remove(w, player, component.JumpEffectRequestComponent)
		}

		tr, _ = ecs.Get(w, player, component.TransformComponent)
		snap := mc.Controller.Snapshot()
		out.ModeCounts[snap.Mode]++
		if snap.Mode == motion.ModeDashing && lastMode != motion.ModeDashing {
			out.Dashes++
		}
		lastMode = snap.Mode
		if tr.Y < out.HighestY {
			out.HighestY = tr.Y
		}

		if opts.Every > 0 && tick%opts.Every == 0 {
			state := "none"
			if sm, ok := ecs.Get(w, player, component.PlayerStateMachineComponent); ok && sm.State != nil {
				state = sm.State.Name()
			}
			log.Info("tick",
				zap.Int("tick", tick),
				zap.Stringer("mode", snap.Mode),
				zap.String("state", state),
				zap.Float64("x", tr.X),
				zap.Float64("y", tr.Y),
				zap.Float64("vx", snap.VelocityX),
				zap.Float64("vy", snap.VelocityY),
				zap.Int("jumps", snap.JumpsRemaining),
				zap.Bool("can_dash", snap.CanDash),
				zap.Bool("collision", snap.CollisionEnabled),
			)
		}
	}

	out.FinalMode = lastMode
	if tr, ok := ecs.Get(w, player, component.TransformComponent); ok {
		out.FinalX, out.FinalY = tr.X, tr.Y
	}

	fields := []zap.Field{
		zap.Stringer("final_mode", out.FinalMode),
		zap.Float64("final_x", out.FinalX),
		zap.Float64("final_y", out.FinalY),
		zap.Float64("highest_y", out.HighestY),
		zap.Int("jumps", out.Jumps),
		zap.Int("dashes", out.Dashes),
	}
	for mode, n := range out.ModeCounts {
		fields = append(fields, zap.Int("ticks_"+mode.String(), n))
	}
	log.Info("simulation finished", fields...)
	return out, nil
}
