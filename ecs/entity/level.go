package entity

import (
	"errors"
	"fmt"

	"github.com/milk9111/platformer/ecs"
	"github.com/milk9111/platformer/levels"
)

var (
	ErrNilLevel          = errors.New("level: nil level")
	ErrNoPlayerSpawn     = errors.New("level: no player spawn")
	ErrUnknownEntityType = errors.New("level: unknown entity type")
)

// Spawned lists the entities created for a level.
type Spawned struct {
	Player ecs.Entity
	Camera ecs.Entity
}

// SpawnLevelEntities builds the entities a level places. Exactly one player
// spawn is required; a camera is created even when the level has none.
func SpawnLevelEntities(w *ecs.World, lvl *levels.Level) (Spawned, error) {
	var out Spawned
	if lvl == nil {
		return out, ErrNilLevel
	}

	for i, placed := range lvl.Entities {
		var err error
		switch placed.Type {
		case "player":
			if out.Player.Valid() {
				return out, fmt.Errorf("spawn level entities: %q: entity %d: second player spawn", lvl.Name, i)
			}
			out.Player, err = NewPlayerAt(w, float64(placed.X), float64(placed.Y))
		case "camera":
			if out.Camera.Valid() {
				continue
			}
			out.Camera, err = NewCameraAt(w, float64(placed.X), float64(placed.Y))
		default:
			err = fmt.Errorf("%w %q", ErrUnknownEntityType, placed.Type)
		}
		if err != nil {
			return out, fmt.Errorf("spawn level entities: %q: entity %d: %w", lvl.Name, i, err)
		}
	}

	if !out.Player.Valid() {
		return out, fmt.Errorf("spawn level entities: %q: %w", lvl.Name, ErrNoPlayerSpawn)
	}
	if !out.Camera.Valid() {
		camera, err := NewCamera(w)
		if err != nil {
			return out, fmt.Errorf("spawn level entities: %q: %w", lvl.Name, err)
		}
		out.Camera = camera
	}
	return out, nil
}
