package levels

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/milk9111/platformer/common"
)

//go:embed *.json
var LevelsFS embed.FS

var ErrBadLayer = errors.New("levels: bad layer")

type Level struct {
	Name      string      `json:"name"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	TileSize  int         `json:"tile_size,omitempty"`
	Layers    [][]int     `json:"layers"`
	LayerMeta []LayerMeta `json:"layer_meta,omitempty"`
	Entities  []Entity    `json:"entities,omitempty"`
}

// LayerMeta marks which layers collide. Platform layers are one-way: they
// only stop a body falling onto their top face.
type LayerMeta struct {
	Name     string `json:"name,omitempty"`
	Physics  bool   `json:"physics"`
	Platform bool   `json:"platform,omitempty"`
}

type Entity struct {
	Type  string                 `json:"type"`
	X     int                    `json:"x"`
	Y     int                    `json:"y"`
	Props map[string]interface{} `json:"props,omitempty"`
}

// LoadLevelFromFS reads a level from levels/ on disk when present, falling
// back to the embedded copy.
func LoadLevelFromFS(name string) (*Level, error) {
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	data, err := os.ReadFile(filepath.Join("levels", name))
	if err != nil {
		data, err = fs.ReadFile(LevelsFS, name)
		if err != nil {
			return nil, fmt.Errorf("levels: read %s: %w", name, err)
		}
	}
	return Parse(data)
}

func Parse(data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("levels: unmarshal: %w", err)
	}
	if lvl.TileSize <= 0 {
		lvl.TileSize = common.TileSize
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

// Validate checks that every layer covers the grid and that layer meta, when
// present, lines up with the layers.
func (l *Level) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("levels: %q has size %dx%d", l.Name, l.Width, l.Height)
	}
	for i, layer := range l.Layers {
		if len(layer) != l.Width*l.Height {
			return fmt.Errorf("%w: layer %d has %d tiles, want %d", ErrBadLayer, i, len(layer), l.Width*l.Height)
		}
	}
	if len(l.LayerMeta) > len(l.Layers) {
		return fmt.Errorf("%w: %d layer meta entries for %d layers", ErrBadLayer, len(l.LayerMeta), len(l.Layers))
	}
	for i, meta := range l.LayerMeta {
		if meta.Platform && !meta.Physics {
			return fmt.Errorf("%w: layer %d is a platform without physics", ErrBadLayer, i)
		}
	}
	return nil
}

// Meta returns the meta of layer i, or a zero value when none is set.
func (l *Level) Meta(i int) LayerMeta {
	if i < 0 || i >= len(l.LayerMeta) {
		return LayerMeta{}
	}
	return l.LayerMeta[i]
}

// PixelSize returns the level extent in pixels.
func (l *Level) PixelSize() (float64, float64) {
	return float64(l.Width * l.TileSize), float64(l.Height * l.TileSize)
}

// EntitiesOfType returns the placed entities with the given type.
func (l *Level) EntitiesOfType(typ string) []Entity {
	var out []Entity
	for _, e := range l.Entities {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}
