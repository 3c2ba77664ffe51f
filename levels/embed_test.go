package levels

import (
	"errors"
	"testing"
)

func TestLoadEmbeddedTestRoom(t *testing.T) {
	lvl, err := LoadLevelFromFS("test_room.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if lvl.TileSize != 32 {
		t.Fatalf("expected tile size 32, got %d", lvl.TileSize)
	}
	if !lvl.Meta(1).Platform {
		t.Fatalf("expected layer 1 to be a platform layer")
	}
	if got := lvl.EntitiesOfType("player"); len(got) != 1 {
		t.Fatalf("expected one player spawn, got %d", len(got))
	}
	w, h := lvl.PixelSize()
	if w != 40*32 || h != 18*32 {
		t.Fatalf("unexpected pixel size %vx%v", w, h)
	}
}

func TestParseRejectsBadLevels(t *testing.T) {
	cases := []struct {
		name string
		data string
		bad  bool
	}{
		{"short_layer", `{"width":2,"height":2,"layers":[[1,1,1]]}`, true},
		{"platform_without_physics", `{"width":1,"height":1,"layers":[[1]],"layer_meta":[{"platform":true}]}`, true},
		{"too_much_meta", `{"width":1,"height":1,"layers":[[1]],"layer_meta":[{},{}]}`, true},
		{"ok", `{"width":2,"height":1,"layers":[[1,0]],"layer_meta":[{"physics":true}]}`, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			lvl, err := Parse([]byte(c.data))
			if c.bad {
				if !errors.Is(err, ErrBadLayer) {
					t.Fatalf("expected ErrBadLayer, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if lvl.TileSize != 32 {
				t.Fatalf("expected default tile size, got %d", lvl.TileSize)
			}
		})
	}
}

func TestParseRejectsEmptyGrid(t *testing.T) {
	if _, err := Parse([]byte(`{"width":0,"height":3}`)); err == nil {
		t.Fatalf("expected error for empty grid")
	}
}

func TestLoadLevelFromFSAcceptsBareName(t *testing.T) {
	lvl, err := LoadLevelFromFS("test_room")
	if err != nil {
		t.Fatalf("LoadLevelFromFS: %v", err)
	}
	if lvl.Name == "" {
		t.Fatalf("expected a named level")
	}
}
