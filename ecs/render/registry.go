package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/platformer/levels"
)

var (
	solidTileColor    = color.RGBA{R: 0x45, G: 0x4a, B: 0x5e, A: 0xff}
	solidEdgeColor    = color.RGBA{R: 0x62, G: 0x69, B: 0x82, A: 0xff}
	platformTileColor = color.RGBA{R: 0xa0, G: 0x7e, B: 0x4f, A: 0xff}
)

// platformThickness is the drawn share of a platform tile; only its top face
// holds the player.
const platformThickness = 0.25

var levelImages = map[string]*ebiten.Image{}

// RegisterLevelImage stores a pre-rendered level by name.
func RegisterLevelImage(name string, img *ebiten.Image) {
	if name == "" || img == nil {
		return
	}
	levelImages[name] = img
}

// GetLevelImage returns a cached level image by name.
func GetLevelImage(name string) *ebiten.Image {
	if name == "" {
		return nil
	}
	return levelImages[name]
}

// ForgetLevelImage drops a cached image so the next draw rebuilds it.
func ForgetLevelImage(name string) {
	if img, ok := levelImages[name]; ok {
		img.Deallocate()
		delete(levelImages, name)
	}
}

// LevelImage renders the physics layers of lvl once and caches the result.
func LevelImage(lvl *levels.Level) *ebiten.Image {
	if lvl == nil {
		return nil
	}
	if img := GetLevelImage(lvl.Name); img != nil {
		return img
	}

	pw, ph := lvl.PixelSize()
	img := ebiten.NewImage(int(pw), int(ph))
	size := float32(lvl.TileSize)
	for i, layer := range lvl.Layers {
		meta := lvl.Meta(i)
		if !meta.Physics {
			continue
		}
		for idx, tile := range layer {
			if tile == 0 {
				continue
			}
			x := float32(idx%lvl.Width) * size
			y := float32(idx/lvl.Width) * size
			if meta.Platform {
				vector.DrawFilledRect(img, x, y, size, size*platformThickness, platformTileColor, false)
				continue
			}
			vector.DrawFilledRect(img, x, y, size, size, solidTileColor, false)
			vector.StrokeRect(img, x+0.5, y+0.5, size-1, size-1, 1, solidEdgeColor, false)
		}
	}

	RegisterLevelImage(lvl.Name, img)
	return img
}
