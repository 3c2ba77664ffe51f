package common

const (
	// TileSize is the default edge length of a level tile in pixels.
	TileSize = 32
	// PixelsPerUnit converts controller world units to screen pixels.
	PixelsPerUnit = 32.0
	// Gravity is the downward acceleration in world units per second squared.
	Gravity = 9.81
	// TPS is the fixed simulation rate.
	TPS = 60
)
