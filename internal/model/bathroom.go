package model

import "math"

// DefaultWallHeight is the assumed ceiling height in meters.
const DefaultWallHeight = 2.4

// WallArea approximates the wall surface of a square room of the given floor size.
func WallArea(size, height float64) float64 {
	return math.Sqrt(size) * 4 * height
}

// OutletCount estimates how many outlets a bathroom of the given size needs.
func OutletCount(size float64) int {
	switch {
	case size <= 4:
		return 2
	case size <= 6:
		return 3
	default:
		return 4
	}
}
