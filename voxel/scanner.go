package voxel

import (
	"github.com/negaisa/obj-to-pathfinding-grid/geometry"
	"github.com/negaisa/obj-to-pathfinding-grid/math32"
)

// FindObstacles returns the local coordinates of every voxel the triangle
// touches, ordered by x, then y, then z.
//
// The scan box is the triangle's inflated bounding box mapped to local space
// and treated as half-open, so a coordinate equal to the frame's width or
// height is never returned.
func FindObstacles(triangle geometry.Triangle, frame Frame) []math32.Vector3u {
	bounds := triangle.BoundingBox()
	minLocal := ToLocal(bounds.Min, frame)
	maxLocal := ToLocal(bounds.Max, frame)

	var obstacles []math32.Vector3u
	for x := minLocal.X; x < maxLocal.X; x++ {
		for y := minLocal.Y; y < maxLocal.Y; y++ {
			for z := minLocal.Z; z < maxLocal.Z; z++ {
				local := math32.Vector3u{X: x, Y: y, Z: z}
				if triangle.IsInside(ToWorld(local, frame)) {
					obstacles = append(obstacles, local)
				}
			}
		}
	}
	return obstacles
}
