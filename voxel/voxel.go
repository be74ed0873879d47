package voxel

import (
	"fmt"
	"unsafe"

	"github.com/negaisa/obj-to-pathfinding-grid/math32"
)

// Grid represents a width x width x height occupancy volume. Each voxel is
// either free or an obstacle.
type Grid struct {
	frame     Frame
	obstacles math32.Bitmap
}

// NewGrid creates an empty grid centered on the origin.
func NewGrid(width, height uint32) *Grid {
	return NewGridWithFrame(Frame{Width: width, Height: height})
}

// NewGridWithFrame creates an empty grid that remembers where it was placed
// in world space.
func NewGridWithFrame(frame Frame) *Grid {
	return &Grid{
		frame:     frame,
		obstacles: math32.NewBitmap(frame.Cells()),
	}
}

// GridFromBitmap restores a grid from its frame and obstacle bitmap.
func GridFromBitmap(frame Frame, obstacles math32.Bitmap) (*Grid, error) {
	if err := frame.CheckSize(0); err != nil {
		return nil, err
	}
	if want := frame.words(); len(obstacles) != want {
		return nil, fmt.Errorf("bitmap has %d words, %v needs %d", len(obstacles), frame, want)
	}
	return &Grid{frame: frame, obstacles: obstacles}, nil
}

func (g *Grid) Width() uint32 {
	return g.frame.Width
}

func (g *Grid) Height() uint32 {
	return g.frame.Height
}

func (g *Grid) Center() math32.Vector3 {
	return g.frame.Center
}

// Frame returns the grid placement used to map world points.
func (g *Grid) Frame() Frame {
	return g.frame
}

// Bitmap exposes the obstacle words, indexed by GetIndex.
func (g *Grid) Bitmap() math32.Bitmap {
	return g.obstacles
}

// IsValidCoordinate checks if the coordinate is within grid bounds
func (g *Grid) IsValidCoordinate(x, y, z uint32) bool {
	return g.frame.Contains(math32.Vector3u{X: x, Y: y, Z: z})
}

// GetIndex converts 3D coordinates to a bit index. It returns false for
// coordinates outside the grid.
func (g *Grid) GetIndex(x, y, z uint32) (uint64, bool) {
	if !g.IsValidCoordinate(x, y, z) {
		return 0, false
	}
	w := uint64(g.frame.Width)
	return (uint64(z)*w+uint64(y))*w + uint64(x), true
}

// GetCoordinate converts a bit index back to 3D coordinates.
func (g *Grid) GetCoordinate(index uint64) math32.Vector3u {
	w := uint64(g.frame.Width)
	x := index % w
	y := (index / w) % w
	z := index / (w * w)
	return math32.Vector3u{X: uint32(x), Y: uint32(y), Z: uint32(z)}
}

// SetObstacle marks a voxel as occupied. Setting an occupied voxel again is
// a no-op. Coordinates outside the grid are ignored and reported with false.
func (g *Grid) SetObstacle(x, y, z uint32) bool {
	index, ok := g.GetIndex(x, y, z)
	if !ok {
		return false
	}
	g.obstacles.Set(index)
	return true
}

// IsObstacle reports whether the voxel is occupied. Coordinates outside the
// grid are not obstacles.
func (g *Grid) IsObstacle(x, y, z uint32) bool {
	index, ok := g.GetIndex(x, y, z)
	if !ok {
		return false
	}
	return g.obstacles.Contains(index)
}

// IsWalkable checks if a voxel is inside the grid and free.
func (g *Grid) IsWalkable(local math32.Vector3u) bool {
	return g.IsValidCoordinate(local.X, local.Y, local.Z) && !g.IsObstacle(local.X, local.Y, local.Z)
}

// IsWorldObstacle maps a world point through ToLocal and reports whether that
// voxel is occupied.
func (g *Grid) IsWorldObstacle(world math32.Vector3) bool {
	local := ToLocal(world, g.frame)
	return g.IsObstacle(local.X, local.Y, local.Z)
}

// ObstacleCount returns the number of occupied voxels.
func (g *Grid) ObstacleCount() uint64 {
	return g.obstacles.Count()
}

// GetVoxelCount returns the total number of voxels
func (g *Grid) GetVoxelCount() uint64 {
	return g.frame.Cells()
}

// FillRatio returns the fraction of occupied voxels.
func (g *Grid) FillRatio() float64 {
	total := g.GetVoxelCount()
	if total == 0 {
		return 0
	}
	return float64(g.ObstacleCount()) / float64(total)
}

// ForEachObstacle calls fn for every occupied voxel in index order until fn
// returns false.
func (g *Grid) ForEachObstacle(fn func(local math32.Vector3u) bool) {
	for blkAt, blk := range g.obstacles {
		for bit := uint64(0); blk != 0; bit++ {
			if blk&1 != 0 {
				index := uint64(blkAt)<<6 + bit
				if index >= g.frame.Cells() {
					return
				}
				if !fn(g.GetCoordinate(index)) {
					return
				}
			}
			blk >>= 1
		}
	}
}

// GetMemoryUsage returns approximate memory usage in bytes
func (g *Grid) GetMemoryUsage() int {
	return len(g.obstacles) * int(unsafe.Sizeof(uint64(0)))
}
