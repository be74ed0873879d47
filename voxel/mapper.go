package voxel

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/negaisa/obj-to-pathfinding-grid/geometry"
	"github.com/negaisa/obj-to-pathfinding-grid/math32"
)

// ErrGridTooLarge is returned for frames whose voxel count overflows or
// exceeds a configured limit.
var ErrGridTooLarge = errors.New("grid too large")

// Frame places a grid in world space. X and Y share Width, Z uses Height.
type Frame struct {
	Center math32.Vector3 `json:"center"`
	Width  uint32         `json:"width"`
	Height uint32         `json:"height"`
}

// NewFrame creates a frame centered on center.
func NewFrame(center math32.Vector3, width, height uint32) Frame {
	return Frame{Center: center, Width: width, Height: height}
}

// FitFrame returns a frame centered on bounds that spans its larger
// horizontal extent and its vertical extent, truncated to whole voxels.
func FitFrame(bounds geometry.AABB) Frame {
	if bounds.IsEmpty() {
		return Frame{}
	}
	return Frame{
		Center: bounds.Center(),
		Width:  truncate(bounds.Width()),
		Height: truncate(bounds.Height()),
	}
}

// Contains reports whether local addresses a cell of a grid placed by f.
func (f Frame) Contains(local math32.Vector3u) bool {
	return local.X < f.Width && local.Y < f.Width && local.Z < f.Height
}

// Cells returns the number of voxels in the frame, or math.MaxUint64 when
// the count does not fit in 64 bits.
func (f Frame) Cells() uint64 {
	area := uint64(f.Width) * uint64(f.Width)
	hi, cells := bits.Mul64(area, uint64(f.Height))
	if hi != 0 {
		return math.MaxUint64
	}
	return cells
}

// CheckSize fails with ErrGridTooLarge when the voxel count overflows or is
// above maxCells. A zero maxCells only checks for overflow.
func (f Frame) CheckSize(maxCells uint64) error {
	cells := f.Cells()
	if cells == math.MaxUint64 {
		return fmt.Errorf("%w: %v overflows the voxel count", ErrGridTooLarge, f)
	}
	if maxCells != 0 && cells > maxCells {
		return fmt.Errorf("%w: %v has %d voxels, limit is %d", ErrGridTooLarge, f, cells, maxCells)
	}
	return nil
}

// words returns the bitmap length the frame needs.
func (f Frame) words() int {
	cells := f.Cells()
	return int(cells>>6 + (cells&63+63)>>6)
}

// WorldBounds returns the world-space box covered by the frame's voxels.
func (f Frame) WorldBounds() geometry.AABB {
	half := math32.Vector3{X: 0.5, Y: 0.5, Z: 0.5}
	lower := ToWorld(math32.Vector3u{}, f).ToVector3().Sub(half)
	upper := ToWorld(math32.Vector3u{X: f.Width, Y: f.Width, Z: f.Height}, f).ToVector3().Sub(half)
	return geometry.AABB{Min: lower, Max: upper}
}

func (f Frame) String() string {
	return fmt.Sprintf("%dx%dx%d@%v", f.Width, f.Width, f.Height, f.Center)
}

// ToLocal maps a world point to grid-local coordinates. Points farther than
// the half extent from the center are pinned to the border, so the result
// always lies in [0, width] x [0, width] x [0, height].
func ToLocal(world math32.Vector3, frame Frame) math32.Vector3u {
	diff := frame.Center.Sub(world)
	halfWidth := frame.Width / 2
	halfHeight := frame.Height / 2

	return math32.Vector3u{
		X: toLocalAxis(diff.X, halfWidth, frame.Width),
		Y: toLocalAxis(diff.Y, halfWidth, frame.Width),
		Z: toLocalAxis(diff.Z, halfHeight, frame.Height),
	}
}

// ToWorld maps grid-local coordinates to the world-space voxel center.
//
// ToWorld only offsets while ToLocal rounds and clamps, so the two are not
// exact inverses.
func ToWorld(local math32.Vector3u, frame Frame) math32.Vector3i {
	half := math32.Vector3i{
		X: int32(frame.Width / 2),
		Y: int32(frame.Width / 2),
		Z: int32(frame.Height / 2),
	}
	return frame.Center.ToVector3i().Sub(half).Add(local.ToVector3i())
}

func toLocalAxis(diff float32, half, limit uint32) uint32 {
	candidate := float32(half) - math32.Round(diff)
	if candidate != candidate {
		// NaN
		return 0
	}
	candidate = math32.Clamp(candidate, 0, float32(limit))
	if candidate >= float32(limit) {
		// float32(limit) may round above the uint32 range
		return limit
	}
	return uint32(candidate)
}

func truncate(v float32) uint32 {
	if !(v > 0) {
		return 0
	}
	if v >= 4294967295 {
		return 4294967295
	}
	return uint32(v)
}
