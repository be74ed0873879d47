package geometry

import "github.com/negaisa/obj-to-pathfinding-grid/math32"

// AABB is axis-aligned bounding box
type AABB struct {
	Min math32.Vector3 `json:"min"`
	Max math32.Vector3 `json:"max"`
}

// EmptyAABB returns an inverted box that any Extend call turns into a valid one.
func EmptyAABB() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min: math32.Vector3{X: inf, Y: inf, Z: inf},
		Max: math32.Vector3{X: -inf, Y: -inf, Z: -inf},
	}
}

// Extend grows the box so that it contains point.
func (aabb AABB) Extend(point math32.Vector3) AABB {
	return AABB{Min: aabb.Min.Min(point), Max: aabb.Max.Max(point)}
}

// Union returns the smallest box containing both boxes.
func (aabb AABB) Union(other AABB) AABB {
	return AABB{Min: aabb.Min.Min(other.Min), Max: aabb.Max.Max(other.Max)}
}

// Inflate moves every face of the box outwards by d.
func (aabb AABB) Inflate(d float32) AABB {
	offset := math32.Vector3{X: d, Y: d, Z: d}
	return AABB{Min: aabb.Min.Sub(offset), Max: aabb.Max.Add(offset)}
}

// Contains checks if the point is inside the AABB
func (aabb AABB) Contains(point math32.Vector3) bool {
	return point.X >= aabb.Min.X && point.X <= aabb.Max.X &&
		point.Y >= aabb.Min.Y && point.Y <= aabb.Max.Y &&
		point.Z >= aabb.Min.Z && point.Z <= aabb.Max.Z
}

// Center returns the center of the AABB
func (aabb AABB) Center() math32.Vector3 {
	return math32.Vector3{
		X: (aabb.Min.X + aabb.Max.X) / 2,
		Y: (aabb.Min.Y + aabb.Max.Y) / 2,
		Z: (aabb.Min.Z + aabb.Max.Z) / 2,
	}
}

// Size returns the size of the AABB
func (aabb AABB) Size() math32.Vector3 {
	return aabb.Max.Sub(aabb.Min)
}

// Width returns the larger of the X and Y extents. Grids are square in the
// horizontal plane, so this is the span a grid needs to cover the box.
func (aabb AABB) Width() float32 {
	size := aabb.Size()
	return math32.Max(size.X, size.Y)
}

// Height returns the Z extent.
func (aabb AABB) Height() float32 {
	return aabb.Max.Z - aabb.Min.Z
}

// Intersects checks if the AABB intersects with another AABB
func (aabb AABB) Intersects(other AABB) bool {
	return aabb.Min.X <= other.Max.X && aabb.Max.X >= other.Min.X &&
		aabb.Min.Y <= other.Max.Y && aabb.Max.Y >= other.Min.Y &&
		aabb.Min.Z <= other.Max.Z && aabb.Max.Z >= other.Min.Z
}

// IsEmpty reports whether the box is inverted on any axis.
func (aabb AABB) IsEmpty() bool {
	return aabb.Min.X > aabb.Max.X || aabb.Min.Y > aabb.Max.Y || aabb.Min.Z > aabb.Max.Z
}

// BoundsOf returns the tight box around every vertex of triangles. An empty
// slice yields EmptyAABB.
func BoundsOf(triangles []Triangle) AABB {
	bounds := EmptyAABB()
	for i := range triangles {
		bounds = bounds.Union(triangles[i].GetBounds())
	}
	return bounds
}
