package geometry

import (
	"github.com/negaisa/obj-to-pathfinding-grid/math32"
)

// Triangle is a world-space triangle. All transforms return a new value.
type Triangle struct {
	A math32.Vector3 `json:"a"`
	B math32.Vector3 `json:"b"`
	C math32.Vector3 `json:"c"`
}

// NewTriangle creates a triangle from its three vertices.
func NewTriangle(a, b, c math32.Vector3) Triangle {
	return Triangle{A: a, B: b, C: c}
}

// GetBounds returns the tight bounding box of the triangle
func (t Triangle) GetBounds() AABB {
	return EmptyAABB().Extend(t.A).Extend(t.B).Extend(t.C)
}

// BoundingBox returns the tight bounding box inflated by one unit on every
// side, so a voxel scan always covers the layer of voxels around the
// triangle's extremal vertices.
func (t Triangle) BoundingBox() AABB {
	return t.GetBounds().Inflate(1)
}

// Scale scales every vertex around the origin.
func (t Triangle) Scale(s float32) Triangle {
	return Triangle{A: t.A.Mul(s), B: t.B.Mul(s), C: t.C.Mul(s)}
}

// Translate moves every vertex by offset.
func (t Triangle) Translate(offset math32.Vector3) Triangle {
	return Triangle{A: t.A.Add(offset), B: t.B.Add(offset), C: t.C.Add(offset)}
}

// Area returns the surface area of the triangle.
func (t Triangle) Area() float32 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Length() / 2
}

// IsDegenerate reports whether the triangle has zero area.
func (t Triangle) IsDegenerate() bool {
	return t.Area() == 0
}

// IsFinite reports whether every vertex coordinate is finite.
func (t Triangle) IsFinite() bool {
	return t.A.IsFinite() && t.B.IsFinite() && t.C.IsFinite()
}
