package geometry

import (
	"github.com/negaisa/obj-to-pathfinding-grid/math32"
)

// voxelHalfSize is the half extent of a unit voxel.
var voxelHalfSize = math32.Vector3{X: 0.5, Y: 0.5, Z: 0.5}

// IsInside reports whether the triangle overlaps the unit cube
// centered at voxel, using the separating axis theorem (Akenine-Möller).
//
// The test is exact: there is no epsilon and no division, so degenerate
// triangles are handled as segments or points and never produce NaN.
func (t Triangle) IsInside(voxel math32.Vector3i) bool {
	return triangleBoxOverlap(voxel.ToVector3(), voxelHalfSize, t.A, t.B, t.C)
}

// IntersectsAABB reports whether the triangle overlaps an arbitrary box.
func (t Triangle) IntersectsAABB(aabb AABB) bool {
	return triangleBoxOverlap(aabb.Center(), aabb.Size().Mul(0.5), t.A, t.B, t.C)
}

// edgeAxisTest describes one of the nine separating axes built from a
// triangle edge crossed with a coordinate axis. The projected value of a
// vertex v is e[j]*v[i] - e[i]*v[j], negated when negate is set, and the box
// radius is |e[j]|*h[i] + |e[i]|*h[j]. Only two vertices are projected since
// both ends of the edge project to the same value.
type edgeAxisTest struct {
	edge   int
	i, j   int
	negate bool
	p, q   int
}

// The vertex pairs follow the reference test so results stay bit-identical.
var edgeAxisTests = [9]edgeAxisTest{
	// e0 = v1 - v0
	{edge: 0, i: 1, j: 2, negate: false, p: 0, q: 2},
	{edge: 0, i: 0, j: 2, negate: true, p: 0, q: 2},
	{edge: 0, i: 0, j: 1, negate: false, p: 1, q: 2},
	// e1 = v2 - v1
	{edge: 1, i: 1, j: 2, negate: false, p: 0, q: 2},
	{edge: 1, i: 0, j: 2, negate: true, p: 0, q: 2},
	{edge: 1, i: 0, j: 1, negate: false, p: 0, q: 1},
	// e2 = v0 - v2
	{edge: 2, i: 1, j: 2, negate: false, p: 0, q: 1},
	{edge: 2, i: 0, j: 2, negate: true, p: 0, q: 1},
	{edge: 2, i: 0, j: 1, negate: false, p: 1, q: 2},
}

func triangleBoxOverlap(center, halfSize, a, b, c math32.Vector3) bool {
	v := [3]math32.Vector3{a.Sub(center), b.Sub(center), c.Sub(center)}

	// box face normals
	for axis := 0; axis < 3; axis++ {
		p0, p1, p2 := v[0].Get(axis), v[1].Get(axis), v[2].Get(axis)
		lo := math32.Min(math32.Min(p0, p1), p2)
		hi := math32.Max(math32.Max(p0, p1), p2)
		h := halfSize.Get(axis)
		if lo > h || hi < -h {
			return false
		}
	}

	e := [3]math32.Vector3{v[1].Sub(v[0]), v[2].Sub(v[1]), v[0].Sub(v[2])}

	// triangle plane
	if !planeBoxOverlap(e[0].Cross(e[1]), v[0], halfSize) {
		return false
	}

	// edge x axis
	for _, test := range edgeAxisTests {
		if separatedOnEdgeAxis(test, e[test.edge], v[test.p], v[test.q], halfSize) {
			return false
		}
	}

	return true
}

func planeBoxOverlap(normal, vert, halfSize math32.Vector3) bool {
	var vmin, vmax math32.Vector3
	for q := 0; q < 3; q++ {
		h := halfSize.Get(q)
		lo, hi := h, -h
		if normal.Get(q) > 0 {
			lo, hi = -h, h
		}
		setAxis(&vmin, q, lo)
		setAxis(&vmax, q, hi)
	}

	d := -normal.Dot(vert)
	if normal.Dot(vmin)+d > 0 {
		return false
	}
	if normal.Dot(vmax)+d < 0 {
		return false
	}
	return true
}

func separatedOnEdgeAxis(test edgeAxisTest, edge, vp, vq, halfSize math32.Vector3) bool {
	a := edge.Get(test.j)
	b := edge.Get(test.i)

	var pp, pq float32
	if test.negate {
		pp = -a*vp.Get(test.i) + b*vp.Get(test.j)
		pq = -a*vq.Get(test.i) + b*vq.Get(test.j)
	} else {
		pp = a*vp.Get(test.i) - b*vp.Get(test.j)
		pq = a*vq.Get(test.i) - b*vq.Get(test.j)
	}

	lo, hi := pp, pq
	if pq < pp {
		lo, hi = pq, pp
	}

	rad := math32.Abs(a)*halfSize.Get(test.i) + math32.Abs(b)*halfSize.Get(test.j)
	return lo > rad || hi < -rad
}

func setAxis(v *math32.Vector3, axis int, value float32) {
	switch axis {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	case 2:
		v.Z = value
	}
}
