package math32

import "fmt"

// Vector3u is a non-negative grid-local coordinate.
type Vector3u struct {
	X uint32 `json:"x"`
	Y uint32 `json:"y"`
	Z uint32 `json:"z"`
}

// Vec3u returns a new Vector3u.
func Vec3u(x, y, z uint32) Vector3u {
	return Vector3u{X: x, Y: y, Z: z}
}

// ToVector3i converts the coordinate to signed components.
func (v Vector3u) ToVector3i() Vector3i {
	return Vector3i{int32(v.X), int32(v.Y), int32(v.Z)}
}

// ToVector3 converts the coordinate to float32 components.
func (v Vector3u) ToVector3() Vector3 {
	return Vector3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// Get returns the component at the given axis index.
// It panics when i is not 0, 1 or 2.
func (v Vector3u) Get(i int) uint32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	panic(fmt.Sprintf("math32: axis index %d out of range", i))
}

func (v Vector3u) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}
