package math32

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector3(t *testing.T) {
	a := Vec3(1, 2, 3)
	b := Vec3(4, -5, 6)

	assert.Equal(t, Vec3(5, -3, 9), a.Add(b))
	assert.Equal(t, Vec3(-3, 7, -3), a.Sub(b))
	assert.Equal(t, Vec3(2, 4, 6), a.Mul(2))
	assert.Equal(t, a.Mul(3), a.Scale(3))
	assert.Equal(t, float32(12), a.Dot(b))
	assert.Equal(t, Vec3(27, 6, -13), a.Cross(b))
	assert.Equal(t, Vec3(1, -5, 3), a.Min(b))
	assert.Equal(t, Vec3(4, 2, 6), a.Max(b))
	assert.Equal(t, float32(14), a.LengthSquared())
	assert.InDelta(t, 5, Vec3(3, 4, 0).Length(), 1e-6)
	assert.InDelta(t, Sqrt(67), a.Distance(b), 1e-6)

	// a is not modified by any operation
	assert.Equal(t, Vec3(1, 2, 3), a)
}

func TestVector3Round(t *testing.T) {
	assert.Equal(t, Vec3(1, -1, 3), Vec3(0.5, -0.5, 2.5).Round())
	assert.Equal(t, Vector3i{1, -1, 3}, Vec3(0.5, -0.5, 2.5).ToVector3i())
	assert.Equal(t, Vec3(0, 1, 2), Vec3(0.49, 1.49, 2.4).Round())
}

func TestAxisAccessors(t *testing.T) {
	v := Vec3(7, 8, 9)
	assert.Equal(t, float32(7), v.Get(0))
	assert.Equal(t, float32(8), v.Get(1))
	assert.Equal(t, float32(9), v.Get(2))
	assert.Panics(t, func() { v.Get(3) })
	assert.Panics(t, func() { v.Get(-1) })

	vi := Vector3i{-1, 2, -3}
	assert.Equal(t, int32(-3), vi.Get(2))
	assert.Panics(t, func() { vi.Get(3) })

	vu := Vec3u(4, 5, 6)
	assert.Equal(t, uint32(5), vu.Get(1))
	assert.Panics(t, func() { vu.Get(5) })
}

func TestVector3uConversions(t *testing.T) {
	v := Vec3u(1, 2, 3)
	assert.Equal(t, Vector3i{1, 2, 3}, v.ToVector3i())
	assert.Equal(t, Vec3(1, 2, 3), v.ToVector3())
	assert.Equal(t, "(1,2,3)", v.String())
}

func TestScalarHelpers(t *testing.T) {
	assert.Equal(t, int32(-2), Min[int32](-2, 3))
	assert.Equal(t, uint32(3), Max[uint32](2, 3))
	assert.Equal(t, float32(10), Clamp[float32](12, 0, 10))
	assert.Equal(t, 0, Clamp(-4, 0, 10))
	assert.Equal(t, float32(2), Abs(-2))
	assert.True(t, IsFinite(1))
}

func TestBitmap(t *testing.T) {
	var b Bitmap
	assert.True(t, b.Set(3))
	assert.False(t, b.Set(3))
	assert.True(t, b.Set(200))
	assert.True(t, b.Contains(3))
	assert.True(t, b.Contains(200))
	assert.False(t, b.Contains(4))
	assert.False(t, b.Contains(100000))
	assert.Equal(t, uint64(2), b.Count())

	b.Remove(3)
	assert.False(t, b.Contains(3))
	assert.Equal(t, uint64(1), b.Count())

	sized := NewBitmap(130)
	assert.Len(t, sized, 3)
}

func TestCache(t *testing.T) {
	c := NewCache[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	// "b" is now least recently used
	c.Put("c", 3)
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	assert.True(t, c.Remove("a"))
	assert.False(t, c.Remove("a"))

	stats := c.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)

	assert.Panics(t, func() { NewCache[int, int](0) })
}
