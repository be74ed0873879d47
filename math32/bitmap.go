package math32

import "math/bits"

// Bitmap is a growable bit set.
type Bitmap []uint64

// NewBitmap returns a bitmap able to hold size bits without growing.
func NewBitmap(size uint64) Bitmap {
	return make(Bitmap, (size+63)>>6)
}

// Set sets the bit x in the bitmap and grows it if necessary.
// It reports whether the bit was previously clear.
func (dst *Bitmap) Set(x uint64) bool {
	blkAt := int(x >> 6)
	bitAt := x % 64
	if size := len(*dst); blkAt >= size {
		dst.grow(blkAt)
	}

	mask := uint64(1) << bitAt
	if (*dst)[blkAt]&mask != 0 {
		return false
	}
	(*dst)[blkAt] |= mask
	return true
}

// Remove removes the bit x from the bitmap, but does not shrink it.
func (dst *Bitmap) Remove(x uint64) {
	if blkAt := int(x >> 6); blkAt < len(*dst) {
		(*dst)[blkAt] &^= 1 << (x % 64)
	}
}

// Contains checks whether a value is contained in the bitmap or not.
func (dst Bitmap) Contains(x uint64) bool {
	blkAt := int(x >> 6)
	if size := len(dst); blkAt >= size {
		return false
	}
	return dst[blkAt]&(1<<(x%64)) != 0
}

// Count returns the number of set bits.
func (dst Bitmap) Count() uint64 {
	var n int
	for _, blk := range dst {
		n += bits.OnesCount64(blk)
	}
	return uint64(n)
}

// grow grows the size of the bitmap until we reach the desired block offset
func (dst *Bitmap) grow(blkAt int) {
	if len(*dst) > blkAt {
		return
	}

	// If there's space, resize the slice without copying.
	if cap(*dst) > blkAt {
		*dst = (*dst)[:blkAt+1]
		return
	}

	old := *dst
	*dst = make(Bitmap, blkAt+1, resize(cap(old), blkAt+1))
	copy(*dst, old)
}

// resize calculates the new required capacity and a new index
func resize(capacity, v int) int {
	const threshold = 256
	if v < threshold {
		v |= v >> 1
		v |= v >> 2
		v |= v >> 4
		v |= v >> 8
		v |= v >> 16
		v++
		return int(v)
	}

	if capacity < threshold {
		capacity = threshold
	}

	for 0 < capacity && capacity < (v+1) {
		capacity += (capacity + 3*threshold) / 4
	}
	return capacity
}
