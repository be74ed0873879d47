package query

import (
	"github.com/negaisa/obj-to-pathfinding-grid/math32"
)

// SmoothPath 使用视线优化算法简化路径
func (q *GridQuery) SmoothPath(path []math32.Vector3u) []math32.Vector3u {
	if len(path) <= 2 {
		return append([]math32.Vector3u(nil), path...)
	}

	smoothed := []math32.Vector3u{path[0]}
	current := 0

	for current < len(path)-1 {
		// 尝试找到最远的可直达节点
		farthest := current + 1
		for next := len(path) - 1; next > current+1; next-- {
			if q.IsPathClear(path[current], path[next]) {
				farthest = next
				break
			}
		}

		smoothed = append(smoothed, path[farthest])
		current = farthest
	}

	return smoothed
}

// IsPathClear walks the voxels crossed by the segment between the centers of
// start and end and reports whether all of them are free. Where the segment
// passes exactly through an edge or corner, the voxels sharing it must be
// free too.
func (q *GridQuery) IsPathClear(start, end math32.Vector3u) bool {
	if !q.grid.IsWalkable(start) || !q.grid.IsWalkable(end) {
		return false
	}

	// Crossing k (0-based) of axis a happens at t = (2k+1) / (2|d_a|).
	// next[a] holds 2k+1 and den[a] holds 2|d_a|, so crossings compare
	// exactly in integers.
	var (
		step [3]int32
		next [3]int64
		den  [3]int64
		left [3]int64
	)
	for axis := 0; axis < 3; axis++ {
		d := int64(end.Get(axis)) - int64(start.Get(axis))
		switch {
		case d > 0:
			step[axis] = 1
		case d < 0:
			step[axis] = -1
			d = -d
		}
		next[axis] = 1
		den[axis] = 2 * d
		left[axis] = d
	}

	current := start
	for left[0]+left[1]+left[2] > 0 {
		// axes whose next crossing comes first
		var tied [3]bool
		first := -1
		for axis := 0; axis < 3; axis++ {
			if left[axis] == 0 {
				continue
			}
			if first < 0 {
				first = axis
				tied[axis] = true
				continue
			}
			switch cmp := next[axis]*den[first] - next[first]*den[axis]; {
			case cmp < 0:
				tied = [3]bool{}
				tied[axis] = true
				first = axis
			case cmp == 0:
				tied[axis] = true
			}
		}

		var o offset
		for axis, ok := range tied {
			if !ok {
				continue
			}
			o.axes++
			switch axis {
			case 0:
				o.dx = step[0]
			case 1:
				o.dy = step[1]
			case 2:
				o.dz = step[2]
			}
			next[axis] += 2
			left[axis]--
		}

		to, ok := q.move(current, o)
		if !ok {
			return false
		}
		current = to
	}
	return true
}
