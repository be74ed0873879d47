package query

import (
	"container/heap"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/negaisa/obj-to-pathfinding-grid/math32"
	"github.com/negaisa/obj-to-pathfinding-grid/voxel"
)

var (
	ErrOutOfGrid = errors.New("point is outside the grid")
	ErrBlocked   = errors.New("point is inside an obstacle")
	ErrNoPath    = errors.New("no path found")
)

// GridQuery 网格查询器，只负责运行时查询，不修改网格
type GridQuery struct {
	grid    *voxel.Grid
	options *Options
	logger  *slog.Logger
}

// NewGridQuery 创建新的网格查询器
func NewGridQuery(grid *voxel.Grid) *GridQuery {
	return &GridQuery{
		grid:    grid,
		options: DefaultOptions(),
		logger:  slog.Default(),
	}
}

func (q *GridQuery) GetGrid() *voxel.Grid {
	return q.grid
}

func (q *GridQuery) SetLogger(logger *slog.Logger) {
	if logger != nil {
		q.logger = logger
	}
}

// offset is a move to one of the 26 neighbours.
type offset struct {
	dx, dy, dz int32
	axes       int
	cost       float32
}

var neighborOffsets = buildOffsets()

func buildOffsets() []offset {
	offsets := make([]offset, 0, 26)
	for dz := int32(-1); dz <= 1; dz++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dx := int32(-1); dx <= 1; dx++ {
				axes := int(dx*dx + dy*dy + dz*dz)
				if axes == 0 {
					continue
				}
				offsets = append(offsets, offset{dx, dy, dz, axes, math32.Sqrt(float32(axes))})
			}
		}
	}
	return offsets
}

// translate moves local by (dx, dy, dz) and reports whether the result is
// inside the grid.
func (q *GridQuery) translate(local math32.Vector3u, dx, dy, dz int32) (math32.Vector3u, bool) {
	x := int64(local.X) + int64(dx)
	y := int64(local.Y) + int64(dy)
	z := int64(local.Z) + int64(dz)
	if x < 0 || y < 0 || z < 0 {
		return math32.Vector3u{}, false
	}
	to := math32.Vector3u{X: uint32(x), Y: uint32(y), Z: uint32(z)}
	return to, q.grid.Frame().Contains(to)
}

// move applies o to from. Diagonal moves need every voxel they brush past to
// be free.
func (q *GridQuery) move(from math32.Vector3u, o offset) (math32.Vector3u, bool) {
	to, ok := q.translate(from, o.dx, o.dy, o.dz)
	if !ok || !q.grid.IsWalkable(to) {
		return to, false
	}
	if o.axes == 1 {
		return to, true
	}
	for mask := int32(1); mask < 7; mask++ {
		dx, dy, dz := o.dx*(mask&1), o.dy*(mask>>1&1), o.dz*(mask>>2&1)
		if dx == 0 && dy == 0 && dz == 0 || dx == o.dx && dy == o.dy && dz == o.dz {
			continue
		}
		mid, _ := q.translate(from, dx, dy, dz)
		if !q.grid.IsWalkable(mid) {
			return to, false
		}
	}
	return to, true
}

func (q *GridQuery) checkEndpoint(local math32.Vector3u) error {
	if !q.grid.Frame().Contains(local) {
		return fmt.Errorf("%w: %v", ErrOutOfGrid, local)
	}
	if q.grid.IsObstacle(local.X, local.Y, local.Z) {
		return fmt.Errorf("%w: %v", ErrBlocked, local)
	}
	return nil
}

// FindPath 查找路径，返回从起点到终点（包含两端）的体素序列
func (q *GridQuery) FindPath(start, end math32.Vector3u) ([]math32.Vector3u, error) {
	if err := q.checkEndpoint(start); err != nil {
		return nil, fmt.Errorf("invalid start: %w", err)
	}
	if err := q.checkEndpoint(end); err != nil {
		return nil, fmt.Errorf("invalid end: %w", err)
	}
	if start == end {
		return []math32.Vector3u{start}, nil
	}

	startTime := time.Now()
	path, iterations, err := q.astar(start, end)
	if err != nil {
		return nil, err
	}
	q.logger.Debug("path found",
		"start", start.String(),
		"end", end.String(),
		"length", len(path),
		"iterations", iterations,
		"elapsed", time.Since(startTime))
	return path, nil
}

// FindWorldPath maps both world points into the grid, searches, and returns
// the path as world voxel positions.
func (q *GridQuery) FindWorldPath(start, end math32.Vector3) ([]math32.Vector3i, error) {
	frame := q.grid.Frame()
	path, err := q.FindPath(voxel.ToLocal(start, frame), voxel.ToLocal(end, frame))
	if err != nil {
		return nil, err
	}
	return lo.Map(path, func(local math32.Vector3u, _ int) math32.Vector3i {
		return voxel.ToWorld(local, frame)
	}), nil
}

// astar A*寻路算法
func (q *GridQuery) astar(start, end math32.Vector3u) ([]math32.Vector3u, int, error) {
	startID, _ := q.grid.GetIndex(start.X, start.Y, start.Z)
	endID, _ := q.grid.GetIndex(end.X, end.Y, end.Z)
	target := end.ToVector3()
	weight := q.options.HeuristicWeight

	openSet := &nodeHeap{}
	heap.Init(openSet)
	defer openSet.Clear()

	closedSet := math32.NewBitmap(q.grid.GetVoxelCount())
	gScore := map[uint64]float32{startID: 0}
	cameFrom := make(map[uint64]uint64)
	inOpenSet := make(map[uint64]*heapNode)

	startNode := newHeapNode(startID, 0, weight*start.ToVector3().Distance(target))
	heap.Push(openSet, startNode)
	inOpenSet[startID] = startNode

	iterations := 0
	for openSet.Len() > 0 {
		if limit := q.options.MaxIterations; limit > 0 && iterations >= limit {
			return nil, iterations, fmt.Errorf("%w: iteration limit %d reached", ErrNoPath, limit)
		}
		iterations++

		current := heap.Pop(openSet).(*heapNode)
		currentID := current.cell
		delete(inOpenSet, currentID)
		heapNodePool.Put(current)

		if currentID == endID {
			return q.reconstruct(cameFrom, startID, endID), iterations, nil
		}
		closedSet.Set(currentID)

		currentCell := q.grid.GetCoordinate(currentID)
		for _, o := range neighborOffsets {
			if o.axes > 1 && !q.options.AllowDiagonal {
				continue
			}
			neighbor, ok := q.move(currentCell, o)
			if !ok {
				continue
			}
			neighborID, _ := q.grid.GetIndex(neighbor.X, neighbor.Y, neighbor.Z)
			if closedSet.Contains(neighborID) {
				continue
			}

			tentativeG := gScore[currentID] + o.cost
			if existingG, exists := gScore[neighborID]; exists && tentativeG >= existingG {
				continue
			}
			cameFrom[neighborID] = currentID
			gScore[neighborID] = tentativeG
			fScore := tentativeG + weight*neighbor.ToVector3().Distance(target)

			if existingNode, exists := inOpenSet[neighborID]; exists {
				existingNode.gScore = tentativeG
				existingNode.fScore = fScore
				heap.Fix(openSet, existingNode.index)
			} else {
				node := newHeapNode(neighborID, tentativeG, fScore)
				heap.Push(openSet, node)
				inOpenSet[neighborID] = node
			}
		}
	}

	return nil, iterations, ErrNoPath
}

func (q *GridQuery) reconstruct(cameFrom map[uint64]uint64, startID, endID uint64) []math32.Vector3u {
	path := []math32.Vector3u{q.grid.GetCoordinate(endID)}
	for id := endID; id != startID; {
		id = cameFrom[id]
		path = append(path, q.grid.GetCoordinate(id))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PathLength returns the Euclidean length of path in voxels.
func PathLength(path []math32.Vector3u) float32 {
	var length float32
	for i := 1; i < len(path); i++ {
		length += path[i-1].ToVector3().Distance(path[i].ToVector3())
	}
	return length
}
