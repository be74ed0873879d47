package query

import "sync"

// heapNode is the data structure for the A* algorithm
type heapNode struct {
	cell   uint64
	fScore float32
	gScore float32
	index  int
}

// nodeHeap is the heap for the A* algorithm
type nodeHeap []*heapNode

func (h nodeHeap) Len() int { return len(h) }

// Less prefers the lower estimate, then the node farther from the start.
func (h nodeHeap) Less(i, j int) bool {
	if h[i].fScore != h[j].fScore {
		return h[i].fScore < h[j].fScore
	}
	return h[i].gScore > h[j].gScore
}

func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

// Push pushes a new node to the heap
func (h *nodeHeap) Push(x interface{}) {
	n := len(*h)
	item := x.(*heapNode)
	item.index = n
	*h = append(*h, item)
}

// Pop pops a node from the heap
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[0 : n-1]
	return item
}

// Clear returns the remaining nodes to the pool
func (h *nodeHeap) Clear() {
	for _, node := range *h {
		heapNodePool.Put(node)
	}
	*h = (*h)[:0]
}

// heapNodePool is the pool for the heap
var heapNodePool = sync.Pool{
	New: func() interface{} {
		return &heapNode{index: -1}
	},
}

// newHeapNode creates a new heap node
func newHeapNode(cell uint64, gScore, fScore float32) *heapNode {
	node := heapNodePool.Get().(*heapNode)
	node.cell = cell
	node.gScore = gScore
	node.fScore = fScore
	node.index = -1
	return node
}
