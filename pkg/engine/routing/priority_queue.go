package routing

import "container/heap"

// priorityQueueNode is a key paired with an arbitrary search-state
// item, plus its current position in the heap so DecreaseKey can find
// it in O(log n) instead of scanning.
type priorityQueueNode[T any] struct {
	key   float64
	item  T
	index int
}

type minHeap[T any] struct {
	nodes []*priorityQueueNode[T]
}

func newMinHeap[T any]() *minHeap[T] {
	return &minHeap[T]{nodes: make([]*priorityQueueNode[T], 0)}
}

func (h *minHeap[T]) Len() int           { return len(h.nodes) }
func (h *minHeap[T]) Less(i, j int) bool { return h.nodes[i].key < h.nodes[j].key }
func (h *minHeap[T]) Swap(i, j int) {
	h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i]
	h.nodes[i].index = i
	h.nodes[j].index = j
}
func (h *minHeap[T]) Push(x any) {
	n := x.(*priorityQueueNode[T])
	n.index = len(h.nodes)
	h.nodes = append(h.nodes, n)
}
func (h *minHeap[T]) Pop() any {
	n := len(h.nodes)
	node := h.nodes[n-1]
	h.nodes = h.nodes[:n-1]
	return node
}

func (h *minHeap[T]) Insert(key float64, item T) *priorityQueueNode[T] {
	node := &priorityQueueNode[T]{key: key, item: item}
	heap.Push(h, node)
	return node
}

func (h *minHeap[T]) IsEmpty() bool {
	return len(h.nodes) == 0
}

func (h *minHeap[T]) ExtractMin() *priorityQueueNode[T] {
	return heap.Pop(h).(*priorityQueueNode[T])
}

func (h *minHeap[T]) DecreaseKey(node *priorityQueueNode[T], newKey float64) {
	node.key = newKey
	heap.Fix(h, node.index)
}
