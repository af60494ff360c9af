package sim

import "container/heap"

// leaf is the simulator's record of one atomic model: the state the kernel
// holds on its behalf and its place on the clock.
type leaf struct {
	model Atomic
	path  string
	order int // depth-first declaration position; final heap tie-breaker

	state State
	tLast Time
	tNext Time

	heapIdx int

	// per-step scratch, reset after every step
	fired bool
	bag   Bag
}

// leafHeap implements a priority queue over leaves with deterministic ordering
// Ordering: next event time → declaration order
type leafHeap struct {
	leaves []*leaf
}

func newLeafHeap() *leafHeap {
	h := &leafHeap{leaves: make([]*leaf, 0)}
	heap.Init(h)
	return h
}

// Len implements heap.Interface
func (h *leafHeap) Len() int {
	return len(h.leaves)
}

// Less implements heap.Interface
func (h *leafHeap) Less(i, j int) bool {
	li, lj := h.leaves[i], h.leaves[j]
	if li.tNext != lj.tNext {
		return li.tNext < lj.tNext
	}
	return li.order < lj.order
}

// Swap implements heap.Interface
func (h *leafHeap) Swap(i, j int) {
	h.leaves[i], h.leaves[j] = h.leaves[j], h.leaves[i]
	h.leaves[i].heapIdx = i
	h.leaves[j].heapIdx = j
}

// Push implements heap.Interface
func (h *leafHeap) Push(x any) {
	l := x.(*leaf)
	l.heapIdx = len(h.leaves)
	h.leaves = append(h.leaves, l)
}

// Pop implements heap.Interface
func (h *leafHeap) Pop() any {
	old := h.leaves
	n := len(old)
	item := old[n-1]
	item.heapIdx = -1
	h.leaves = old[0 : n-1]
	return item
}

// Schedule adds a leaf to the heap
func (h *leafHeap) Schedule(l *leaf) {
	heap.Push(h, l)
}

// Reschedule restores heap order after l.tNext changed
func (h *leafHeap) Reschedule(l *leaf) {
	if l.heapIdx < 0 {
		h.Schedule(l)
		return
	}
	heap.Fix(h, l.heapIdx)
}

// PopNext removes and returns the leaf with the earliest next event
func (h *leafHeap) PopNext() *leaf {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*leaf)
}

// NextTime returns the earliest next event time, or Infinity when empty
func (h *leafHeap) NextTime() Time {
	if h.Len() == 0 {
		return Infinity
	}
	return h.leaves[0].tNext
}

// inputEvent is a message injected from outside onto a root input port.
type inputEvent struct {
	time Time
	seq  uint64
	port *Port
	msg  Message
}

// inputQueue orders injected messages by time → injection sequence
type inputQueue struct {
	events []*inputEvent
}

func (q *inputQueue) Len() int { return len(q.events) }

func (q *inputQueue) Less(i, j int) bool {
	ei, ej := q.events[i], q.events[j]
	if ei.time != ej.time {
		return ei.time < ej.time
	}
	return ei.seq < ej.seq
}

func (q *inputQueue) Swap(i, j int) {
	q.events[i], q.events[j] = q.events[j], q.events[i]
}

func (q *inputQueue) Push(x any) {
	q.events = append(q.events, x.(*inputEvent))
}

func (q *inputQueue) Pop() any {
	old := q.events
	n := len(old)
	item := old[n-1]
	q.events = old[0 : n-1]
	return item
}

// NextTime returns the time of the earliest pending injection, or Infinity
func (q *inputQueue) NextTime() Time {
	if q.Len() == 0 {
		return Infinity
	}
	return q.events[0].time
}

// PopDue removes and returns every injection scheduled at exactly t
func (q *inputQueue) PopDue(t Time) []*inputEvent {
	var due []*inputEvent
	for q.Len() > 0 && q.events[0].time == t {
		due = append(due, heap.Pop(q).(*inputEvent))
	}
	return due
}
