package pathfind

// item is a heap entry. seq breaks priority ties by insertion order so
// results are deterministic.
type item struct {
	id       string
	priority float64
	seq      int
}

// minQueue is a binary min-heap of items ordered by priority.
// It implements container/heap.Interface.
type minQueue []item

func (q minQueue) Len() int { return len(q) }

func (q minQueue) Less(i, j int) bool {
	if q[i].priority == q[j].priority {
		return q[i].seq < q[j].seq
	}
	return q[i].priority < q[j].priority
}

func (q minQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *minQueue) Push(x any) { *q = append(*q, x.(item)) }

func (q *minQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}
