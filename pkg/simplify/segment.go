package simplify

import (
	"cmp"
	"container/heap"
	"fmt"

	"github.com/matzehuels/coalesce/pkg/errors"
)

// Segment says that over [Left, Right) the lineage is represented by the
// output node Node.
type Segment struct {
	Left  int64 `json:"left" toml:"left"`
	Right int64 `json:"right" toml:"right"`
	Node  int   `json:"node" toml:"node"`
}

// NewSegment returns a segment after checking that left < right.
// Zero-width and inverted segments fail with INVALID_INTERVAL.
func NewSegment(left, right int64, node int) (Segment, error) {
	if left >= right {
		return Segment{}, errors.New(errors.ErrCodeInvalidInterval,
			"segment node %d: left %d >= right %d", node, left, right)
	}
	return Segment{Left: left, Right: right, Node: node}, nil
}

// Overlaps reports whether s and [left, right) share at least one position.
func (s Segment) Overlaps(left, right int64) bool {
	return s.Right > left && right > s.Left
}

// Clip returns s restricted to [left, right). The caller must check Overlaps first.
func (s Segment) Clip(left, right int64) Segment {
	return Segment{Left: max(s.Left, left), Right: min(s.Right, right), Node: s.Node}
}

// String formats the segment as "[left, right) -> node".
func (s Segment) String() string {
	return fmt.Sprintf("[%d, %d) -> %d", s.Left, s.Right, s.Node)
}

// segmentQueue is a min-heap of segments keyed by Left, ties broken by Node.
// Segments are stored and returned by value.
type segmentQueue []Segment

func (q segmentQueue) Len() int { return len(q) }
func (q segmentQueue) Less(i, j int) bool {
	if c := cmp.Compare(q[i].Left, q[j].Left); c != 0 {
		return c < 0
	}
	return q[i].Node < q[j].Node
}
func (q segmentQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *segmentQueue) Push(x any)   { *q = append(*q, x.(Segment)) }
func (q *segmentQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

func (q *segmentQueue) push(s Segment) { heap.Push(q, s) }
func (q *segmentQueue) pop() Segment  { return heap.Pop(q).(Segment) }

// peek returns the segment with the smallest Left. The queue must not be empty.
func (q segmentQueue) peek() Segment { return q[0] }
