// Package stats holds the per-region aggregates that make up the profiling call tree.
//
// A Node is mutable and not synchronized: every method that touches a Node must be
// called with the owning profiler's mutex held. Snapshots are immutable copies that
// can be read, rendered or encoded without any lock.
package stats

import (
	"math"
	"slices"
)

// Node accumulates the measurements of one region at one position in the call tree.
// Durations are expressed in milliseconds.
type Node struct {
	Count      uint64  // number of completed measurements
	Total      float64 // sum of all durations
	Min        float64 // shortest duration, +Inf until the first sample
	Max        float64 // longest duration
	SumSquares float64 // sum of squared durations

	children map[string]*Node
}

// NewNode returns a zero-valued node ready to receive samples.
func NewNode() *Node {
	return &Node{
		Min:      math.Inf(1),
		children: make(map[string]*Node),
	}
}

// Child returns the child node registered under name, creating it if absent.
// The returned node is stable: subsequent calls with the same name return the same pointer.
func (n *Node) Child(name string) *Node {
	child, ok := n.children[name]
	if !ok {
		child = NewNode()
		n.children[name] = child
	}

	return child
}

// Lookup returns the child registered under name, if any.
func (n *Node) Lookup(name string) (*Node, bool) {
	child, ok := n.children[name]

	return child, ok
}

// Len returns the number of direct children.
func (n *Node) Len() int { return len(n.children) }

// Record adds one sample of ms milliseconds.
func (n *Node) Record(ms float64) {
	n.Count++
	n.Total += ms
	n.Min = math.Min(n.Min, ms)
	n.Max = math.Max(n.Max, ms)
	n.SumSquares += ms * ms
}

// Snapshot copies the node and its descendants. Children are sorted by name so that
// two snapshots of the same data are identical regardless of insertion order.
func (n *Node) Snapshot(name string) Snapshot {
	snap := Snapshot{
		Name:       name,
		Count:      n.Count,
		Total:      n.Total,
		Max:        n.Max,
		SumSquares: n.SumSquares,
	}

	if n.Count > 0 {
		snap.Min = n.Min
	}

	if len(n.children) == 0 {
		return snap
	}

	names := make([]string, 0, len(n.children))
	for childName := range n.children {
		names = append(names, childName)
	}

	slices.Sort(names)

	snap.Children = make([]Snapshot, 0, len(names))
	for _, childName := range names {
		snap.Children = append(snap.Children, n.children[childName].Snapshot(childName))
	}

	return snap
}
