package stats

import "math"

// Snapshot is an immutable copy of a Node subtree. Min is 0 when no sample was recorded.
type Snapshot struct {
	Name       string     `json:"name"`
	Count      uint64     `json:"count"`
	Total      float64    `json:"total_ms"`
	Min        float64    `json:"min_ms"`
	Max        float64    `json:"max_ms"`
	SumSquares float64    `json:"sum_squares"`
	Children   []Snapshot `json:"children,omitempty"`
}

// Avg returns the mean duration, or 0 without samples.
func (s Snapshot) Avg() float64 {
	if s.Count == 0 {
		return 0
	}

	return s.Total / float64(s.Count)
}

// StdDev returns the population standard deviation of the recorded durations.
// Rounding can push the variance slightly below zero; it is clamped before the square root.
func (s Snapshot) StdDev() float64 {
	if s.Count == 0 {
		return 0
	}

	avg := s.Avg()
	variance := s.SumSquares/float64(s.Count) - avg*avg

	return math.Sqrt(math.Max(0, variance))
}

// Percent returns the share of parentTotal spent in this node, or 100 when the parent
// has no time of its own.
func (s Snapshot) Percent(parentTotal float64) float64 {
	if parentTotal <= 0 {
		return 100
	}

	return s.Total / parentTotal * 100
}

// Completed reports whether this node or any descendant holds at least one sample.
func (s Snapshot) Completed() bool {
	if s.Count > 0 {
		return true
	}

	for _, child := range s.Children {
		if child.Completed() {
			return true
		}
	}

	return false
}

// Find walks path from s and returns the matching descendant.
func (s Snapshot) Find(path ...string) (Snapshot, bool) {
	cur := s
	for _, name := range path {
		found := false

		for _, child := range cur.Children {
			if child.Name == name {
				cur, found = child, true

				break
			}
		}

		if !found {
			return Snapshot{}, false
		}
	}

	return cur, true
}
