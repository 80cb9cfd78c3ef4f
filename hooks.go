package sectionprof

import (
	"context"
	"strings"
	"time"
)

// RegionInfo describes a region as seen by hooks.
type RegionInfo struct {
	Name  string   // region name
	Path  []string // names from the top-level region down to this one, inclusive
	Depth int      // 0 for top-level regions
}

// PathString joins Path with slashes.
func (ri RegionInfo) PathString() string {
	return strings.Join(ri.Path, "/")
}

// Hook observes regions. RegionBegin may return a derived context, which becomes the
// context handed back by Begin and passed to RegionEnd for the same region.
// Hooks run outside the profiler's lock and must be safe for concurrent use.
type Hook interface {
	RegionBegin(ctx context.Context, info RegionInfo) context.Context
	RegionEnd(ctx context.Context, info RegionInfo, elapsed time.Duration)
}
