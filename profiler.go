// Package sectionprof measures the wall-clock duration of named code regions and
// aggregates them into a call tree that mirrors how the regions nest at runtime.
//
// A region is opened with Begin and closed with End, normally deferred:
//
//	ctx, region := sectionprof.Begin(ctx, "decode")
//	defer region.End()
//
// Regions opened with a context returned by Begin become children of the region that
// returned it. Each goroutine needs its own nesting stack: pass the result of Fork or
// Detach to goroutines instead of sharing a context that carries an active region.
package sectionprof

import (
	"io"
	"os"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/hyp3rd/sectionprof/internal/clock"
	"github.com/hyp3rd/sectionprof/pkg/report"
	"github.com/hyp3rd/sectionprof/pkg/stats"
)

// Profiler owns a registry of statistics nodes. Every node reachable from the root is
// guarded by mu: lookups, insertions, sample commits and snapshots all hold it.
type Profiler struct {
	mu   sync.Mutex
	root *stats.Node

	clock  clock.Clock
	hooks  []Hook
	logger log.Logger
}

// New creates an empty profiler.
func New(options ...Option) *Profiler {
	prof := &Profiler{
		root:   stats.NewNode(),
		clock:  clock.Monotonic{},
		logger: log.NewNopLogger(),
	}

	ApplyOptions(prof, options...)

	return prof
}

var (
	defaultOnce     sync.Once
	defaultProfiler *Profiler
)

// Default returns the process-wide profiler used by the package-level functions.
// It is created on first use and lives until the process exits.
func Default() *Profiler {
	defaultOnce.Do(func() {
		defaultProfiler = New()
	})

	return defaultProfiler
}

// Snapshot returns a consistent copy of the whole registry. The returned root is
// anonymous; the top-level regions are its children.
func (p *Profiler) Snapshot() stats.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.root.Snapshot("")
}

// WriteReport renders the textual report to w.
func (p *Profiler) WriteReport(w io.Writer) error {
	return report.Render(w, p.Snapshot())
}

// PrintReport renders the textual report to standard output.
func (p *Profiler) PrintReport() {
	p.printReport(os.Stdout)
}

// printReport writes the report to w, logging rather than returning failures.
func (p *Profiler) printReport(w io.Writer) {
	err := p.WriteReport(w)
	if err != nil {
		_ = level.Error(p.logger).Log("msg", "failed to print report", "err", err)
	}
}

// resolve returns the node named name under parent, or under the registry root when
// parent is nil.
func (p *Profiler) resolve(parent *stats.Node, name string) *stats.Node {
	p.mu.Lock()
	defer p.mu.Unlock()

	if parent == nil {
		parent = p.root
	}

	return parent.Child(name)
}

// commit records one sample on node.
func (p *Profiler) commit(node *stats.Node, ms float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	node.Record(ms)
}

// Snapshot returns a copy of the default profiler's registry.
func Snapshot() stats.Snapshot { return Default().Snapshot() }

// WriteReport renders the default profiler's report to w.
func WriteReport(w io.Writer) error { return Default().WriteReport(w) }

// PrintReport renders the default profiler's report to standard output.
func PrintReport() { Default().PrintReport() }
