package sectionprof

import (
	"context"
	"runtime"
	"strings"
	"time"

	"github.com/go-kit/log/level"
	"github.com/hyp3rd/ewrap"

	"github.com/hyp3rd/sectionprof/internal/constants"
	"github.com/hyp3rd/sectionprof/internal/sentinel"
	"github.com/hyp3rd/sectionprof/pkg/stats"
)

// Region is an active measurement. It must be ended exactly once, by the goroutine that
// began it, after every region begun inside it has ended.
type Region struct {
	prof  *Profiler
	stack *stack
	node  *stats.Node
	info  RegionInfo
	ctx   context.Context //nolint:containedctx // handed back to hooks on End
	start time.Time
}

// Begin starts measuring the region name. An empty name is replaced with the name of
// the calling function. The returned context carries the region and must be used to
// begin nested regions.
func (p *Profiler) Begin(ctx context.Context, name string) (context.Context, *Region) {
	return p.begin(ctx, name)
}

// Measure runs fn inside the region name.
func (p *Profiler) Measure(ctx context.Context, name string, fn func(ctx context.Context)) {
	ctx, region := p.begin(ctx, name)
	defer region.End()

	fn(ctx)
}

// begin must be called directly by an exported entry point: the caller name lookup
// skips exactly that frame.
func (p *Profiler) begin(ctx context.Context, name string) (context.Context, *Region) {
	if ctx == nil {
		ctx = context.Background()
	}

	if name == "" {
		name = callerName(3)
	}

	st := p.stackFrom(ctx)
	if st == nil {
		st = &stack{}
		ctx = context.WithValue(ctx, stackKey{prof: p}, st)
	}

	parent, parentPath := st.parent()

	path := make([]string, len(parentPath), len(parentPath)+1)
	copy(path, parentPath)
	path = append(path, name)

	region := &Region{
		prof:  p,
		stack: st,
		node:  p.resolve(parent, name),
		info:  RegionInfo{Name: name, Path: path, Depth: len(path) - 1},
	}

	for _, hook := range p.hooks {
		if hooked := hook.RegionBegin(ctx, region.info); hooked != nil {
			ctx = hooked
		}
	}

	region.ctx = ctx
	st.push(region)
	region.start = p.clock.Now()

	return ctx, region
}

// End stops the measurement and commits it. Ending a region that is not the innermost
// active one on its stack, or ending it twice, panics with sentinel.ErrRegionOrder.
func (r *Region) End() {
	if r.stack.top() != r {
		path := r.info.PathString()
		_ = level.Error(r.prof.logger).Log("msg", "region ended out of order", "region", path, "active", len(r.stack.frames))

		panic(ewrap.Wrapf(sentinel.ErrRegionOrder, "region %q", path))
	}

	elapsed := r.prof.clock.Since(r.start)
	r.prof.commit(r.node, float64(elapsed)/float64(time.Millisecond))
	r.stack.pop()

	for i := len(r.prof.hooks) - 1; i >= 0; i-- {
		r.prof.hooks[i].RegionEnd(r.ctx, r.info, elapsed)
	}
}

// Context returns the context returned by Begin for this region.
func (r *Region) Context() context.Context { return r.ctx }

// Info describes the region.
func (r *Region) Info() RegionInfo { return r.info }

// callerName returns the name of the function skip frames above callerName, without
// its import path.
func callerName(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return constants.UnknownRegionName
	}

	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return constants.UnknownRegionName
	}

	name := fn.Name()
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}

	return name
}

// Begin starts a region on the default profiler.
func Begin(ctx context.Context, name string) (context.Context, *Region) {
	return Default().begin(ctx, name)
}

// Measure runs fn inside a region of the default profiler.
func Measure(ctx context.Context, name string, fn func(ctx context.Context)) {
	ctx, region := Default().begin(ctx, name)
	defer region.End()

	fn(ctx)
}
