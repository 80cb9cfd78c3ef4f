package sectionprof

import (
	"context"
	"slices"

	"github.com/hyp3rd/sectionprof/pkg/stats"
)

// stackKey scopes a nesting stack to one profiler, so regions of different profilers
// never see each other as parents.
type stackKey struct {
	prof *Profiler
}

// stack is the nesting stack of one goroutine: the regions it has begun and not yet
// ended, innermost last. It is never locked, so it must not be shared across goroutines.
type stack struct {
	base     *stats.Node // parent of regions begun on an empty stack; nil means the registry root
	basePath []string
	frames   []*Region
}

func (s *stack) top() *Region {
	if len(s.frames) == 0 {
		return nil
	}

	return s.frames[len(s.frames)-1]
}

func (s *stack) push(r *Region) {
	s.frames = append(s.frames, r)
}

func (s *stack) pop() {
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
}

// parent returns the node and path a new region should nest under.
func (s *stack) parent() (*stats.Node, []string) {
	if top := s.top(); top != nil {
		return top.node, top.info.Path
	}

	return s.base, s.basePath
}

func (p *Profiler) stackFrom(ctx context.Context) *stack {
	if ctx == nil {
		return nil
	}

	st, _ := ctx.Value(stackKey{prof: p}).(*stack)

	return st
}

// Fork returns a context carrying a fresh nesting stack anchored at the innermost
// active region of ctx. Regions a goroutine begins with it nest under that region.
// A nil ctx is treated as context.Background.
func (p *Profiler) Fork(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	forked := &stack{}

	if st := p.stackFrom(ctx); st != nil {
		node, path := st.parent()
		forked.base = node
		forked.basePath = slices.Clone(path)
	}

	return context.WithValue(ctx, stackKey{prof: p}, forked)
}

// Detach returns a context carrying a fresh, empty nesting stack. Regions a goroutine
// begins with it are top-level regions. A nil ctx is treated as context.Background.
func (p *Profiler) Detach(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, stackKey{prof: p}, &stack{})
}

// Depth returns the number of active regions on the nesting stack carried by ctx.
func (p *Profiler) Depth(ctx context.Context) int {
	st := p.stackFrom(ctx)
	if st == nil {
		return 0
	}

	return len(st.frames)
}

// Fork is Profiler.Fork on the default profiler.
func Fork(ctx context.Context) context.Context { return Default().Fork(ctx) }

// Detach is Profiler.Detach on the default profiler.
func Detach(ctx context.Context) context.Context { return Default().Detach(ctx) }
