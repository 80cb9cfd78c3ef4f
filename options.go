package sectionprof

import (
	"github.com/go-kit/log"

	"github.com/hyp3rd/sectionprof/internal/clock"
)

// Option is a function type that can be used to configure a Profiler.
type Option func(*Profiler)

// ApplyOptions applies the given options to the given profiler.
func ApplyOptions(prof *Profiler, options ...Option) {
	for _, option := range options {
		option(prof)
	}
}

// WithClock replaces the monotonic clock. It is meant for tests that need exact durations.
func WithClock(c clock.Clock) Option {
	return func(prof *Profiler) {
		if c != nil {
			prof.clock = c
		}
	}
}

// WithHooks appends hooks notified when regions begin and end. Nil hooks are ignored.
func WithHooks(hooks ...Hook) Option {
	return func(prof *Profiler) {
		for _, hook := range hooks {
			if hook != nil {
				prof.hooks = append(prof.hooks, hook)
			}
		}
	}
}

// WithLogger sets the logger used to report misuse and output failures.
func WithLogger(logger log.Logger) Option {
	return func(prof *Profiler) {
		if logger != nil {
			prof.logger = logger
		}
	}
}
