// Package middleware provides hooks that mirror region activity into logs, metrics
// and traces. Each hook implements sectionprof.Hook and is installed with
// sectionprof.WithHooks.
package middleware

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/hyp3rd/sectionprof"
)

// LoggingHook logs region boundaries at debug level.
type LoggingHook struct {
	logger log.Logger
}

// NewLoggingHook returns a hook writing to logger.
func NewLoggingHook(logger log.Logger) *LoggingHook {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	return &LoggingHook{logger: logger}
}

// RegionBegin logs the start of a region.
func (h *LoggingHook) RegionBegin(ctx context.Context, info sectionprof.RegionInfo) context.Context {
	_ = level.Debug(h.logger).Log("msg", "region begin", "region", info.PathString(), "depth", info.Depth)

	return ctx
}

// RegionEnd logs the end of a region with its duration.
func (h *LoggingHook) RegionEnd(_ context.Context, info sectionprof.RegionInfo, elapsed time.Duration) {
	_ = level.Debug(h.logger).Log("msg", "region end", "region", info.PathString(), "took", elapsed)
}
