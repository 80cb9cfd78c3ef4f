// Package constants defines default configuration values for the sectionprof system:
// report framing, column widths and management HTTP settings.
package constants

import "time"

const (
	// ReportHeader is the first line of every textual report.
	ReportHeader = "=== Profiling Report ==="
	// ReportFooter is the last line of every textual report.
	ReportFooter = "========================"
	// ReportIndent is prepended once per nesting level.
	ReportIndent = "  "
	// NameColumnWidth is the minimum width of the region name column.
	NameColumnWidth = 30

	// DefaultSerializer is the snapshot encoding used when none is requested.
	DefaultSerializer = "default"
	// MsgpackSerializer selects the msgpack snapshot encoding.
	MsgpackSerializer = "msgpack"

	// DefaultMgmtReadTimeout bounds reads on the management HTTP server.
	DefaultMgmtReadTimeout = 5 * time.Second
	// DefaultMgmtWriteTimeout bounds writes on the management HTTP server.
	DefaultMgmtWriteTimeout = 5 * time.Second

	// UnknownRegionName is used when the caller's function name cannot be resolved.
	UnknownRegionName = "unknown"
)
