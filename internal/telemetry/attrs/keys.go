// Package attrs provides reusable OpenTelemetry attribute key constants
// shared by the region hooks.
package attrs

const (
	// AttrRegionName is the name of the region being measured.
	AttrRegionName = "region.name"
	// AttrRegionPath is the slash-joined path from the root region to the measured one.
	// It identifies a position in the call tree, the same way the report does.
	AttrRegionPath = "region.path"
	// AttrRegionDepth is the nesting depth of the region, roots being at depth 0.
	AttrRegionDepth = "region.depth"
)
