package transform

// Operation names used by recipes, the CLI and the HTTP API.
const (
	OpMerge                     = "merge"
	OpMap                       = "map"
	OpCurve                     = "curve"
	OpRidge                     = "ridge"
	OpCircularFalloffPercentile = "circular-falloff-percentile"
	OpCircularFalloffAbsolute   = "circular-falloff-absolute"
	OpVerticalFalloffPercentile = "vertical-falloff-percentile"
)

// Names lists every operation in a stable order.
var Names = []string{
	OpMerge,
	OpMap,
	OpCurve,
	OpRidge,
	OpCircularFalloffPercentile,
	OpCircularFalloffAbsolute,
	OpVerticalFalloffPercentile,
}
