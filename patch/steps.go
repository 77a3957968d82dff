package patch

import (
	"strings"

	"github.com/RangerMauve/go-ipld-url-resolve/ipldurl"
)

// pathStep is one name in a resolved patch path, carrying the lens
// parameters (if any) that apply to the value found at that name —
// either a URL segment's own parameters, or none for a plain path
// component split out of an operation's "path"/"from" string.
type pathStep struct {
	name   string
	params ipldurl.Parameters
}

// buildSteps prepends baseSegments (the target URL's own path, per
// spec.md §4.4: "the URL's path is the base inside the target DAG") to
// the components of a patch operation's path/from string, trimming
// leading/trailing "/" per the RFC 6902-shaped grammar of spec.md §4.4.
// An empty combined result is spec.md §9 Open Question 4's
// InvalidPatchOp "empty path".
func buildSteps(baseSegments []ipldurl.Segment, opPath string) []pathStep {
	steps := make([]pathStep, 0, len(baseSegments)+4)
	for _, seg := range baseSegments {
		steps = append(steps, pathStep{name: seg.Name, params: seg.Parameters})
	}
	trimmed := strings.Trim(opPath, "/")
	if trimmed != "" {
		for _, name := range strings.Split(trimmed, "/") {
			steps = append(steps, pathStep{name: name})
		}
	}
	return steps
}

func stepsToSegments(steps []pathStep) []ipldurl.Segment {
	segs := make([]ipldurl.Segment, len(steps))
	for i, s := range steps {
		segs[i] = ipldurl.Segment{Name: s.name, Parameters: s.params}
	}
	return segs
}
