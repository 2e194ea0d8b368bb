// Package resolve orchestrates geometry strategies to compute the
// on-screen bounds of a character range inside an externally-owned text
// surface.
//
// Strategies are tried strictly in descending priority; the first usable
// result wins. Running strategies concurrently would waste expensive
// introspection calls and make the winner nondeterministic, so within one
// request execution is always sequential. Requests themselves run on the
// resolver's serial worker queue, off the caller's thread, because a
// single introspection call can block for tens of milliseconds against an
// unresponsive remote process.
package resolve

import "github.com/overlaykit/textgeom"

// Confidence bands. A band describes how the bounds were obtained, which
// is the only honest signal of how much to trust them.
const (
	// ConfidenceDirect is for bounds answered by a direct capability
	// call (marker pair or classic range).
	ConfidenceDirect = 0.95

	// ConfidenceDerived is for bounds derived indirectly, e.g. through a
	// child text-run node's own capability.
	ConfidenceDerived = 0.85

	// ConfidenceFrameFallback is for a child node's whole frame standing
	// in after its sub-range query failed.
	ConfidenceFrameFallback = 0.80

	// ConfidenceEstimateMax and ConfidenceEstimateMin bound the
	// font-metric estimation band.
	ConfidenceEstimateMax = 0.75
	ConfidenceEstimateMin = 0.60

	// ConfidenceRough is for the last-resort frame arithmetic estimate.
	// It sits below every usable threshold by construction: such a
	// result is never cached and a conforming renderer never draws it.
	ConfidenceRough = 0.30

	// DefaultMinConfidence is the default usable threshold. Results
	// below it are equivalent to "unavailable".
	DefaultMinConfidence = 0.5
)

// Result is one scored geometry answer.
type Result struct {
	// Bounds is the resolved rectangle, tagged with its coordinate
	// system. The resolver returns bottom-up bounds.
	Bounds textgeom.ScreenRect

	// Confidence is the trust score in [0, 1]; see the band constants.
	Confidence float64

	// Strategy names the strategy that produced the result.
	Strategy string

	// Metadata carries strategy-specific diagnostics (matched child
	// role, wrapped line index, indexing scheme used).
	Metadata map[string]string
}

// Usable reports whether the result clears the given confidence
// threshold. Renderers must refuse to draw unusable results.
func (r Result) Usable(threshold float64) bool {
	return r.Confidence >= threshold
}
