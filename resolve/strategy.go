package resolve

import (
	"github.com/overlaykit/textgeom/surface"
	"github.com/overlaykit/textgeom/textindex"
)

// Request carries everything one resolution attempt needs. The text and
// capability flags are snapshotted once so every strategy reasons about
// the same state even as the remote surface keeps changing underneath.
type Request struct {
	// Range is the erroneous character range in the canonical scalar
	// scheme over Text.
	Range textindex.Range

	// Surface is the introspection handle.
	Surface surface.Handle

	// Caps are the surface's precomputed capability flags.
	Caps surface.Caps

	// Text is the text snapshot the range was detected against.
	Text string

	// AppID identifies the owning application for configuration and
	// throttling lookups.
	AppID string
}

// NewRequest builds a Request from the caller's text snapshot: detects
// capabilities once and converts the range to the canonical scalar
// scheme. The text must be the snapshot the range was detected against,
// not a fresh read: the surface may have changed since detection, and a
// range over different text is meaningless.
func NewRequest(h surface.Handle, r textindex.Range, text, appID string) *Request {
	return &Request{
		Range:   textindex.Convert(r, textindex.Scalar, text),
		Surface: h,
		Caps:    surface.DetectCaps(h),
		Text:    text,
		AppID:   appID,
	}
}

// Strategy is one pluggable best-effort bounds algorithm built on one
// specific introspection capability.
//
// A strategy is total within its domain: Calculate returns nil for every
// failure mode (capability refused, invalid payload, throttled, call
// error) and never panics or surfaces an error. Produced bounds are in
// top-down coordinates and have already passed Mapper validation.
type Strategy interface {
	// Name identifies the strategy in results and diagnostics.
	Name() string

	// CanHandle reports whether the strategy applies to the request's
	// surface, judged from the precomputed capability flags.
	CanHandle(req *Request) bool

	// Calculate attempts to resolve the request. Nil means unavailable.
	Calculate(req *Request) *Result
}

// Throttle is the external collaborator that pre-emptively refuses
// introspection calls to an application that has been slow or failing.
// Consulted before every introspection call; a throttled application is
// indistinguishable from one whose capability is absent.
type Throttle interface {
	ShouldSkipCalls(appID string) bool
}

// nopThrottle never refuses anything.
type nopThrottle struct{}

func (nopThrottle) ShouldSkipCalls(string) bool { return false }
