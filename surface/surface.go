// Package surface abstracts the external introspection interface used to
// query text surfaces owned by other applications.
//
// A Handle is an opaque reference to a text-bearing UI node. The node is
// externally owned: it can disappear, move, or be replaced between any
// two calls, and the operating system routinely reuses the underlying
// raw handle value for unrelated nodes shortly after release. Nothing in
// this package or its consumers ever treats the handle's bit pattern as
// identity; see Identity.
package surface

import (
	"errors"

	"github.com/overlaykit/textgeom"
	"github.com/overlaykit/textgeom/textindex"
)

// ErrUnsupported is returned by capability calls the surface's renderer
// family does not implement. It is an expected condition, not a fault:
// callers advance to the next strategy.
var ErrUnsupported = errors.New("surface: capability not supported")

// ErrInvalidSurface is returned when the underlying node has gone away.
var ErrInvalidSurface = errors.New("surface: handle no longer valid")

// Marker is an opaque, renderer-specific position token. Some renderer
// families refuse plain integer offsets for bounds queries and require a
// pair of these instead. A Marker is only meaningful to the Handle that
// created it.
type Marker any

// Capability names one introspection feature a surface may support.
type Capability uint8

const (
	// CapOpaqueMarkers means the surface can mint position markers and
	// answer bounds queries for a marker pair (Chromium family).
	CapOpaqueMarkers Capability = iota

	// CapClassicRange means the surface answers direct bounds-for-range
	// queries with an explicit offset and length (native renderers).
	CapClassicRange

	// CapChildTraversal means the surface's child text-run nodes answer
	// range-bounds queries individually even though the root does not.
	CapChildTraversal
)

// String returns the string representation of the capability.
func (c Capability) String() string {
	switch c {
	case CapOpaqueMarkers:
		return "OpaqueMarkers"
	case CapClassicRange:
		return "ClassicRange"
	case CapChildTraversal:
		return "ChildTraversal"
	default:
		return "Unknown"
	}
}

// Handle is the introspection interface for one text surface.
//
// Implementations are platform bindings around the vendor introspection
// API. Every method may block for tens of milliseconds against an
// unresponsive remote process; callers must not hold locks across calls.
// Every method may fail at any time as the remote node disappears.
//
// PID, Role, Identifier and Description are identity attributes the
// binding resolves once at wrap time; they return zero values rather
// than errors when the attribute is absent.
type Handle interface {
	// PID returns the id of the process owning the surface.
	PID() int

	// Role returns the structural role of the node ("TextArea",
	// "TextField", ...), or "" when unavailable.
	Role() string

	// Identifier returns the node's explicit stable identifier, or "".
	Identifier() string

	// Description returns the node's descriptive label, or "".
	Description() string

	// Frame returns the surface's own frame in global top-down
	// coordinates.
	Frame() (textgeom.Rect, error)

	// Text returns the surface's current text content.
	Text() (string, error)

	// Children returns the surface's structural child nodes.
	Children() ([]Handle, error)

	// IndexScheme declares the character-indexing scheme the surface's
	// capability calls expect. The binding knows the renderer family and
	// declares it once.
	IndexScheme() textindex.Scheme

	// Supports reports whether the surface implements the capability.
	// Bindings probe this once at wrap time; consumers read the
	// precomputed answer through Caps rather than re-probing.
	Supports(c Capability) bool

	// TextMarker mints an opaque position marker for a character offset
	// expressed in the surface's own indexing scheme.
	TextMarker(offset int) (Marker, error)

	// MarkerBounds returns the bounds of the text between two markers,
	// passed as a plain ordered pair. Several implementations reject
	// composite range objects; the pair form is the one that works.
	MarkerBounds(start, end Marker) (textgeom.Rect, error)

	// RangeBounds returns the bounds of the half-open character range
	// (location, location+length) in the surface's own indexing scheme.
	RangeBounds(location, length int) (textgeom.Rect, error)
}

// Caps is the closed set of capability flags for one surface, computed
// once and passed to every strategy. Strategies never duck-probe a
// surface themselves.
type Caps struct {
	OpaqueMarkers  bool
	ClassicRange   bool
	ChildTraversal bool

	// Scheme is the indexing scheme the surface's capability calls
	// expect, copied from Handle.IndexScheme.
	Scheme textindex.Scheme
}

// DetectCaps computes the capability flags for a surface.
func DetectCaps(h Handle) Caps {
	return Caps{
		OpaqueMarkers:  h.Supports(CapOpaqueMarkers),
		ClassicRange:   h.Supports(CapClassicRange),
		ChildTraversal: h.Supports(CapChildTraversal),
		Scheme:         h.IndexScheme(),
	}
}
