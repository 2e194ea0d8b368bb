// Package surfacetest provides a scriptable in-memory Handle for tests
// and examples. The fake records call counts and injects failures per
// capability, which is how tests simulate the introspection interface's
// many ways of being wrong.
package surfacetest

import (
	"slices"

	"github.com/overlaykit/textgeom"
	"github.com/overlaykit/textgeom/surface"
	"github.com/overlaykit/textgeom/textindex"
)

// CallCounts records how many times each introspection call was made.
type CallCounts struct {
	Frame        int
	Text         int
	Children     int
	TextMarker   int
	MarkerBounds int
	RangeBounds  int
}

// Fake is a scriptable surface.Handle. The zero value is a valid empty
// surface with no capabilities. Fake is not safe for concurrent use;
// tests drive it from one goroutine.
type Fake struct {
	ProcessID int
	NodeRole  string
	ID        string
	Desc      string
	NodeFrame textgeom.Rect
	NodeText  string
	Kids      []surface.Handle
	Scheme    textindex.Scheme

	// Capabilities lists what Supports reports true for.
	Capabilities []surface.Capability

	// Failure injection. A non-nil error makes the corresponding call
	// fail; TextMarkerErrAt fails marker creation only for that offset
	// (-1 disables, the zero value fails offset 0 only when
	// TextMarkerErr is also set).
	FrameErr        error
	TextErr         error
	ChildrenErr     error
	TextMarkerErr   error
	TextMarkerErrAt int
	MarkerBoundsErr error
	RangeBoundsErr  error

	// MarkerBoundsFunc computes marker-pair bounds from the offsets the
	// markers were minted with. When nil and MarkerBoundsErr is nil,
	// MarkerBounds returns surface.ErrUnsupported.
	MarkerBoundsFunc func(start, end int) (textgeom.Rect, error)

	// RangeBoundsFunc computes range bounds. When nil and RangeBoundsErr
	// is nil, RangeBounds returns surface.ErrUnsupported.
	RangeBoundsFunc func(location, length int) (textgeom.Rect, error)

	Calls CallCounts
}

// marker is the fake's opaque position token.
type marker struct {
	offset int
}

// MarkerOffset recovers the offset a fake marker was minted with.
func MarkerOffset(m surface.Marker) (int, bool) {
	fm, ok := m.(marker)
	return fm.offset, ok
}

var _ surface.Handle = (*Fake)(nil)

func (f *Fake) PID() int            { return f.ProcessID }
func (f *Fake) Role() string        { return f.NodeRole }
func (f *Fake) Identifier() string  { return f.ID }
func (f *Fake) Description() string { return f.Desc }

func (f *Fake) IndexScheme() textindex.Scheme { return f.Scheme }

func (f *Fake) Supports(c surface.Capability) bool {
	return slices.Contains(f.Capabilities, c)
}

func (f *Fake) Frame() (textgeom.Rect, error) {
	f.Calls.Frame++
	if f.FrameErr != nil {
		return textgeom.Rect{}, f.FrameErr
	}
	return f.NodeFrame, nil
}

func (f *Fake) Text() (string, error) {
	f.Calls.Text++
	if f.TextErr != nil {
		return "", f.TextErr
	}
	return f.NodeText, nil
}

func (f *Fake) Children() ([]surface.Handle, error) {
	f.Calls.Children++
	if f.ChildrenErr != nil {
		return nil, f.ChildrenErr
	}
	return f.Kids, nil
}

func (f *Fake) TextMarker(offset int) (surface.Marker, error) {
	f.Calls.TextMarker++
	if f.TextMarkerErr != nil && offset == f.TextMarkerErrAt {
		return nil, f.TextMarkerErr
	}
	return marker{offset: offset}, nil
}

func (f *Fake) MarkerBounds(start, end surface.Marker) (textgeom.Rect, error) {
	f.Calls.MarkerBounds++
	if f.MarkerBoundsErr != nil {
		return textgeom.Rect{}, f.MarkerBoundsErr
	}
	if f.MarkerBoundsFunc == nil {
		return textgeom.Rect{}, surface.ErrUnsupported
	}
	s, ok := start.(marker)
	if !ok {
		return textgeom.Rect{}, surface.ErrInvalidSurface
	}
	e, ok := end.(marker)
	if !ok {
		return textgeom.Rect{}, surface.ErrInvalidSurface
	}
	return f.MarkerBoundsFunc(s.offset, e.offset)
}

func (f *Fake) RangeBounds(location, length int) (textgeom.Rect, error) {
	f.Calls.RangeBounds++
	if f.RangeBoundsErr != nil {
		return textgeom.Rect{}, f.RangeBoundsErr
	}
	if f.RangeBoundsFunc == nil {
		return textgeom.Rect{}, surface.ErrUnsupported
	}
	return f.RangeBoundsFunc(location, length)
}
